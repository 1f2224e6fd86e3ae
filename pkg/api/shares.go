package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type shareRequest struct {
	FileID     string `json:"fileId"`
	SharedWith string `json:"sharedWith"`
}

func (s *Server) createShare(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileId and sharedWith are required"})
		return
	}

	rec, err := s.store.ShareFile(c.Request.Context(), req.FileID, identityOf(c), req.SharedWith)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) revokeShare(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FileID == "" || req.SharedWith == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileId and sharedWith are required"})
		return
	}

	if err := s.store.RevokeShare(c.Request.Context(), req.FileID, req.SharedWith, identityOf(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

func (s *Server) listSharedWithMe(c *gin.Context) {
	views, err := s.store.ListSharedWithMe(c.Request.Context(), identityOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) listSharesForFile(c *gin.Context) {
	shares, err := s.store.ListSharesForFile(c.Request.Context(), c.Param("id"), identityOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shares)
}
