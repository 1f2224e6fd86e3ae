package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeroten/pindex/pkg/metadata"
)

func (s *Server) listFiles(c *gin.Context) {
	files, err := s.store.ListFiles(c.Request.Context(), identityOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (s *Server) createFile(c *gin.Context) {
	var rec metadata.FileRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file record"})
		return
	}

	// Ownership comes from the caller, never from the body.
	rec.Owner = identityOf(c)

	if err := s.store.CreateFile(c.Request.Context(), rec); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) updateFile(c *gin.Context) {
	var rec metadata.FileRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file record"})
		return
	}

	if err := s.store.UpdateFile(c.Request.Context(), c.Param("id"), rec, identityOf(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) deleteFile(c *gin.Context) {
	if err := s.store.DeleteFile(c.Request.Context(), c.Param("id"), identityOf(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
