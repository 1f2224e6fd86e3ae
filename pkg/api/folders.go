package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeroten/pindex/pkg/metadata"
)

func (s *Server) listFolders(c *gin.Context) {
	folders, err := s.store.ListFolders(c.Request.Context(), identityOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

func (s *Server) createFolder(c *gin.Context) {
	var rec metadata.FolderRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder record"})
		return
	}

	rec.Owner = identityOf(c)

	if err := s.store.CreateFolder(c.Request.Context(), rec); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) updateFolder(c *gin.Context) {
	var rec metadata.FolderRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder record"})
		return
	}

	if err := s.store.UpdateFolder(c.Request.Context(), c.Param("id"), rec, identityOf(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// deleteFolder removes the folder and its whole subtree. Unpin failures
// inside the cascade never surface here; the metadata removal already
// happened.
func (s *Server) deleteFolder(c *gin.Context) {
	if err := s.store.DeleteFolder(c.Request.Context(), c.Param("id"), identityOf(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
