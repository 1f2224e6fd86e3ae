package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeroten/pindex/internal/logger"
	"github.com/zeroten/pindex/pkg/metadata"
)

// upload pins the posted multipart file and returns its content handle.
// The caller follows up with POST /files to register the metadata.
func (s *Server) upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	handle, err := s.gateway.Pin(c.Request.Context(), header.Filename, file)
	if err != nil {
		logger.Error("pin failed for %s: %v", header.Filename, err)
		writeError(c, &metadata.StoreError{
			Code:    metadata.ErrUpstreamUnavailable,
			Message: "pin gateway unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contentHandle": handle,
		"size":          header.Size,
	})
}

// unpin releases a handle directly. Unlike the unpins inside cascading
// deletes, a gateway failure here is the caller's problem.
func (s *Server) unpin(c *gin.Context) {
	var req struct {
		Handle metadata.ContentHandle `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}

	if err := s.gateway.Unpin(c.Request.Context(), req.Handle); err != nil {
		logger.Error("unpin failed for handle %s: %v", req.Handle, err)
		writeError(c, &metadata.StoreError{
			Code:    metadata.ErrUpstreamUnavailable,
			Message: "pin gateway unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unpinned"})
}
