package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeroten/pindex/internal/logger"
	"github.com/zeroten/pindex/pkg/metadata"
)

// writeError maps a metadata error to an HTTP response. Infrastructure
// errors become a 500 with a generic message; details stay in the logs.
func writeError(c *gin.Context, err error) {
	code, ok := metadata.CodeOf(err)
	if !ok {
		logger.Error("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch code {
	case metadata.ErrInvalidInput:
		status = http.StatusBadRequest
	case metadata.ErrNotFoundOrDenied, metadata.ErrNotFound:
		status = http.StatusNotFound
	case metadata.ErrAlreadyShared:
		status = http.StatusConflict
	case metadata.ErrUpstreamUnavailable:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
