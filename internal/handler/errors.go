package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jkor2/lifeof/internal/logger"
	"github.com/jkor2/lifeof/internal/service"
	"github.com/jkor2/lifeof/internal/whoop"
)

// fail writes err as {"detail": ...} with the status its kind maps to.
// notFound is the detail used for service.ErrNotFound.
func fail(c *gin.Context, err error, notFound string) {
	var (
		invalid service.InvalidError
		upstream *whoop.HTTPError
	)
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": notFound})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"detail": invalid.Error()})
	case errors.Is(err, whoop.ErrNotAuthorized), errors.Is(err, whoop.ErrNoRefreshToken):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.As(err, &upstream):
		logger.Warn("whoop.upstream_error", "path", c.FullPath(), "status", upstream.Status)
		status := upstream.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"detail": upstream.Body})
	default:
		logger.Error("request.failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}
