package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/logger"
	"github.com/Berytech/Investment-Platform/internal/response"
	"go.uber.org/zap"
)

// handleError converts domain errors to HTTP responses. Persistence errors
// surface as opaque 500s; their detail goes to the log only.
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsConflictError(err):
		response.Conflict(c, err.Error())
	default:
		logger.Get().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		response.InternalError(c)
	}
}
