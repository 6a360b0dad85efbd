package middleware

import (
	"errors"
	"net/http"

	"streamgauge/internal/core/domain"
	apperrors "streamgauge/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware renders errors attached by handlers via c.Error.
// AppErrors carry their own HTTP status; bare domain sentinels map to a
// sensible one; anything else is an opaque 500.
func ErrorHandlerMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		appErr := apperrors.GetAppError(err)
		if appErr == nil {
			appErr = classifyDomainError(err)
		}

		logger.Errorw("request failed",
			"code", appErr.Code,
			"status", appErr.HTTPStatus,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err,
		)

		c.JSON(appErr.HTTPStatus, gin.H{
			"error":   string(appErr.Code),
			"message": appErr.Message,
			"details": appErr.Context,
		})
	}
}

// classifyDomainError maps measurement-domain sentinels onto the error
// codes the API reports.
func classifyDomainError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, domain.ErrSummaryNotFound):
		return apperrors.NewNotFoundError("result")
	case errors.Is(err, domain.ErrToolUnavailable),
		errors.Is(err, domain.ErrSourceUnreachable):
		return apperrors.NewServiceUnavailableError(err.Error())
	}
	return apperrors.NewInternalError("internal server error")
}

// RecoveryMiddleware converts panics into 500 responses instead of
// dropping the connection.
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"panic", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   string(apperrors.ErrCodeInternal),
					"message": "internal server error",
				})
			}
		}()

		c.Next()
	}
}
