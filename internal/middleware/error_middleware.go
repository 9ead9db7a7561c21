package middleware

import (
	"filevault/internal/transport/httpdto"
	apperrors "filevault/pkg/errors"
	"filevault/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns errors attached to the gin context into the uniform
// error response. Domain kinds keep their message and mapped status;
// internal and storage failures answer with a generic message only.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		kind := apperrors.KindOf(err)
		if l != nil && kind.Status() >= 500 {
			l.WithContext(c.Request.Context()).Sugar().Errorf("request error: %s", err.Error())
		}
		c.JSON(kind.Status(), httpdto.NewErrorResponse(apperrors.Public(err), kind.Code()))
	}
}
