package middleware

import (
	"context"
	"net/http"
	"strings"

	"filevault/internal/services"
	"filevault/internal/transport/httpdto"
	"filevault/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const principalKey = "principal_id"

// AuthMiddleware verifies the bearer token and stores the resolved principal
// id on the gin context. Handlers read it with PrincipalID and pass it into
// the services explicitly; nothing below the handlers touches request state.
func AuthMiddleware(service *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("authentication token required", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		principalID, err := service.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid token", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		c.Set(principalKey, principalID)
		ctx := context.WithValue(c.Request.Context(), logger.UserIdKey, principalID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// PrincipalID returns the authenticated principal id set by AuthMiddleware.
func PrincipalID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
