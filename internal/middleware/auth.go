package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/mandipulse/internal/domain/dto"
)

// UserIDKey is the Gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// TokenVerifier validates a bearer token and returns its subject.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <token>"
// header with 401 and stores the token subject under UserIDKey.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("missing bearer token", nil).WithCode("unauthorized"))
			return
		}

		sub, err := v.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("invalid token", err).WithCode("unauthorized"))
			return
		}

		c.Set(UserIDKey, sub)
		c.Next()
	}
}
