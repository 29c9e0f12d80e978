package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/auth"
	"lifeway-backend/internal/shared/server/respond"
)

const principalKey = "principal"

// AdminAuth guards admin and update routes with a bearer token.
func AdminAuth(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		token := ""
		if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
			if !strings.HasPrefix(header, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "Não autorizado", nil)
				return
			}
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}

		principal, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "Não autorizado", nil)
				return
			}
			respond.Internal(c, "Erro interno do servidor", err)
			return
		}

		c.Set(principalKey, principal.Method+":"+principal.Subject)
		c.Next()
	}
}

// PrincipalFromContext returns the "<method>:<subject>" label set by AdminAuth.
func PrincipalFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(principalKey)
}
