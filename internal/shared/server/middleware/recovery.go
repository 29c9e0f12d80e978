package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/metrics"
	"lifeway-backend/internal/shared/server/respond"
	"lifeway-backend/internal/shared/telemetry"
)

// Recovery turns panics into the generic 500 body. The panic value and stack
// only reach the log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			metrics.IncPanic()
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"route":      c.FullPath(),
				"panic":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Erro interno do servidor", nil)
		}()
		c.Next()
	}
}
