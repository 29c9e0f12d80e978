package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/telemetry"
)

// ErrorResponse is the single error body returned by every endpoint.
// Error carries the user-facing message; Details only carries validation
// or attempt metadata, never raw internal error text.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if principal := c.GetString("principal"); principal != "" {
		fields["principal"] = principal
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// Internal sends the generic 500 body. err is logged, not returned.
func Internal(c *gin.Context, message string, err error) {
	if err != nil {
		telemetry.Error("http.internal", map[string]any{
			"request_id": c.GetString("requestId"),
			"path":       c.Request.URL.Path,
			"error":      err,
		})
	}
	Error(c, http.StatusInternalServerError, "internal", message, nil)
}

// JSON writes payload with status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
