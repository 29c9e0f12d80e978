package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/server/respond"
)

// RegisterRoutes attaches GET /health.
func RegisterRoutes(rg *gin.RouterGroup, svc *Service) {
	rg.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, svc.Status(c.Request.Context()))
	})
}
