package server

import (
	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/apikeys"
	"lifeway-backend/internal/blog"
	"lifeway-backend/internal/catalog"
	"lifeway-backend/internal/formfiles"
	"lifeway-backend/internal/forms"
	"lifeway-backend/internal/imagesearch"
	"lifeway-backend/internal/reports"
	"lifeway-backend/internal/services/health"
	"lifeway-backend/internal/shared/auth"
	"lifeway-backend/internal/shared/config"
	"lifeway-backend/internal/shared/metrics"
	"lifeway-backend/internal/shared/server/middleware"
)

// Default token bucket rules. Report generators call the LLM and get the
// tighter REPORTS budget.
var DefaultRateRules = map[string]middleware.RateLimitRule{
	middleware.RateGroupDefault: {Rate: 20, Burst: 40},
	middleware.RateGroupReports: {Rate: 0.2, Burst: 3},
}

// RouterDeps carries the handlers NewRouter mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config      config.Config
	Auth        *auth.Authenticator
	RateRules   map[string]middleware.RateLimitRule
	Health      *health.Service
	Forms       *forms.Handler
	FormFiles   *formfiles.Handler
	Reports     *reports.Handler
	ImageSearch *imagesearch.Handler
	Blog        *blog.Handler
	Catalog     *catalog.Handler
	APIKeys     *apikeys.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	rules := deps.RateRules
	if rules == nil {
		rules = DefaultRateRules
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rules,
			GroupFor: middleware.ReportsGroup(reports.GeneratorPaths...),
		}),
	)

	admin := middleware.AdminAuth(deps.Auth)

	api := r.Group("/api")
	api.GET("/metrics", metrics.Handler())
	if deps.Health != nil {
		health.RegisterRoutes(api, deps.Health)
	}
	if deps.Forms != nil {
		deps.Forms.RegisterRoutes(api)
	}
	if deps.FormFiles != nil {
		deps.FormFiles.RegisterRoutes(api)
	}
	if deps.Reports != nil {
		deps.Reports.RegisterRoutes(api)
	}
	if deps.ImageSearch != nil {
		deps.ImageSearch.RegisterRoutes(api)
	}
	if deps.Blog != nil {
		deps.Blog.RegisterRoutes(api, admin)
	}
	if deps.Catalog != nil {
		deps.Catalog.RegisterRoutes(api, admin)
	}
	if deps.APIKeys != nil {
		deps.APIKeys.RegisterRoutes(api, admin)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
