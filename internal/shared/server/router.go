package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/documents"
	"docscan-backend/internal/events"
	"docscan-backend/internal/shared/config"
	"docscan-backend/internal/shared/metrics"
	"docscan-backend/internal/shared/server/middleware"
	"docscan-backend/internal/shared/server/respond"
)

// RouterDeps carries the wired handlers the router mounts. Dependency
// construction lives in bootstrap; the router only arranges middleware
// and routes.
type RouterDeps struct {
	Config    config.Config
	Documents *documents.Handler
	Events    *events.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		metrics.HTTP(),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/")
	api.Use(
		middleware.Auth(),
		middleware.RateLimit(rateLimits()),
	)
	registerMeRoutes(api)
	deps.Documents.RegisterRoutes(api)
	deps.Events.RegisterRoutes(api)

	return r
}

// rateLimits budgets uploads separately from read traffic; each upload runs
// the full OCR pipeline synchronously.
func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"UPLOAD":  {Rate: 1, Burst: 5},
			"DEFAULT": {Rate: 25, Burst: 50},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/documents/upload" {
				return "UPLOAD"
			}
			return ""
		},
	}
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
