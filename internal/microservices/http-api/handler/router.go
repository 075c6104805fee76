package handler

import (
	"context"
	"net/http"
	"time"

	"eventhub/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(ctx context.Context) error

type RouterConfig struct {
	Log           zerolog.Logger
	CORSOrigins   []string
	CookieName    string
	Authenticator middleware.Authenticator
	LoginLimiter  *middleware.RateLimiter
	Health        HealthChecker

	Auth          *AuthHandler
	Events        *EventHandler
	Users         *UserHandler
	Admin         *AdminHandler
	Notifications *NotificationHandler
	Uploads       *UploadHandler
	// Live serves the notification stream; nil disables it.
	Live gin.HandlerFunc
}

// NewRouter assembles the HTTP API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", healthHandler(cfg.Health))

	requireAuth := middleware.AuthMiddleware(cfg.Authenticator, cfg.CookieName)
	throttle := func(c *gin.Context) { c.Next() }
	if cfg.LoginLimiter != nil {
		throttle = cfg.LoginLimiter.Middleware()
	}

	cfg.Auth.RegisterRoutes(r.Group("/auth"), requireAuth, throttle)
	cfg.Events.RegisterRoutes(r.Group("/events"), requireAuth)
	cfg.Users.RegisterRoutes(r.Group("/user", requireAuth))
	cfg.Admin.RegisterRoutes(r.Group("/admin", requireAuth, middleware.RequireAdmin()))
	notifications := r.Group("/notifications", requireAuth)
	cfg.Notifications.RegisterRoutes(notifications)
	if cfg.Live != nil {
		notifications.GET("/ws", cfg.Live)
	}
	cfg.Uploads.RegisterRoutes(r.Group("/upload", requireAuth))

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Route not found")
	})
	return r
}

func healthHandler(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	}
}
