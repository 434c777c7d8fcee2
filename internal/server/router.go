package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faithadeola/TrustRail/internal/auth"
	"github.com/faithadeola/TrustRail/internal/config"
	"github.com/faithadeola/TrustRail/internal/http/handlers"
	"github.com/faithadeola/TrustRail/internal/http/middleware"
	"github.com/faithadeola/TrustRail/internal/version"
	"github.com/faithadeola/TrustRail/internal/ws"
)

type Dependencies struct {
	Pinger              handlers.Pinger
	AuthHandler         *handlers.AuthHandler
	BusinessHandler     *handlers.BusinessHandler
	ApplicationHandler  *handlers.ApplicationHandler
	ScheduleHandler     *handlers.ScheduleHandler
	CustomerHandler     *handlers.CustomerHandler
	NotificationHandler *handlers.NotificationHandler
	WebhookHandler      *handlers.WebhookHandler
	WSHandler           *ws.Handler
	JWTManager          *auth.JWTManager
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestBodyLimit(cfg.MaxRequestBodyBytes))
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	// Public checkout surface: no session required, the payment link carries
	// the business context.
	if deps.BusinessHandler != nil {
		r.GET("/v1/pay/:slug", deps.BusinessHandler.ResolveSlug)
	}
	if deps.ApplicationHandler != nil {
		r.POST("/v1/payment-applications", deps.ApplicationHandler.Submit)
	}
	if deps.ScheduleHandler != nil {
		r.POST("/v1/schedule-preview", deps.ScheduleHandler.Preview)
	}
	if deps.WebhookHandler != nil {
		r.POST("/v1/webhooks/payments", deps.WebhookHandler.ReceivePaymentEvent)
	}

	if deps.AuthHandler != nil && deps.JWTManager != nil {
		authGroup := r.Group("/v1/auth")
		authGroup.POST("/register", deps.AuthHandler.Register)
		authGroup.POST("/login", deps.AuthHandler.Login)
		authGroup.POST("/refresh", deps.AuthHandler.Refresh)
		authGroup.POST("/logout", deps.AuthHandler.Logout)

		protected := authGroup.Group("")
		protected.Use(middleware.RequireAuth(deps.JWTManager))
		protected.GET("/me", deps.AuthHandler.Me)

		dashboard := r.Group("/v1")
		dashboard.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleOwner, auth.RoleStaff))

		if deps.BusinessHandler != nil {
			dashboard.GET("/business", deps.BusinessHandler.GetProfile)
			dashboard.PUT("/business", deps.BusinessHandler.UpdateProfile)
			dashboard.GET("/business/rules", deps.BusinessHandler.GetRules)
			dashboard.PUT("/business/rules", deps.BusinessHandler.UpdateRules)
			dashboard.POST("/business/payment-link/regenerate", deps.BusinessHandler.RegeneratePaymentLink)
			dashboard.GET("/businesses/:businessId/trust-rules", middleware.RequireBusinessScope("businessId"), deps.BusinessHandler.GetRules)
			dashboard.PUT("/businesses/:businessId/trust-rules", middleware.RequireBusinessScope("businessId"), deps.BusinessHandler.UpdateRules)
		}
		if deps.ApplicationHandler != nil {
			dashboard.GET("/payment-applications", deps.ApplicationHandler.List)
			dashboard.GET("/payment-applications/:applicationId", deps.ApplicationHandler.Get)
			dashboard.GET("/dashboard/analytics", deps.ApplicationHandler.DashboardAnalytics)
		}
		if deps.CustomerHandler != nil {
			dashboard.GET("/customers", deps.CustomerHandler.List)
			dashboard.GET("/customers/:customerHash", deps.CustomerHandler.Get)
		}
		if deps.NotificationHandler != nil {
			dashboard.GET("/notifications", deps.NotificationHandler.List)
			dashboard.POST("/notifications/:notificationId/read", deps.NotificationHandler.MarkRead)
			dashboard.POST("/notifications/read-all", deps.NotificationHandler.MarkAllRead)
			dashboard.GET("/notifications/unread-count", deps.NotificationHandler.CountUnread)
		}
	}

	if deps.WSHandler != nil {
		r.GET("/v1/ws", deps.WSHandler.HandleWebSocket)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
