package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dairyherd/internal/server/handlers"
	"dairyherd/internal/server/middleware"
	"dairyherd/internal/service/auth"
)

// Handlers bundles the HTTP adapters wired into the engine.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Cattle        *handlers.CattleHandler
	Breeding      *handlers.BreedingHandler
	Feeding       *handlers.FeedingHandler
	Health        *handlers.HealthHandler
	Notifications *handlers.NotificationHandler
	Organizations *handlers.OrganizationHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authSvc *auth.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(authSvc, logger))

	authed.GET("/auth/me", h.Auth.Me)
	authed.POST("/auth/register-device", h.Auth.RegisterDevice)
	authed.POST("/auth/register", middleware.RequireAdmin(), h.Auth.Register)
	authed.PUT("/auth/users/:id/role", middleware.RequireAdmin(), h.Auth.UpdateRole)

	authed.GET("/cattle", h.Cattle.List)
	authed.POST("/cattle", middleware.RequireAdmin(), h.Cattle.Create)
	authed.GET("/cattle/:id", h.Cattle.Get)
	authed.PUT("/cattle/:id", h.Cattle.Update)
	authed.DELETE("/cattle/:id", middleware.RequireAdmin(), h.Cattle.Delete)
	authed.POST("/cattle/:id/assign", middleware.RequireAdmin(), h.Cattle.Assign)
	authed.GET("/cattle/:id/semination", h.Breeding.SeminationHistory)
	authed.GET("/cattle/:id/pregnancy", h.Breeding.PregnancyRecords)
	authed.GET("/cattle/:id/feeding", h.Feeding.History)
	authed.GET("/cattle/:id/feeding/stats", h.Feeding.Stats)
	authed.GET("/cattle/:id/health", h.Health.History)
	authed.GET("/cattle/:id/health/stats", h.Health.Stats)

	authed.POST("/feeding", h.Feeding.Record)
	authed.POST("/feeding/batch", h.Feeding.BatchRecord)
	authed.POST("/health", h.Health.Record)
	authed.GET("/health/alerts", h.Health.Alerts)

	authed.POST("/semination", h.Breeding.RecordSemination)
	authed.PUT("/semination/:id/check", h.Breeding.CheckPregnancy)
	authed.GET("/semination/pending", h.Breeding.PendingChecks)
	authed.PUT("/pregnancy/:id/delivery", h.Breeding.RecordDelivery)
	authed.PUT("/pregnancy/:id/separation", h.Breeding.MarkSeparation)
	authed.GET("/pregnancy/stats", h.Breeding.Stats)

	authed.GET("/notifications", h.Notifications.List)
	authed.PUT("/notifications/:id/read", h.Notifications.MarkRead)

	authed.POST("/organizations", middleware.RequireAdmin(), h.Organizations.Create)
	authed.GET("/organizations", middleware.RequireAdmin(), h.Organizations.List)
	authed.GET("/organizations/:id", middleware.RequireAdmin(), h.Organizations.Get)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
