package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/samia-tarot/panel/internal/app"
	iauth "github.com/samia-tarot/panel/internal/auth"
	"github.com/samia-tarot/panel/internal/cache"
	"github.com/samia-tarot/panel/internal/handlers"
	"github.com/samia-tarot/panel/internal/middleware"
	"github.com/samia-tarot/panel/internal/permissions"
	"github.com/samia-tarot/panel/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the panel routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, store cache.Store) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.Panel.RateLimit.Enabled {
		r.Use(middleware.RateLimit(store, cfg.Panel.RateLimit.MaxRequests, cfg.Panel.RateLimit.Window))
	}

	r.NoRoute(middleware.NotFoundHandler)

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	auditSvc, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(db, auditSvc)
	if err != nil {
		return nil, err
	}

	var validationOpts []services.StoreValidationOption
	if store != nil && cfg.Panel.SummaryCacheTTL > 0 {
		validationOpts = append(validationOpts, services.WithSummaryCache(store, cfg.Panel.SummaryCacheTTL))
	}
	validationSvc, err := services.NewStoreValidationService(db, auditSvc, validationOpts...)
	if err != nil {
		return nil, err
	}

	checker, err := permissions.NewChecker(db)
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(userSvc, jwt, checker)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)

	validationHandler := handlers.NewStoreValidationHandler(validationSvc, checker, auditSvc)
	storeValidation := api.Group("/admin/store-validation")
	{
		storeValidation.GET("/summary", validationHandler.GetSummary)
		storeValidation.POST("/summary", validationHandler.UpdateSummary)
	}

	auditHandler := handlers.NewAuditHandler(auditSvc)
	api.GET("/audit", middleware.RequirePermission(checker, permissions.AuditView), auditHandler.List)
	api.GET("/audit/export", middleware.RequirePermission(checker, permissions.AuditView), auditHandler.Export)

	return r, nil
}
