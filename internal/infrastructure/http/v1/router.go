// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fabriq/internal/domain"
	"fabriq/internal/domain/client"
	"fabriq/internal/domain/material"
	"fabriq/internal/domain/pricing"
	"fabriq/internal/domain/quotation"
	"fabriq/internal/infrastructure/http/v1/handlers"
	"fabriq/internal/infrastructure/http/v1/middleware"
	"fabriq/internal/infrastructure/storage/postgres"
	"fabriq/pkg/logger"
)

// RouterConfig holds the services the router exposes.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	QuotationService *quotation.Service
	MaterialService  *domain.CatalogService[*material.Material]
	ClientService    *domain.CatalogService[*client.Client]
	PricingRates     pricing.Rates

	// AuditService backs the quotation history endpoint (optional).
	AuditService *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	baseHandler := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	{
		quotationHandler := handlers.NewQuotationHandler(baseHandler, cfg.QuotationService)
		if cfg.AuditService != nil {
			quotationHandler.SetAuditService(cfg.AuditService)
		}
		quotationHandler.RegisterRoutes(v1.Group("/quotations"))

		catalogs := v1.Group("/catalog")
		handlers.NewMaterialHandler(baseHandler, cfg.MaterialService).RegisterRoutes(catalogs.Group("/materials"))
		handlers.NewClientHandler(baseHandler, cfg.ClientService).RegisterRoutes(catalogs.Group("/clients"))

		pricingHandler := handlers.NewPricingHandler(baseHandler, cfg.PricingRates, cfg.MaterialService)
		pricingHandler.RegisterRoutes(v1.Group("/pricing"))
	}

	return router
}
