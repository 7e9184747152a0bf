package handler

import (
	"yanki-wallet-service/internal/adapter/http/middleware"
	"yanki-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	// API v1 routes
	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallet := r.Group("/v1/wallet")
	{
		wallet.GET("", walletHandler.List)
		wallet.GET("/:id", walletHandler.GetByID)
		wallet.GET("/by-dni/:identityDni", walletHandler.GetByIdentityDNI)
		wallet.POST("", walletHandler.Create)
		wallet.PUT("/:id", walletHandler.Update)
		wallet.DELETE("/:id", walletHandler.Delete)
	}

	return r
}
