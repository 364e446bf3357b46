// internal/router/router.go
package router

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/pricepulse/pricepulse-backend/internal/config"
	"github.com/pricepulse/pricepulse-backend/internal/handlers"
	"github.com/pricepulse/pricepulse-backend/internal/middleware"
	"github.com/pricepulse/pricepulse-backend/internal/services"
	"github.com/pricepulse/pricepulse-backend/internal/utils"
	"github.com/pricepulse/pricepulse-backend/internal/ws"
)

func Initialize(db *gorm.DB, cfg *config.Config, hub *ws.Hub) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg, hub)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage service:", err)
	}

	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db)
	priceService := services.NewPriceService(db, notificationService)
	providerService := services.NewProviderService(db)
	alertService := notificationService.Alerts()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	priceHandler := handlers.NewPriceHandler(priceService)
	providerHandler := handlers.NewProviderHandler(providerService)
	alertHandler := handlers.NewAlertHandler(alertService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RateLimit(rate.Every(time.Second), 10))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rate.Every(time.Minute), 5))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Product routes
		products := v1.Group("/products")
		{
			// Reads are public but pick up user identity when a token is sent.
			reads := products.Group("")
			reads.Use(middleware.OptionalAuth())
			{
				reads.GET("", productHandler.GetProducts)
				reads.POST("/search", productHandler.SearchProducts)
				reads.GET("/:id", productHandler.GetProduct)
				reads.GET("/:id/prices", priceHandler.GetPriceHistory)
				reads.GET("/:id/price-history", priceHandler.GetPriceHistory)
			}

			// Mutations require authentication
			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", productHandler.CreateProduct)
				protected.PUT("/:id", productHandler.UpdateProduct)
				protected.DELETE("/:id", productHandler.DeleteProduct)
				protected.POST("/:id/restore", productHandler.RestoreProduct)
				protected.POST("/:id/image", productHandler.UploadProductImage)
				protected.POST("/:id/prices", middleware.RateLimit(rate.Every(time.Second), 30), priceHandler.AddPriceRecord)
			}
		}

		// Price history by query parameter
		v1.GET("/price-history", middleware.OptionalAuth(), priceHandler.GetPriceHistoryByQuery)

		// Facets
		v1.GET("/categories", productHandler.GetCategories)
		v1.GET("/brands", productHandler.GetBrands)

		// Provider routes (admin only)
		providers := v1.Group("/providers")
		providers.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			providers.GET("", providerHandler.GetProviders)
			providers.POST("", providerHandler.CreateProvider)
			providers.GET("/:id", providerHandler.GetProvider)
			providers.PUT("/:id", providerHandler.UpdateProvider)
			providers.DELETE("/:id", providerHandler.DeactivateProvider)
		}

		// Alert routes
		alerts := v1.Group("/alerts")
		alerts.Use(middleware.AuthRequired())
		{
			alerts.GET("", alertHandler.GetAlerts)
			alerts.POST("", alertHandler.CreateAlert)
			alerts.GET("/:id", alertHandler.GetAlert)
			alerts.PUT("/:id", alertHandler.UpdateAlert)
			alerts.DELETE("/:id", alertHandler.DeleteAlert)
		}

		// WebSocket price stream
		v1.GET("/ws", wsHandler.Connect)
	}

	return r
}
