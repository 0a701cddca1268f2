// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zapcatalog/zapcatalog-backend/internal/config"
	"github.com/zapcatalog/zapcatalog-backend/internal/handlers"
	"github.com/zapcatalog/zapcatalog-backend/internal/middleware"
	"github.com/zapcatalog/zapcatalog-backend/internal/realtime"
	"github.com/zapcatalog/zapcatalog-backend/internal/services"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, hub *realtime.Hub) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	authService := services.NewAuthService(db, cfg)
	companyService := services.NewCompanyService(db)
	catalogService := services.NewCatalogService(db)
	orderService := services.NewOrderService(db, hub)
	notificationService := services.NewNotificationService(db)
	reportService := services.NewReportService(db)
	clientService := services.NewClientService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	companyHandler := handlers.NewCompanyHandler(companyService, storageService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, companyService, storageService)
	orderHandler := handlers.NewOrderHandler(orderService, companyService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, companyService, hub, cfg)
	reportHandler := handlers.NewReportHandler(reportService, companyService)
	clientHandler := handlers.NewClientHandler(clientService, companyService)
	publicHandler := handlers.NewPublicHandler(catalogService, companyService, orderService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Browser navigation between the login and dashboard pages. Those
	// paths are served by the frontend, so they land here as unmatched
	// routes and the guard decides where to send the browser.
	r.NoRoute(middleware.RouteGuard(cfg), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Public storefront routes
		store := v1.Group("/s/:slug")
		{
			store.GET("", publicHandler.GetCatalog)
			store.POST("/cart/preview", publicHandler.PreviewCart)
			store.POST("/orders", middleware.OptionalAuth(), middleware.CheckoutRateLimit(), publicHandler.CreateOrder)
		}

		// Company profile and settings
		company := v1.Group("/company")
		company.Use(middleware.AuthRequired(), middleware.OwnerRequired())
		{
			company.GET("", companyHandler.GetCompany)
			company.POST("", companyHandler.CreateCompany)
			company.PUT("/:id", companyHandler.UpdateCompany)
			company.POST("/logo", middleware.UploadRateLimit(), companyHandler.UploadLogo)
		}

		settings := v1.Group("/settings")
		settings.Use(middleware.AuthRequired(), middleware.OwnerRequired())
		{
			settings.GET("", companyHandler.GetSettings)
			settings.PUT("", companyHandler.UpdateSettings)
		}

		// Catalog management
		categories := v1.Group("/categories")
		categories.Use(middleware.AuthRequired(), middleware.OwnerRequired())
		{
			categories.GET("", catalogHandler.ListCategories)
			categories.POST("", catalogHandler.CreateCategory)
			categories.PUT("/:id", catalogHandler.UpdateCategory)
			categories.DELETE("/:id", catalogHandler.DeleteCategory)
		}

		products := v1.Group("/products")
		products.Use(middleware.AuthRequired(), middleware.OwnerRequired())
		{
			products.GET("", catalogHandler.ListProducts)
			products.POST("", catalogHandler.CreateProduct)
			products.GET("/:id", catalogHandler.GetProduct)
			products.PUT("/:id", catalogHandler.UpdateProduct)
			products.DELETE("/:id", catalogHandler.DeleteProduct)
			products.POST("/upload-images", middleware.UploadRateLimit(), catalogHandler.UploadProductImages)
		}

		// Order management
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", middleware.OwnerRequired(), orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("/:id/items", orderHandler.GetOrderItems)
			orders.POST("/:id/approve", middleware.OwnerRequired(), orderHandler.ApproveOrder)
			orders.POST("/:id/cancel", middleware.OwnerRequired(), orderHandler.CancelOrder)
			orders.GET("/:id/whatsapp-link", orderHandler.WhatsAppLink)
		}

		// Notifications
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired(), middleware.OwnerRequired())
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.GET("/stream", notificationHandler.Stream)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}

		// Reports
		reports := v1.Group("/reports")
		reports.Use(middleware.AuthRequired(), middleware.OwnerRequired())
		{
			reports.GET("", reportHandler.GetReport)
		}

		// Client registry
		clients := v1.Group("/clients")
		clients.Use(middleware.AuthRequired(), middleware.OwnerRequired())
		{
			clients.GET("", clientHandler.ListClients)
			clients.POST("", clientHandler.CreateContact)
			clients.PUT("/:id", clientHandler.UpdateClient)
			clients.DELETE("/:id", clientHandler.DeleteContact)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
