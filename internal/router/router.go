// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repuestos-py/marketplace/internal/blob"
	"github.com/repuestos-py/marketplace/internal/cart"
	"github.com/repuestos-py/marketplace/internal/config"
	"github.com/repuestos-py/marketplace/internal/handlers"
	"github.com/repuestos-py/marketplace/internal/metrics"
	"github.com/repuestos-py/marketplace/internal/middleware"
	"github.com/repuestos-py/marketplace/internal/services"
	"github.com/repuestos-py/marketplace/internal/store"
	"github.com/repuestos-py/marketplace/internal/utils"
)

const version = "1.0.0"

// Dependencies are the backends the API is wired to.
type Dependencies struct {
	Store    *store.Store
	Blobs    blob.Store
	Sessions *cart.Sessions
	// Nil disables rate limiting.
	Limiters *middleware.RateLimiters
	// Replaces the email notifier, mostly for tests.
	Notifications *services.NotificationService
}

func Initialize(cfg *config.Config, deps Dependencies) *gin.Engine {
	timeout := cfg.StoreTimeout()

	// Initialize services
	notificationService := deps.Notifications
	if notificationService == nil {
		notificationService = services.NewNotificationService(cfg)
	}
	storageService := services.NewStorageService(deps.Blobs, cfg.Policy)
	authorizationService := services.NewAuthorizationService()

	authService := services.NewAuthService(deps.Store, cfg)
	userService := services.NewUserService(deps.Store, timeout)
	productService := services.NewProductService(deps.Store, authorizationService, timeout)
	moderationService := services.NewModerationService(deps.Store, notificationService, timeout)
	categoryService := services.NewCategoryService(deps.Store, timeout)
	adService := services.NewAdService(deps.Store, storageService, cfg.Policy.MaxAds, timeout)
	adminService := services.NewAdminService(deps.Store, timeout)
	cartService := services.NewCartService(deps.Sessions, productService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	adHandler := handlers.NewAdHandler(adService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	adminHandler := handlers.NewAdminHandler(adminService, moderationService, productService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())
	r.Use(middleware.RequestLogger())
	if cfg.Environment == "production" {
		r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	} else {
		r.Use(middleware.CORS())
	}
	r.Use(middleware.I18nMiddleware())

	limit := func(l *middleware.RateLimiter) gin.HandlerFunc {
		if l == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return l.Middleware()
	}
	var general, authLimit, upload *middleware.RateLimiter
	if deps.Limiters != nil {
		general, authLimit, upload = deps.Limiters.General, deps.Limiters.Auth, deps.Limiters.Upload
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})
	r.GET("/metrics", metrics.Handler())

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(limit(general))
	{
		auth := v1.Group("/auth")
		auth.Use(limit(authLimit), middleware.AuthRequired())
		{
			auth.POST("/session", authHandler.SyncSession)
			auth.GET("/me", authHandler.GetProfile)
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/mine", middleware.AuthRequired(), productHandler.GetMyProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)

			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", productHandler.CreateProduct)
				protected.POST("/images", limit(upload), productHandler.UploadProductImages)
			}
		}

		v1.GET("/categories", categoryHandler.GetCategories)
		v1.GET("/ads", adHandler.GetRotation)

		carts := v1.Group("/cart")
		carts.Use(middleware.CartSession())
		{
			carts.GET("", cartHandler.GetCart)
			carts.DELETE("", cartHandler.Clear)
			carts.POST("/items", cartHandler.AddItem)
			carts.PUT("/items/:id", cartHandler.UpdateQuantity)
			carts.DELETE("/items/:id", cartHandler.RemoveItem)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)

			// Moderation
			adminProducts := admin.Group("/products")
			{
				adminProducts.GET("", adminHandler.GetProducts)
				adminProducts.PUT("/:id", adminHandler.UpdateProduct)
				adminProducts.DELETE("/:id", adminHandler.DeleteProduct)
				adminProducts.PUT("/:id/publish", adminHandler.PublishProduct)
				adminProducts.PUT("/:id/reject", adminHandler.RejectProduct)
			}

			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", userHandler.GetUsers)
				adminUsers.GET("/:id", userHandler.GetUser)
				adminUsers.PUT("/:id/role", userHandler.UpdateUserRole)
				adminUsers.DELETE("/:id", userHandler.DeleteUser)
			}

			adminCategories := admin.Group("/categories")
			{
				adminCategories.GET("", categoryHandler.GetCategories)
				adminCategories.POST("", categoryHandler.CreateCategory)
				adminCategories.PUT("/:id", categoryHandler.UpdateCategory)
				adminCategories.DELETE("/:id", categoryHandler.DeleteCategory)
			}

			adminAds := admin.Group("/ads")
			{
				adminAds.GET("", adHandler.GetAds)
				adminAds.POST("", limit(upload), adHandler.CreateAd)
				adminAds.PUT("/:id", limit(upload), adHandler.UpdateAd)
				adminAds.DELETE("/:id", adHandler.DeleteAd)
			}
		}
	}

	// Locally stored images are served by the API itself.
	if local, ok := deps.Blobs.(*blob.LocalStore); ok {
		r.Static("/uploads", local.Dir())
	}

	return r
}
