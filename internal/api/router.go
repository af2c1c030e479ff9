package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/pricing"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, sessions *middleware.SessionManager, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	formatter := pricing.NewFormatter(cfg.Checkout.CurrencyLocale)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(middleware.SessionMiddleware(sessions))
	{
		cartRoutes := v1.Group("/cart")
		{
			cartRoutes.GET("", handlers.HandleGetCart(logger))
			cartRoutes.DELETE("", handlers.HandleClearCart(logger))
			cartRoutes.POST("/items", handlers.HandleAddItem(logger))
			cartRoutes.PUT("/items/:variantId", handlers.HandleUpdateItem(logger))
			cartRoutes.PATCH("/items/:variantId", handlers.HandleDeferUpdateItem(logger))
			cartRoutes.DELETE("/items/:variantId", handlers.HandleRemoveItem(logger))
		}

		checkoutRoutes := v1.Group("/checkout")
		{
			checkoutRoutes.GET("", handlers.HandleGetCheckout(formatter, logger))
			checkoutRoutes.GET("/payment-methods", handlers.HandlePaymentMethods())
			checkoutRoutes.POST("/shipping", handlers.HandleShipping(formatter, logger))
			checkoutRoutes.POST("/payment", handlers.HandlePayment(formatter, logger))
			checkoutRoutes.POST("/back", handlers.HandleBack(formatter, logger))
			checkoutRoutes.POST("/discount", handlers.HandleApplyDiscount(formatter, logger))
			checkoutRoutes.DELETE("/discount", handlers.HandleRemoveDiscount(formatter, logger))
			checkoutRoutes.POST("/loyalty", handlers.HandleApplyPoints(formatter, logger))
			checkoutRoutes.DELETE("/loyalty", handlers.HandleDisablePoints(formatter, logger))
			checkoutRoutes.POST("/confirm", handlers.HandleConfirm(formatter, logger))
		}

		addressRoutes := v1.Group("/addresses")
		{
			addressRoutes.GET("", handlers.HandleListAddresses(logger))
			addressRoutes.POST("", handlers.HandleCreateAddress(logger))
			addressRoutes.PUT("/:id", handlers.HandleUpdateAddress(logger))
			addressRoutes.DELETE("/:id", handlers.HandleDeleteAddress(logger))
			addressRoutes.PUT("/:id/default", handlers.HandleSetDefaultAddress(logger))
		}

		v1.GET("/loyalty/balance", handlers.HandleLoyaltyBalance(logger))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
