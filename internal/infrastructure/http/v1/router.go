// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tillpos/internal/domain/cart"
	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/invoice"
	"tillpos/internal/domain/orders"
	"tillpos/internal/infrastructure/http/v1/handlers"
	"tillpos/internal/infrastructure/http/v1/middleware"
	"tillpos/pkg/logger"
)

// RouterConfig holds the wired services for the terminal API.
type RouterConfig struct {
	Logger *logger.Logger

	Catalog  *catalog.Service
	Cart     *cart.Service
	Invoices *invoice.Service
	Orders   *orders.Coordinator

	// DB backs the health check; nil skips the store probe.
	DB handlers.Pinger
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

	base := handlers.NewBaseHandler()

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	router.GET("/healthz", healthHandler.Check)

	catalogHandler := handlers.NewCatalogHandler(base, cfg.Catalog)
	cartHandler := handlers.NewCartHandler(base, cfg.Cart)
	checkoutHandler := handlers.NewCheckoutHandler(base, cfg.Cart, cfg.Invoices, cfg.Catalog)
	invoiceHandler := handlers.NewInvoiceHandler(base, cfg.Invoices)
	ordersHandler := handlers.NewOrdersHandler(base, cfg.Orders)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", catalogHandler.Products)
		v1.POST("/sync", catalogHandler.Sync)

		cartGroup := v1.Group("/cart")
		{
			cartGroup.GET("", cartHandler.Get)
			cartGroup.POST("/items", cartHandler.AddItem)
			cartGroup.PATCH("/items/:key", cartHandler.UpdateQuantity)
			cartGroup.DELETE("/items/:key", cartHandler.RemoveItem)
			cartGroup.DELETE("", cartHandler.Clear)
		}

		v1.POST("/checkout", checkoutHandler.Checkout)

		invoiceGroup := v1.Group("/invoices")
		{
			invoiceGroup.GET("", invoiceHandler.List)
			invoiceGroup.GET("/:id", invoiceHandler.Get)
			invoiceGroup.PATCH("/:id", invoiceHandler.Patch)
			invoiceGroup.POST("/:id/retry-sync", invoiceHandler.RetrySync)
			invoiceGroup.DELETE("", invoiceHandler.Clear)
		}

		v1.GET("/orders", ordersHandler.List)
	}

	return router
}
