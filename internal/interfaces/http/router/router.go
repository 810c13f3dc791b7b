package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pharmakart/backend/internal/infrastructure/logger"
	"github.com/pharmakart/backend/internal/interfaces/http/handler"
	"github.com/pharmakart/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the resource handlers wired into the router
type Handlers struct {
	PurchaseOrder *handler.PurchaseOrderHandler
	Supplier      *handler.SupplierHandler
	Batch         *handler.BatchHandler
	Product       *handler.ProductHandler
	System        *handler.SystemHandler
}

// Setup builds the gin engine with middleware and all API routes under /api/v1
func Setup(log *zap.Logger, corsConfig middleware.CORSConfig, maxBodySize int64, h Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(maxBodySize),
	)

	engine.GET("/healthz", h.System.Healthz)

	api := engine.Group("/api/v1")

	procurement := api.Group("/procurement")
	{
		orders := procurement.Group("/purchase-orders")
		orders.POST("", h.PurchaseOrder.Create)
		orders.GET("", h.PurchaseOrder.List)
		orders.GET("/status-summary", h.PurchaseOrder.StatusSummary)
		orders.GET("/number/:po_number", h.PurchaseOrder.GetByNumber)
		orders.GET("/:id", h.PurchaseOrder.GetByID)
		orders.PATCH("/:id", h.PurchaseOrder.Update)
		orders.POST("/:id/send", h.PurchaseOrder.Send)
		orders.POST("/:id/receive", h.PurchaseOrder.Receive)
		orders.POST("/:id/cancel", h.PurchaseOrder.Cancel)
		orders.POST("/:id/override-status", h.PurchaseOrder.OverrideStatus)
		orders.GET("/:id/document", h.PurchaseOrder.Document)
	}

	inventory := api.Group("/inventory")
	{
		batches := inventory.Group("/batches")
		batches.GET("", h.Batch.List)
		batches.GET("/product/:product_id", h.Batch.ListByProduct)
		batches.GET("/purchase-order/:order_id", h.Batch.ListByPurchaseOrder)
		batches.GET("/:id", h.Batch.GetByID)
	}

	partners := api.Group("/partners")
	{
		suppliers := partners.Group("/suppliers")
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("", h.Supplier.List)
		suppliers.GET("/:id", h.Supplier.GetByID)
		suppliers.PATCH("/:id", h.Supplier.Update)
	}

	catalog := api.Group("/catalog")
	{
		products := catalog.Group("/products")
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.GetByID)
	}

	return engine
}
