package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zarmind-system/config"
	"zarmind-system/internal/database"
	"zarmind-system/internal/events"
	"zarmind-system/internal/gateway/handlers"
	"zarmind-system/internal/gateway/middleware"
	"zarmind-system/internal/services/inventory"
	"zarmind-system/internal/services/receivables"
	"zarmind-system/internal/services/sales"
	"zarmind-system/internal/store/gormstore"
)

const overdueSweepInterval = time.Hour

func main() {
	cfg := config.LoadConfig()

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	st := gormstore.New(db)
	publisher := events.NewRedisPublisher(rdb)

	inventorySvc := inventory.New(st, rdb, publisher)
	salesSvc := sales.New(st, inventorySvc, publisher, cfg.Sales.RefundRestocksInventory)
	receivablesSvc := receivables.New(st, rdb)

	salesHandler := handlers.NewSalesHTTPHandler(salesSvc)
	inventoryHandler := handlers.NewInventoryHTTPHandler(inventorySvc)
	financialsHandler := handlers.NewFinancialsHTTPHandler(receivablesSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := events.NewHub()
	go hub.Run(ctx, rdb)
	go runOverdueSweep(ctx, receivablesSvc)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit("100-M"))

	api := r.Group("/api")
	api.Use(middleware.JWTAuth(cfg.Auth.JWTSecret))
	{
		salesGroup := api.Group("/transactions/sales")
		{
			salesGroup.POST("", salesHandler.CreateSale)
			salesGroup.GET("", salesHandler.ListSales)
			salesGroup.GET("/summary", salesHandler.GetSummary)
			salesGroup.GET("/invoice/:invoiceNumber", salesHandler.GetSaleByInvoice)
			salesGroup.GET("/:id", salesHandler.GetSale)
			salesGroup.PATCH("/:id", salesHandler.UpdateSale)
			salesGroup.DELETE("/:id", salesHandler.DeleteSale)
			salesGroup.POST("/:id/payment", salesHandler.RecordPayment)
			salesGroup.POST("/:id/complete", salesHandler.CompleteSale)
			salesGroup.POST("/:id/cancel", salesHandler.CancelSale)
			salesGroup.POST("/:id/refund", salesHandler.RefundSale)
		}

		inventoryGroup := api.Group("/inventory")
		{
			inventoryGroup.GET("/low-stock", inventoryHandler.LowStock)
			inventoryGroup.GET("/movements", inventoryHandler.ListMovements)
			inventoryGroup.PATCH("/:category/:id/adjust-quantity", inventoryHandler.AdjustQuantity)
		}

		financialsGroup := api.Group("/financials/accounts-receivable")
		{
			financialsGroup.POST("", financialsHandler.CreateReceivable)
			financialsGroup.GET("", financialsHandler.ListReceivables)
			financialsGroup.GET("/summary", financialsHandler.GetSummary)
			financialsGroup.GET("/:id", financialsHandler.GetReceivable)
			financialsGroup.PATCH("/:id", financialsHandler.UpdateReceivable)
			financialsGroup.DELETE("/:id", financialsHandler.DeleteReceivable)
			financialsGroup.POST("/:id/payment", financialsHandler.RecordPayment)
		}

		api.GET("/ws", hub.Serve)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})

	addr := ":" + cfg.Server.Port
	logrus.Infof("Starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

// runOverdueSweep periodically stamps receivables whose due date passed.
func runOverdueSweep(ctx context.Context, svc *receivables.Service) {
	ticker := time.NewTicker(overdueSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			marked, err := svc.MarkOverdue(ctx, now)
			if err != nil {
				logrus.WithError(err).Warn("overdue sweep failed")
				continue
			}
			if marked > 0 {
				logrus.WithField("marked", marked).Info("stamped overdue receivables")
			}
		}
	}
}
