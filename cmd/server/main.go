package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/pharmakart/backend/internal/application/catalog"
	inventoryapp "github.com/pharmakart/backend/internal/application/inventory"
	partnerapp "github.com/pharmakart/backend/internal/application/partner"
	procurementapp "github.com/pharmakart/backend/internal/application/procurement"
	"github.com/pharmakart/backend/internal/infrastructure/config"
	"github.com/pharmakart/backend/internal/infrastructure/eventbus"
	"github.com/pharmakart/backend/internal/infrastructure/logger"
	"github.com/pharmakart/backend/internal/infrastructure/notification"
	"github.com/pharmakart/backend/internal/infrastructure/persistence"
	"github.com/pharmakart/backend/internal/infrastructure/printing"
	"github.com/pharmakart/backend/internal/infrastructure/sequence"
	"github.com/pharmakart/backend/internal/interfaces/http/handler"
	"github.com/pharmakart/backend/internal/interfaces/http/middleware"
	"github.com/pharmakart/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting PharmaKart procurement backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	// Event bus with a catch-all logging subscriber
	bus := eventbus.NewInMemoryEventBus(log)
	bus.Subscribe(eventbus.NewLoggingHandler(log))

	// Application services
	orderService := procurementapp.NewPurchaseOrderService(orderRepo, supplierRepo, productRepo)
	orderService.SetEventPublisher(bus)
	batchService := inventoryapp.NewBatchService(batchRepo)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	productService := catalogapp.NewProductService(productRepo)

	// Optional Redis-backed PO number allocator; without it the service
	// falls back to a database max-scan per allocation
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()

		allocator := sequence.NewRedisAllocator(redisClient)
		year := time.Now().Year()
		stored, err := orderRepo.NextSequenceForYear(context.Background(), year)
		if err != nil {
			log.Fatal("Failed to read stored PO sequence", zap.Error(err))
		}
		if err := allocator.SeedSequence(context.Background(), year, stored-1); err != nil {
			log.Fatal("Failed to seed PO sequence", zap.Error(err))
		}
		orderService.SetNumberAllocator(allocator)
		log.Info("Redis PO number allocator enabled", zap.Int64("seeded_from", stored-1))
	}

	// Supplier dispatch over SMTP
	if cfg.SMTP.Host != "" {
		orderService.SetDispatchGateway(notification.NewSMTPGateway(cfg.SMTP, log))
		log.Info("SMTP dispatch gateway enabled", zap.String("host", cfg.SMTP.Host))
	}

	// PDF document rendering through headless Chrome
	if cfg.Printing.Enabled {
		renderer := printing.NewChromedpRenderer(cfg.Printing, log)
		defer func() {
			_ = renderer.Close()
		}()
		orderService.SetDocumentRenderer(renderer)
		log.Info("PDF document renderer enabled", zap.String("chrome_url", cfg.Printing.ChromeURL))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine := router.Setup(log, corsConfig, cfg.HTTP.MaxBodySize, router.Handlers{
		PurchaseOrder: handler.NewPurchaseOrderHandler(orderService),
		Supplier:      handler.NewSupplierHandler(supplierService),
		Batch:         handler.NewBatchHandler(batchService),
		Product:       handler.NewProductHandler(productService),
		System:        handler.NewSystemHandler(db, version),
	})

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shut down", zap.Error(err))
	}
	log.Info("Server stopped")
}
