package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"business-assistant-backend/internal/ai"
	"business-assistant-backend/internal/config"
	"business-assistant-backend/internal/logger"
	"business-assistant-backend/internal/queue"
	"business-assistant-backend/internal/rag"
	"business-assistant-backend/internal/telemetry"
	"business-assistant-backend/middleware"
	"business-assistant-backend/routes"
	"business-assistant-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("business-assistant-backend", cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("Failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer shutdown()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Error("Failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := services.OpenCatalogDB(cfg.CatalogDBPath)
	if err != nil {
		logger.Error("Failed to open catalog database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	embedClient, err := ai.NewEmbeddingClient(ctx, cfg, metrics)
	if err != nil {
		logger.Error("Failed to initialize embedding client", "error", err)
		os.Exit(1)
	}
	defer embedClient.Close()

	assistant, err := ai.NewAssistantClient(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize assistant client", "error", err)
		os.Exit(1)
	}
	defer assistant.Close()

	manager := rag.NewManager(embedClient, services.NewDocumentExtractor(), rag.Options{
		IndexPath: cfg.VectorIndexPath,
		BatchSize: cfg.EmbedBatchSize,
	})

	// No persisted index yet: build one in the background so the first
	// deployment becomes searchable without an operator reindex.
	if _, err := os.Stat(cfg.VectorIndexPath); os.IsNotExist(err) {
		go func() {
			buildCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if _, err := manager.Build(buildCtx, cfg.DocumentsDir, cfg.ChunkSize, cfg.ChunkOverlap); err != nil {
				logger.Error("Initial index build failed", "error", err)
			}
		}()
	}

	scheduler := services.NewMaintenanceScheduler(cfg, manager)
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start maintenance scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	catalog := services.NewCatalogService(db)
	orders := services.NewOrderService(db)

	invoices, err := services.NewInvoiceService(db, cfg.InvoicesDir)
	if err != nil {
		logger.Error("Failed to initialize invoice service", "error", err)
		os.Exit(1)
	}

	reports, err := services.NewReportService(db, cfg.ReportsDir)
	if err != nil {
		logger.Error("Failed to initialize report service", "error", err)
		os.Exit(1)
	}

	company, err := services.NewCompanyInfoService(cfg.CompanyInfoPath, cfg.DeliveryRulesPath)
	if err != nil {
		logger.Warn("Company info unavailable, info and delivery-rule routes disabled", "error", err)
	}

	external := services.NewExternalService(cfg.ExchangeRateAPIURL, cfg.HolidayAPIURL)

	asynqClient := asynq.NewClient(queue.RedisConnOpt(cfg))
	defer asynqClient.Close()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware(), middleware.EnrichTrace())
	}
	router.Use(middleware.MetricsMiddleware(metrics))

	if rdb, err := config.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, rate limiting disabled", "error", err)
	} else {
		defer rdb.Close()
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
	router.GET("/ready", func(c *gin.Context) {
		if !manager.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ready": true})
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg)

	routes.SetupAssistantRoutes(router, cfg, manager, assistant)
	routes.SetupKnowledgeRoutes(router, cfg, manager, asynqClient, authMiddleware, metrics)
	routes.SetupCatalogRoutes(router, catalog)
	routes.SetupOrderRoutes(router, orders, authMiddleware)
	routes.SetupInvoiceRoutes(router, invoices, orders, authMiddleware)
	routes.SetupReportRoutes(router, reports, authMiddleware)
	routes.SetupCompanyRoutes(router, company, external)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited")
}
