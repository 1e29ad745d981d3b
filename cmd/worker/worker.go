package main

import (
	"context"
	"log"
	"os"

	"github.com/hibiken/asynq"

	"business-assistant-backend/internal/ai"
	"business-assistant-backend/internal/config"
	"business-assistant-backend/internal/logger"
	"business-assistant-backend/internal/queue"
	"business-assistant-backend/internal/rag"
	"business-assistant-backend/internal/telemetry"
	"business-assistant-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Error("Failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	embedClient, err := ai.NewEmbeddingClient(ctx, cfg, metrics)
	if err != nil {
		logger.Error("Failed to initialize embedding client", "error", err)
		os.Exit(1)
	}
	defer embedClient.Close()

	manager := rag.NewManager(embedClient, services.NewDocumentExtractor(), rag.Options{
		IndexPath: cfg.VectorIndexPath,
		BatchSize: cfg.EmbedBatchSize,
	})

	server := asynq.NewServer(
		queue.RedisConnOpt(cfg),
		asynq.Config{
			// Rebuilds are heavyweight and mutually exclusive at the
			// manager level, so a small worker pool is enough.
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(manager, metrics)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIndexRebuild, processor.HandleIndexRebuild)

	logger.Info("Starting worker", "redis", cfg.RedisURL)
	if err := server.Run(mux); err != nil {
		logger.Error("Failed to start worker", "error", err)
		os.Exit(1)
	}
}
