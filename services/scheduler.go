package services

import (
	"context"
	"time"

	"business-assistant-backend/internal/config"
	"business-assistant-backend/internal/logger"
	"business-assistant-backend/internal/rag"

	"github.com/go-co-op/gocron"
)

// MaintenanceScheduler rebuilds the knowledge-base index on a cron
// schedule so document edits land without an operator reindex.
type MaintenanceScheduler struct {
	scheduler *gocron.Scheduler
	manager   *rag.Manager
	cfg       *config.Config
}

func NewMaintenanceScheduler(cfg *config.Config, manager *rag.Manager) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		manager:   manager,
		cfg:       cfg,
	}
}

func (m *MaintenanceScheduler) Start() error {
	_, err := m.scheduler.Cron(m.cfg.ReindexCron).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		logger.Info("scheduled index rebuild starting", "dir", m.cfg.DocumentsDir)
		index, err := m.manager.Build(ctx, m.cfg.DocumentsDir, m.cfg.ChunkSize, m.cfg.ChunkOverlap)
		if err != nil {
			logger.Error("scheduled index rebuild failed", "error", err)
			return
		}
		logger.Info("scheduled index rebuild complete", "chunks", index.Len())
	})
	if err != nil {
		return err
	}

	m.scheduler.StartAsync()
	logger.Info("maintenance scheduler started", "cron", m.cfg.ReindexCron)
	return nil
}

func (m *MaintenanceScheduler) Stop() {
	m.scheduler.Stop()
}
