package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"business-assistant-backend/internal/logger"
	"business-assistant-backend/internal/rag"
	"business-assistant-backend/internal/telemetry"
)

const TaskIndexRebuild = "index:rebuild"

// IndexRebuildPayload describes one rebuild of the knowledge index.
type IndexRebuildPayload struct {
	DocumentsDir string `json:"documents_dir"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
	RequestedBy  string `json:"requested_by,omitempty"`
}

// NewIndexRebuildTask enqueues a full rebuild. Rebuilds are idempotent,
// so retrying a failed one is safe.
func NewIndexRebuildTask(p IndexRebuildPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIndexRebuild,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor runs queued maintenance work against the shared index
// manager.
type TaskProcessor struct {
	manager *rag.Manager
	metrics *telemetry.Metrics
}

// NewTaskProcessor wraps the manager for use as asynq handlers. metrics
// may be nil.
func NewTaskProcessor(manager *rag.Manager, metrics *telemetry.Metrics) *TaskProcessor {
	return &TaskProcessor{manager: manager, metrics: metrics}
}

func (p *TaskProcessor) HandleIndexRebuild(ctx context.Context, t *asynq.Task) error {
	var payload IndexRebuildPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Index rebuild started",
		"documents_dir", payload.DocumentsDir,
		"requested_by", payload.RequestedBy)

	start := time.Now()
	index, err := p.manager.Build(ctx, payload.DocumentsDir, payload.ChunkSize, payload.ChunkOverlap)
	if p.metrics != nil {
		p.metrics.RecordRebuild(time.Since(start).Seconds(), err == nil)
	}
	if err != nil {
		logger.Error("Index rebuild failed", "error", err)
		return err
	}

	logger.Info("Index rebuild completed",
		"chunks", index.Len(),
		"dimension", index.Dimension(),
		"duration", time.Since(start).String())
	return nil
}
