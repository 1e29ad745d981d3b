package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hibiken/asynq"

	"business-assistant-backend/internal/rag"
	"business-assistant-backend/internal/telemetry"
	"business-assistant-backend/services"
)

type constantEmbedder struct{}

func (constantEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if strings.Contains(strings.ToLower(text), "shipping") {
			vectors[i] = []float32{1, 0}
		} else {
			vectors[i] = []float32{0, 1}
		}
	}
	return vectors, nil
}

func TestHandleIndexRebuild(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "documents")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "Standard shipping takes 3 to 5 business days."
	if err := os.WriteFile(filepath.Join(docs, "shipping.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	manager := rag.NewManager(constantEmbedder{}, services.NewDocumentExtractor(), rag.Options{
		IndexPath: filepath.Join(dir, "index.gob"),
	})
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatalf("init metrics: %v", err)
	}
	processor := NewTaskProcessor(manager, metrics)

	payload, err := json.Marshal(IndexRebuildPayload{
		DocumentsDir: docs,
		ChunkSize:    80,
		ChunkOverlap: 20,
		RequestedBy:  "test-admin",
	})
	if err != nil {
		t.Fatal(err)
	}

	task := asynq.NewTask(TaskIndexRebuild, payload)
	if err := processor.HandleIndexRebuild(context.Background(), task); err != nil {
		t.Fatalf("handle rebuild: %v", err)
	}

	if !manager.Ready() {
		t.Fatal("manager should be ready after a rebuild")
	}
	results, err := manager.Query(context.Background(), "shipping time", 3, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results from the rebuilt index")
	}
}

func TestHandleIndexRebuildBadPayload(t *testing.T) {
	manager := rag.NewManager(constantEmbedder{}, services.NewDocumentExtractor(), rag.Options{})
	processor := NewTaskProcessor(manager, nil)

	task := asynq.NewTask(TaskIndexRebuild, []byte("not json"))
	err := processor.HandleIndexRebuild(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("err = %v, want SkipRetry so the task is not retried", err)
	}
}
