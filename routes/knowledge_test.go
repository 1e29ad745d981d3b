package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"business-assistant-backend/internal/config"
	"business-assistant-backend/internal/rag"
	"business-assistant-backend/internal/telemetry"
	"business-assistant-backend/middleware"
	"business-assistant-backend/services"
)

// stubEmbedder maps texts onto a tiny fixed basis so retrieval is
// deterministic without a provider.
type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "return"):
			vectors[i] = []float32{1, 0, 0}
		case strings.Contains(lower, "hours"):
			vectors[i] = []float32{0, 1, 0}
		default:
			vectors[i] = []float32{0, 0, 1}
		}
	}
	return vectors, nil
}

func newKnowledgeRouter(t *testing.T, build bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	docs := filepath.Join(dir, "documents")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	policies := "Customers may return unused items within 30 days.\n" +
		"Office hours are Monday through Friday, 8am to 6pm."
	if err := os.WriteFile(filepath.Join(docs, "policies.txt"), []byte(policies), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		DocumentsDir: docs,
		RetrievalK:   5,
		MinScore:     0.2,
		ChunkSize:    80,
		ChunkOverlap: 20,
	}

	manager := rag.NewManager(stubEmbedder{}, services.NewDocumentExtractor(), rag.Options{
		IndexPath: filepath.Join(dir, "index.gob"),
	})
	if build {
		if _, err := manager.Build(context.Background(), docs, 80, 20); err != nil {
			t.Fatalf("build: %v", err)
		}
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatalf("init metrics: %v", err)
	}

	router := gin.New()
	SetupKnowledgeRoutes(router, cfg, manager, nil, middleware.NewAuthMiddleware(cfg), metrics)
	return router
}

func TestKnowledgeSearchReturnsRankedChunks(t *testing.T) {
	router := newKnowledgeRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/knowledge/search?q=What+is+the+return+policy", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Results []struct {
			Text   string  `json:"text"`
			Source string  `json:"source"`
			Score  float64 `json:"score"`
		} `json:"results"`
		IndexAvailable bool `json:"index_available"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !resp.IndexAvailable {
		t.Fatal("expected index_available true")
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected at least one result")
	}
	if !strings.Contains(strings.ToLower(resp.Results[0].Text), "return") {
		t.Errorf("top result %q should mention returns", resp.Results[0].Text)
	}
	if resp.Results[0].Source == "" {
		t.Error("expected source path on result")
	}
}

func TestKnowledgeSearchWithoutIndex(t *testing.T) {
	router := newKnowledgeRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/knowledge/search?q=returns", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		IndexAvailable bool `json:"index_available"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.IndexAvailable {
		t.Error("expected index_available false before any build")
	}
}

func TestKnowledgeSearchRequiresQuery(t *testing.T) {
	router := newKnowledgeRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/knowledge/search", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestKnowledgeStatus(t *testing.T) {
	router := newKnowledgeRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/knowledge/status", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Ready   bool `json:"ready"`
		Entries int  `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Ready || resp.Entries == 0 {
		t.Errorf("status = %+v, want ready with entries", resp)
	}
}

func TestReindexRequiresAdminToken(t *testing.T) {
	router := newKnowledgeRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/reindex", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
