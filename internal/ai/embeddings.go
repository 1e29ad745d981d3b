package ai

import (
	"context"
	"fmt"
	"time"

	"business-assistant-backend/internal/config"
	"business-assistant-backend/internal/logger"
	"business-assistant-backend/internal/telemetry"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// EmbeddingClient maps texts to fixed-dimension vectors via an external
// model. Default provider is Google Generative AI (text-embedding-004);
// OpenAI is available as an alternative. Batches preserve input order,
// and a given model version returns the same vector for the same text.
type EmbeddingClient struct {
	provider string

	google      *genai.Client
	googleModel string

	openaiClient *openai.Client
	openaiModel  string

	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	metrics *telemetry.Metrics
}

// NewEmbeddingClient builds a client for the configured provider.
// metrics may be nil, in which case call outcomes are not recorded.
func NewEmbeddingClient(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*EmbeddingClient, error) {
	c := &EmbeddingClient{
		provider: cfg.EmbeddingsProvider,
		breaker:  newEmbeddingBreaker(),
		limiter:  rate.NewLimiter(rate.Limit(10), 10),
		metrics:  metrics,
	}

	switch cfg.EmbeddingsProvider {
	case "google", "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
		}
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			return nil, err
		}
		c.provider = "google"
		c.google = client
		c.googleModel = cfg.GoogleEmbeddingsModel

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("missing OPENAI_API_KEY for embeddings")
		}
		c.openaiClient = openai.NewClient(cfg.OpenAIAPIKey)
		c.openaiModel = cfg.OpenAIEmbeddingsModel

	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}

	return c, nil
}

func newEmbeddingBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "EmbeddingsAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// EmbedTexts returns one embedding per input text, order preserved.
func (c *EmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	tracer := otel.Tracer("embedding-client")
	ctx, span := tracer.Start(ctx, "embeddings.embed_texts")
	defer span.End()
	span.SetAttributes(
		attribute.String("embeddings.provider", c.provider),
		attribute.Int("embeddings.batch_size", len(texts)),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		switch c.provider {
		case "google":
			return c.embedGoogle(ctx, texts)
		case "openai":
			return c.embedOpenAI(ctx, texts)
		default:
			return nil, fmt.Errorf("unknown embeddings provider: %s", c.provider)
		}
	})
	if c.metrics != nil {
		c.metrics.RecordEmbeddingCall(c.provider, err == nil)
	}
	if err != nil {
		span.SetAttributes(attribute.Bool("embeddings.error", true))
		return nil, err
	}
	return result.([][]float32), nil
}

func (c *EmbeddingClient) embedGoogle(ctx context.Context, texts []string) ([][]float32, error) {
	model := c.google.EmbeddingModel(c.googleModel)
	batch := model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("no embedding returned for text %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func (c *EmbeddingClient) embedOpenAI(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.openaiClient.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.openaiModel),
		Input: texts,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		src := d.Embedding
		vec := make([]float32, len(src))
		for i := range src {
			vec[i] = float32(src[i])
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}

// Close releases the underlying provider clients.
func (c *EmbeddingClient) Close() error {
	if c.google != nil {
		return c.google.Close()
	}
	return nil
}
