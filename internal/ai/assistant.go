package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"business-assistant-backend/internal/config"
	"business-assistant-backend/internal/logger"
	"business-assistant-backend/internal/rag"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// AssistantClient generates answers grounded in retrieved policy chunks.
// It never answers from thin air: callers must pass the retrieval results,
// and an empty retrieval means "no grounded answer available".
type AssistantClient struct {
	client  *genai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewAssistantClient(ctx context.Context, cfg *config.Config) (*AssistantClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for assistant")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "AssistantAPI",
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

	return &AssistantClient{
		client:  client,
		model:   cfg.AssistantModel,
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}, nil
}

// GenerateAnswer produces a response to question grounded in the given
// retrieval results.
func (c *AssistantClient) GenerateAnswer(ctx context.Context, question string, results []rag.Result) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("no grounding context provided")
	}

	tracer := otel.Tracer("assistant-client")
	ctx, span := tracer.Start(ctx, "assistant.generate_answer")
	defer span.End()
	span.SetAttributes(
		attribute.String("assistant.model", c.model),
		attribute.Int("assistant.context_chunks", len(results)),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		model := c.client.GenerativeModel(c.model)
		model.SetTemperature(0.1)
		model.SetMaxOutputTokens(1024)

		resp, err := model.GenerateContent(ctx, genai.Text(buildGroundedPrompt(question, results)))
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("assistant.error", true))
		return "", err
	}

	resp := result.(*genai.GenerateContentResponse)
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func buildGroundedPrompt(question string, results []rag.Result) string {
	var b strings.Builder
	b.WriteString("You are a business assistant for an industrial supply company. ")
	b.WriteString("Answer the employee's question using ONLY the company document excerpts below. ")
	b.WriteString("If the excerpts do not contain the answer, say you could not find the information.\n\n")
	b.WriteString("Company document excerpts:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] (source: %s)\n%s\n\n", i+1, r.Chunk.SourcePath, r.Chunk.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// Close releases the underlying client.
func (c *AssistantClient) Close() error {
	return c.client.Close()
}
