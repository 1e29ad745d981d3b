package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter   metric.Int64Counter
	RequestDuration  metric.Float64Histogram
	EmbeddingCalls   metric.Int64Counter
	RetrievalResults metric.Int64Histogram
	RebuildDuration  metric.Float64Histogram
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("business-assistant-backend")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	embeddingCalls, err := meter.Int64Counter(
		"embeddings.calls.total",
		metric.WithDescription("Embedding provider calls by outcome"),
	)
	if err != nil {
		return nil, err
	}

	retrievalResults, err := meter.Int64Histogram(
		"retrieval.results",
		metric.WithDescription("Results returned per knowledge query"),
	)
	if err != nil {
		return nil, err
	}

	rebuildDuration, err := meter.Float64Histogram(
		"index.rebuild.duration",
		metric.WithDescription("Index rebuild duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:   requestCounter,
		RequestDuration:  requestDuration,
		EmbeddingCalls:   embeddingCalls,
		RetrievalResults: retrievalResults,
		RebuildDuration:  rebuildDuration,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordEmbeddingCall records one call to the embedding provider
func (m *Metrics) RecordEmbeddingCall(provider string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("embeddings.provider", provider),
		attribute.Bool("embeddings.success", success),
	}

	m.EmbeddingCalls.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordRetrieval records how many chunks a query returned
func (m *Metrics) RecordRetrieval(results int) {
	m.RetrievalResults.Record(context.Background(), int64(results))
}

// RecordRebuild records an index rebuild duration
func (m *Metrics) RecordRebuild(duration float64, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("rebuild.success", success),
	}

	m.RebuildDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}
