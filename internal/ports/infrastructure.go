package ports

import (
	"context"
	"time"

	"github.com/ahrav/rag-bench/internal/domain"
)

// LLMClient defines the interface for interacting with Large Language
// Model providers, used both by LLM-judged metric scorers and by RAG
// adapters for answer generation.
// Implementations should handle provider-specific details like
// authentication, request formatting, and response parsing.
type LLMClient interface {
	// Complete sends a completion request to the LLM provider.
	// It returns the generated text and any error encountered.
	// The implementation should handle rate limiting, retries, and timeouts.
	//
	// The options map allows flexibility for different providers without
	// changing the interface. Common options include:
	//   - "temperature": float64 (0.0-1.0)
	//   - "max_tokens": int
	//   - "model": string (specific model version)
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens calculates the approximate token count for a given
	// text, useful for cost estimation and staying within model limits.
	EstimateTokens(text string) (int, error)

	// GetModel returns the model identifier being used by this client.
	GetModel() string
}

// DatasetCatalog abstracts the remote dataset repository the provider
// fetches from on a cache miss. Implementations may call a network
// catalog or serve fixtures from disk for tests.
type DatasetCatalog interface {
	// Fetch downloads the dataset with the given identifier along with
	// its raw source documents, keyed by file name.
	// Unknown identifiers return an error wrapping
	// domain.ErrDatasetNotFound.
	Fetch(ctx context.Context, id string) (domain.Dataset, map[string]string, error)

	// List returns the identifiers the catalog knows about, sorted.
	List() []string
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability
// platforms like Prometheus or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// Useful for tracking events like batch retries, gated metrics, etc.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)
}

// ReportRenderer turns an aggregated comparison table into a rendered
// artifact. Every renderer consumes the identical table shape, so
// adding a renderer never requires changing aggregation logic.
type ReportRenderer interface {
	// Name identifies the renderer and becomes part of the artifact
	// file name (e.g. "bar", "radar").
	Name() string

	// Extension returns the artifact file extension without the dot.
	Extension() string

	// Render produces the artifact bytes for the report.
	Render(report domain.ComparisonReport) ([]byte, error)
}
