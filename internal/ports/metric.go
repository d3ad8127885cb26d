// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/rag-bench/internal/domain"
)

// MetricScorer computes one named metric for a single evaluation
// example. Implementations may delegate to an LLM judge or use a
// deterministic algorithm; the evaluator's batching and gating logic is
// identical either way, so judges can be swapped without touching it.
// Scorers should be stateless and safe for concurrent use.
type MetricScorer interface {
	// Name returns the canonical metric name (e.g. "faithfulness").
	// The name is used for configuration, gating, and report columns.
	Name() string

	// RequiresReference reports whether the metric needs reference data
	// (a reference answer or reference contexts). The evaluator never
	// calls Score for a reference-requiring metric on an example
	// without references; doing so would be a contract violation.
	RequiresReference() bool

	// RequiresContexts reports whether the metric needs non-empty
	// retrieved contexts.
	RequiresContexts() bool

	// Score computes the metric for the given example and returns a
	// value in [0, 1]. A malformed or out-of-range judge response must
	// be reported by wrapping domain.ErrScoreUnavailable so the
	// evaluator records the result as unavailable rather than retrying.
	// Transient errors (rate limits, timeouts) should be returned
	// as-is so the batch can be retried.
	Score(ctx context.Context, example domain.EvaluationExample) (float64, error)
}
