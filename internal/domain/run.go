package domain

import (
	"sort"
	"time"
)

// BatchStatus describes the terminal outcome of one evaluation batch.
type BatchStatus string

const (
	// BatchSucceeded indicates the batch completed on the first attempt.
	BatchSucceeded BatchStatus = "succeeded"

	// BatchRetried indicates the batch completed after one or more retries.
	BatchRetried BatchStatus = "retried"

	// BatchFailed indicates the batch exhausted its retries. Its examples
	// carry unavailable results and appear in FailedExamples.
	BatchFailed BatchStatus = "failed"
)

// BatchRecord is one entry in the ordered batch log produced by the
// evaluator. Start and End delimit the half-open example index range
// [Start, End) covered by the batch.
type BatchRecord struct {
	// Index is the zero-based batch position in issue order.
	Index int `json:"index"`

	// Start is the index of the first example in the batch.
	Start int `json:"start"`

	// End is one past the index of the last example in the batch.
	End int `json:"end"`

	// Attempts counts how many times the batch was issued, including
	// the first attempt.
	Attempts int `json:"attempts"`

	// Status records the terminal outcome of the batch.
	Status BatchStatus `json:"status"`

	// Error carries the last error message for failed batches.
	Error string `json:"error,omitempty"`
}

// ImplementationRun pairs a named RAG implementation with the ordered
// examples it produced and the scores computed for each. A run is
// immutable once scoring completes; the reporting layer only ever reads
// from it and copies what it aggregates.
type ImplementationRun struct {
	// Name identifies the implementation (e.g. "baseline", "graph") or,
	// for parameter sweeps, the parameter value (e.g. "chunk_size=512").
	Name string `json:"name"`

	// Dataset is the identifier of the dataset the run was scored on.
	Dataset string `json:"dataset"`

	// Examples holds the materialized examples in dataset order.
	Examples []EvaluationExample `json:"examples"`

	// Scores holds one ScoreSet per example, parallel to Examples.
	Scores []ScoreSet `json:"scores"`

	// Batches is the ordered log of batch outcomes from the evaluator.
	Batches []BatchRecord `json:"batches"`

	// Warnings lists run-level warning events, such as metrics excluded
	// because the run was unlabeled.
	Warnings []string `json:"warnings,omitempty"`

	// FailedExamples lists indices of examples whose batch exhausted
	// retries, in ascending order.
	FailedExamples []int `json:"failed_examples,omitempty"`

	// StartedAt and CompletedAt bound the scoring phase.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// MetricNames returns the sorted union of metric names that appear in
// any example's score set.
func (r ImplementationRun) MetricNames() []string {
	seen := make(map[string]struct{})
	for _, set := range r.Scores {
		for name := range set {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
