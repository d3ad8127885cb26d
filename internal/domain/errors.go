package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during benchmark operations.
var (
	// ErrDatasetNotFound indicates a dataset identifier unknown to the
	// catalog. This is a configuration error and fails fast.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrDatasetCorrupt indicates a cached dataset failed integrity or
	// parse checks. The provider must surface this rather than fall back
	// to a partial or empty set.
	ErrDatasetCorrupt = errors.New("dataset corrupt")

	// ErrUnknownMetric indicates an unrecognized metric name was
	// requested. Surfaced before any batch work begins.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrReferenceRequired indicates a reference-requiring metric was
	// asked to score an example without reference data. Scorers return
	// this instead of fabricating a score.
	ErrReferenceRequired = errors.New("reference required")

	// ErrNoContexts indicates a context-dependent metric was asked to
	// score an example with no retrieved contexts.
	ErrNoContexts = errors.New("no retrieved contexts")

	// ErrScoreUnavailable indicates the judge returned a malformed
	// response or a score outside [0, 1]. The result is recorded as
	// unavailable, never clamped or guessed.
	ErrScoreUnavailable = errors.New("score unavailable")

	// ErrInvalidConfiguration indicates configuration is invalid or
	// incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// GatingError reports why a specific metric could not be computed for a
// specific example. It wraps one of the gating sentinels above so
// callers can branch with errors.Is while preserving the example and
// metric context for the unavailable marker.
type GatingError struct {
	// Metric is the metric that was gated.
	Metric string

	// Example is the index of the affected example.
	Example int

	// Err is the underlying gating sentinel.
	Err error
}

// Error implements the error interface for GatingError.
func (e *GatingError) Error() string {
	return fmt.Sprintf("metric %s unavailable for example %d: %v", e.Metric, e.Example, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is checks.
func (e *GatingError) Unwrap() error { return e.Err }
