package domain

import "sort"

// MetricResult is a single named score attached to one evaluation
// example. A result is either available with a score in [0, 1], or
// explicitly unavailable with a reason. An unavailable result is never
// conflated with a score of zero anywhere in the pipeline.
type MetricResult struct {
	// Metric is the canonical metric name (e.g. "faithfulness").
	Metric string `json:"metric"`

	// Score is the scalar score in [0, 1]. Only meaningful when
	// Unavailable is false.
	Score float64 `json:"score"`

	// Unavailable marks the metric as not computed for this example,
	// either because a required reference field was missing or because
	// the judge produced an unusable response.
	Unavailable bool `json:"unavailable,omitempty"`

	// Reason explains why the result is unavailable.
	Reason string `json:"reason,omitempty"`
}

// AvailableResult constructs a computed MetricResult.
// The caller is responsible for ensuring score is within [0, 1];
// scorers must report out-of-range judge output as unavailable instead.
func AvailableResult(metric string, score float64) MetricResult {
	return MetricResult{Metric: metric, Score: score}
}

// UnavailableResult constructs an explicitly absent MetricResult.
func UnavailableResult(metric, reason string) MetricResult {
	return MetricResult{Metric: metric, Unavailable: true, Reason: reason}
}

// ScoreSet maps metric names to their results for a single example.
// Metrics that were excluded up front (e.g. reference-requiring metrics
// on an unlabeled run) are simply absent from the set.
type ScoreSet map[string]MetricResult

// Metrics returns the metric names present in the set in sorted order
// for deterministic iteration.
func (s ScoreSet) Metrics() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the score set so that report
// construction never aliases run-owned data.
func (s ScoreSet) Clone() ScoreSet {
	out := make(ScoreSet, len(s))
	for name, result := range s {
		out[name] = result
	}
	return out
}
