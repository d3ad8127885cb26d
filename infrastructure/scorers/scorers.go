// Package scorers provides the metric implementations used by the
// benchmark evaluator. LLM-judged metrics prompt a judge model with a
// rubric and parse a structured JSON verdict; deterministic metrics
// compute directly from the example text.
//
// Every scorer declares what it needs (a reference answer, retrieved
// contexts) so the evaluator can gate it per example instead of
// fabricating scores from missing inputs.
package scorers

import (
	"github.com/ahrav/rag-bench/internal/ports"
)

// DefaultScorers returns every built-in metric scorer, judged metrics
// bound to the given judge client.
func DefaultScorers(client ports.LLMClient) []ports.MetricScorer {
	return []ports.MetricScorer{
		NewFaithfulnessScorer(client),
		NewContextPrecisionScorer(client),
		NewContextRecallScorer(client),
		NewContextEntityRecallScorer(client),
		NewNoiseSensitivityScorer(client),
		NewAnswerRelevancyScorer(client),
		NewAnswerCorrectnessScorer(client),
		NewSemanticSimilarityScorer(),
		NewTokenOverlapScorer(),
	}
}
