package scorers

import (
	"context"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// Package-level Unicode case folder, shared across scorer calls.
var foldCaser = cases.Fold()

// semanticSimilarityScorer scores the edit-distance similarity between
// the generated answer and the reference answer, case-folded for
// Unicode correctness. It is deterministic and needs no judge LLM.
type semanticSimilarityScorer struct{}

// NewSemanticSimilarityScorer returns the semantic_similarity metric.
func NewSemanticSimilarityScorer() ports.MetricScorer {
	return semanticSimilarityScorer{}
}

func (semanticSimilarityScorer) Name() string            { return "semantic_similarity" }
func (semanticSimilarityScorer) RequiresReference() bool { return true }
func (semanticSimilarityScorer) RequiresContexts() bool  { return false }

// Score returns 1 - normalizedEditDistance between the folded answer
// and reference.
func (semanticSimilarityScorer) Score(_ context.Context, example domain.EvaluationExample) (float64, error) {
	answer := foldCaser.String(example.GeneratedAnswer)
	reference := foldCaser.String(example.ReferenceAnswer)
	return editSimilarity(answer, reference), nil
}

// editSimilarity computes similarity in [0, 1] from the Levenshtein
// distance. Distances operate on runes, so normalization uses rune
// counts rather than byte lengths.
func editSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(s1, s2)

	maxLen := utf8.RuneCountInString(s1)
	if n := utf8.RuneCountInString(s2); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	similarity := 1.0 - float64(distance)/float64(maxLen)
	if similarity < 0 {
		similarity = 0
	}
	return similarity
}
