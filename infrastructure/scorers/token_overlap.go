package scorers

import (
	"context"
	"strings"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// tokenOverlapScorer scores the F1 overlap between the token sets of
// the generated answer and the reference answer. It is deterministic
// and needs no judge LLM.
type tokenOverlapScorer struct{}

// NewTokenOverlapScorer returns the token_overlap metric.
func NewTokenOverlapScorer() ports.MetricScorer {
	return tokenOverlapScorer{}
}

func (tokenOverlapScorer) Name() string            { return "token_overlap" }
func (tokenOverlapScorer) RequiresReference() bool { return true }
func (tokenOverlapScorer) RequiresContexts() bool  { return false }

// Score computes the harmonic mean of token precision and recall.
// Two empty texts score 1.0; one empty text scores 0.0.
func (tokenOverlapScorer) Score(_ context.Context, example domain.EvaluationExample) (float64, error) {
	answer := tokenize(example.GeneratedAnswer)
	reference := tokenize(example.ReferenceAnswer)

	if len(answer) == 0 && len(reference) == 0 {
		return 1.0, nil
	}
	if len(answer) == 0 || len(reference) == 0 {
		return 0.0, nil
	}

	referenceSet := make(map[string]struct{}, len(reference))
	for _, token := range reference {
		referenceSet[token] = struct{}{}
	}

	matched := 0
	seen := make(map[string]struct{}, len(answer))
	for _, token := range answer {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if _, ok := referenceSet[token]; ok {
			matched++
		}
	}
	if matched == 0 {
		return 0.0, nil
	}

	precision := float64(matched) / float64(len(seen))
	recall := float64(matched) / float64(len(referenceSet))
	return 2 * precision * recall / (precision + recall), nil
}

// tokenize splits text into case-folded word tokens, dropping
// punctuation-only fragments.
func tokenize(text string) []string {
	folded := foldCaser.String(text)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r >= 0x80:
		// Multi-byte runes are kept so non-Latin text tokenizes.
		return true
	}
	return false
}
