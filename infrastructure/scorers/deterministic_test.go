package scorers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/rag-bench/internal/domain"
)

func exampleWith(answer, reference string) domain.EvaluationExample {
	return domain.NewExample(domain.ExampleSeed{
		Query:           "q",
		ReferenceAnswer: reference,
		HasReference:    reference != "",
	}, nil, answer)
}

func TestSemanticSimilarity(t *testing.T) {
	scorer := NewSemanticSimilarityScorer()

	tests := []struct {
		name      string
		answer    string
		reference string
		want      float64
		delta     float64
	}{
		{"identical", "paris is the capital", "paris is the capital", 1.0, 1e-9},
		{"case folded", "Paris Is The CAPITAL", "paris is the capital", 1.0, 1e-9},
		{"both empty", "", "", 1.0, 1e-9},
		{"completely different length one", "a", "z", 0.0, 1e-9},
		{"partial overlap", "kitten", "sitten", 1.0 - 1.0/6.0, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := scorer.Score(context.Background(), exampleWith(tt.answer, tt.reference))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, score, tt.delta)
		})
	}
}

func TestSemanticSimilarity_UnicodeNormalization(t *testing.T) {
	scorer := NewSemanticSimilarityScorer()

	// One rune differs out of four; byte-based normalization would give
	// a different result because é is multi-byte.
	score, err := scorer.Score(context.Background(), exampleWith("café", "cafe"))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, score, 1e-9)
}

func TestTokenOverlap(t *testing.T) {
	scorer := NewTokenOverlapScorer()

	tests := []struct {
		name      string
		answer    string
		reference string
		want      float64
	}{
		{"identical", "paris is the capital", "paris is the capital", 1.0},
		{"case and punctuation", "Paris, is the CAPITAL!", "paris is the capital", 1.0},
		{"no overlap", "entirely unrelated words", "something else here", 0.0},
		{"both empty", "", "", 1.0},
		{"one empty", "an answer", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := scorer.Score(context.Background(), exampleWith(tt.answer, tt.reference))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, score, 1e-9)
		})
	}
}

func TestTokenOverlap_PartialF1(t *testing.T) {
	scorer := NewTokenOverlapScorer()

	// answer tokens {paris, france}; reference tokens {paris, capital}.
	// precision = recall = 1/2, F1 = 1/2.
	score, err := scorer.Score(context.Background(), exampleWith("paris france", "paris capital"))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)
}
