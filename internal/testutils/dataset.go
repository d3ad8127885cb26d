package testutils

import (
	"fmt"

	"github.com/ahrav/rag-bench/internal/domain"
)

// ToyDataset returns a small labeled dataset with n seeds, suitable
// for exercising batching boundaries with tiny batch sizes.
func ToyDataset(n int) domain.Dataset {
	seeds := make([]domain.ExampleSeed, n)
	for i := range seeds {
		seeds[i] = domain.ExampleSeed{
			Query:             fmt.Sprintf("question %d", i),
			ReferenceAnswer:   fmt.Sprintf("reference answer %d", i),
			ReferenceContexts: []string{fmt.Sprintf("reference context %d", i)},
			HasReference:      true,
		}
	}
	return domain.Dataset{
		ID:          "toy",
		Name:        "Toy",
		Description: "Synthetic labeled dataset for tests.",
		Labeled:     true,
		Seeds:       seeds,
	}
}

// ToyExamples returns n fully materialized labeled examples with
// contexts and answers filled in.
func ToyExamples(n int) []domain.EvaluationExample {
	seeds := ToyDataset(n).Seeds
	examples := make([]domain.EvaluationExample, n)
	for i, seed := range seeds {
		examples[i] = domain.NewExample(seed,
			[]string{fmt.Sprintf("retrieved context %d", i)},
			fmt.Sprintf("generated answer %d", i),
		)
	}
	return examples
}
