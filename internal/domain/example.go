// Package domain contains pure, dependency-free domain models and types
// for the RAG benchmark harness.
package domain

// ExampleSeed is one raw entry of an evaluation dataset before any RAG
// implementation has been run against it. Labeled datasets carry a
// reference answer and, optionally, reference contexts; unlabeled
// datasets carry only the query.
type ExampleSeed struct {
	// Query is the question posed to the RAG implementation.
	Query string `json:"query"`

	// ReferenceAnswer is the ground-truth answer for labeled datasets.
	// It is only meaningful when HasReference is true.
	ReferenceAnswer string `json:"reference_answer,omitempty"`

	// ReferenceContexts are the ground-truth supporting passages for
	// labeled datasets. May be empty even when HasReference is true.
	ReferenceContexts []string `json:"reference_contexts,omitempty"`

	// HasReference marks the seed as labeled. Reference-requiring
	// metrics are never computed for seeds where this is false.
	HasReference bool `json:"has_reference"`
}

// EvaluationExample is one fully materialized evaluation unit: a dataset
// seed plus the contexts and answer produced by a RAG implementation.
// The reference fields are explicit optionals rather than a dynamic
// mapping so that metric gating can be enforced by the type system.
type EvaluationExample struct {
	// Query is the question posed to the RAG implementation.
	Query string `json:"query"`

	// RetrievedContexts are the passages returned by the implementation,
	// in retrieval order. Context-dependent metrics require this to be
	// non-empty.
	RetrievedContexts []string `json:"retrieved_contexts"`

	// GeneratedAnswer is the implementation's answer to the query.
	GeneratedAnswer string `json:"generated_answer"`

	// ReferenceAnswer is the ground-truth answer, present only for
	// labeled examples (HasReference true).
	ReferenceAnswer string `json:"reference_answer,omitempty"`

	// ReferenceContexts are the ground-truth passages, present only for
	// labeled examples.
	ReferenceContexts []string `json:"reference_contexts,omitempty"`

	// HasReference marks the example as labeled.
	HasReference bool `json:"has_reference"`
}

// NewExample materializes an EvaluationExample from a seed and the
// output of a RAG implementation.
func NewExample(seed ExampleSeed, contexts []string, answer string) EvaluationExample {
	return EvaluationExample{
		Query:             seed.Query,
		RetrievedContexts: contexts,
		GeneratedAnswer:   answer,
		ReferenceAnswer:   seed.ReferenceAnswer,
		ReferenceContexts: seed.ReferenceContexts,
		HasReference:      seed.HasReference,
	}
}

// Dataset is an ordered, finite collection of example seeds identified
// by a stable identifier. The order of Seeds is preserved end to end
// through answering, scoring, and reporting.
type Dataset struct {
	// ID is the catalog identifier of the dataset (e.g. "covid19-origin").
	ID string `json:"id"`

	// Name is the human-readable dataset name.
	Name string `json:"name"`

	// Description summarizes the dataset contents.
	Description string `json:"description,omitempty"`

	// Labeled reports whether every seed carries a reference answer.
	Labeled bool `json:"labeled"`

	// Seeds holds the evaluation entries in their canonical order.
	Seeds []ExampleSeed `json:"seeds"`
}
