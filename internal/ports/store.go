package ports

import (
	"context"

	"github.com/ahrav/rag-bench/internal/domain"
)

// DatasetProvider produces a reproducible ordered sequence of example
// seeds for a dataset identifier, loading from a local cache when
// present and fetching from the catalog otherwise. Loading is
// idempotent: a second call with the same identifier performs no fetch
// and yields an identical sequence.
type DatasetProvider interface {
	// Load returns the dataset for the given identifier.
	// Unknown identifiers wrap domain.ErrDatasetNotFound; cached copies
	// that fail integrity or parse checks wrap domain.ErrDatasetCorrupt.
	Load(ctx context.Context, id string) (domain.Dataset, error)
}

// RunStore persists benchmark outputs. Writes are atomic per artifact:
// a write either fully replaces the previous content for an identifier
// or leaves it untouched.
type RunStore interface {
	// SaveRun persists the raw per-example results of one run.
	SaveRun(run domain.ImplementationRun) error

	// SaveReport persists the aggregated comparison table.
	SaveReport(report domain.ComparisonReport) error

	// SaveArtifact persists a rendered visualization artifact under the
	// given file name.
	SaveArtifact(name string, data []byte) error
}
