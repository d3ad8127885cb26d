package application

import (
	"context"
	"fmt"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// AdapterFactory builds a RAG adapter for one parameter value.
// The returned adapter's configuration should differ from the others
// only in that value so the sweep isolates its effect.
type AdapterFactory func(value string) (ports.RAGAdapter, error)

// ParameterSweep benchmarks the same implementation across a sweep of
// configuration values (e.g. chunk size), producing one run per value.
// The resulting report uses the identical table shape as implementation
// comparisons, keyed by "<parameter>=<value>" rows, so every renderer
// works on sweep output unchanged.
type ParameterSweep struct {
	// Parameter is the name of the swept configuration knob.
	Parameter string

	// Values are the settings to benchmark, in report row order.
	Values []string

	// Factory builds the adapter for each value.
	Factory AdapterFactory
}

// Run executes the sweep: for each value it builds an adapter, answers
// and scores the dataset, and aggregates all runs into one report of
// metric-vs-parameter trends.
func (s ParameterSweep) Run(
	ctx context.Context,
	config BenchmarkConfig,
	provider ports.DatasetProvider,
	evaluator *Evaluator,
	store ports.RunStore,
	renderers []ports.ReportRenderer,
) (*BenchmarkResult, error) {
	if s.Parameter == "" || len(s.Values) == 0 || s.Factory == nil {
		return nil, fmt.Errorf("%w: sweep requires a parameter, values, and a factory",
			domain.ErrInvalidConfiguration)
	}

	adapters := make([]ports.RAGAdapter, 0, len(s.Values))
	for _, value := range s.Values {
		adapter, err := s.Factory(value)
		if err != nil {
			return nil, fmt.Errorf("building adapter for %s=%s: %w", s.Parameter, value, err)
		}
		adapters = append(adapters, sweepAdapter{
			RAGAdapter: adapter,
			label:      fmt.Sprintf("%s=%s", s.Parameter, value),
		})
	}

	benchmark, err := NewBenchmark(config, provider, adapters, evaluator, store, renderers)
	if err != nil {
		return nil, err
	}
	return benchmark.Run(ctx)
}

// sweepAdapter relabels an adapter with its parameter setting so run
// names identify the swept value rather than the implementation.
type sweepAdapter struct {
	ports.RAGAdapter
	label string
}

// Name returns the "<parameter>=<value>" row label.
func (a sweepAdapter) Name() string { return a.label }
