package application

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// Phase identifies where a benchmark run is in its lifecycle. The
// pipeline is strictly linear; Scoring is the only phase that can
// partially fail without aborting the run.
type Phase int32

const (
	// PhaseNotStarted is the initial state before Run is called.
	PhaseNotStarted Phase = iota
	// PhaseLoading covers dataset resolution and cache loading.
	PhaseLoading
	// PhaseScoring covers adapter answering and metric evaluation.
	PhaseScoring
	// PhaseAggregating covers report construction.
	PhaseAggregating
	// PhaseReported is the terminal state after artifacts are written.
	PhaseReported
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseLoading:
		return "loading"
	case PhaseScoring:
		return "scoring"
	case PhaseAggregating:
		return "aggregating"
	case PhaseReported:
		return "reported"
	default:
		return "unknown"
	}
}

// BenchmarkResult bundles the immutable runs and the derived report
// produced by one benchmark execution.
type BenchmarkResult struct {
	// Runs holds one ImplementationRun per adapter, in adapter order.
	Runs []domain.ImplementationRun

	// Report is the aggregated comparison table over Runs.
	Report domain.ComparisonReport
}

// Benchmark orchestrates one end-to-end execution: dataset loading,
// answering via each RAG adapter, batch metric evaluation, aggregation,
// and persistence of results and rendered artifacts.
// A Benchmark executes once; create a new instance per run.
type Benchmark struct {
	config    BenchmarkConfig
	provider  ports.DatasetProvider
	adapters  []ports.RAGAdapter
	evaluator *Evaluator
	store     ports.RunStore
	renderers []ports.ReportRenderer
	tracer    trace.Tracer

	phase atomic.Int32
}

// NewBenchmark assembles a benchmark from its collaborators.
// The store and renderers are optional; without them results are only
// returned in memory.
func NewBenchmark(
	config BenchmarkConfig,
	provider ports.DatasetProvider,
	adapters []ports.RAGAdapter,
	evaluator *Evaluator,
	store ports.RunStore,
	renderers []ports.ReportRenderer,
) (*Benchmark, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: dataset provider is required", domain.ErrInvalidConfiguration)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: at least one RAG adapter is required", domain.ErrInvalidConfiguration)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: evaluator is required", domain.ErrInvalidConfiguration)
	}

	return &Benchmark{
		config:    config,
		provider:  provider,
		adapters:  adapters,
		evaluator: evaluator,
		store:     store,
		renderers: renderers,
		tracer:    otel.Tracer("benchmark"),
	}, nil
}

// Phase reports the benchmark's current lifecycle phase.
func (b *Benchmark) Phase() Phase { return Phase(b.phase.Load()) }

func (b *Benchmark) setPhase(p Phase) { b.phase.Store(int32(p)) }

// Run executes the full pipeline. Example order is preserved from the
// dataset through answering and scoring into each run. A canceled
// context stops issuing further work and returns what was gathered.
func (b *Benchmark) Run(ctx context.Context) (*BenchmarkResult, error) {
	ctx, span := b.tracer.Start(ctx, "Benchmark.Run",
		trace.WithAttributes(
			attribute.String("benchmark.dataset", b.config.Dataset),
			attribute.Int("benchmark.adapters", len(b.adapters)),
		),
	)
	defer span.End()

	b.setPhase(PhaseLoading)
	dataset, err := b.provider.Load(ctx, b.config.Dataset)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("loading dataset %q: %w", b.config.Dataset, err)
	}
	if b.config.Labeled && !dataset.Labeled {
		err := fmt.Errorf("%w: dataset %q is unlabeled but labeled metrics were requested",
			domain.ErrInvalidConfiguration, dataset.ID)
		span.RecordError(err)
		return nil, err
	}

	b.setPhase(PhaseScoring)
	runs := make([]domain.ImplementationRun, 0, len(b.adapters))
	for _, adapter := range b.adapters {
		run, err := b.scoreImplementation(ctx, dataset, adapter)
		if err != nil {
			span.RecordError(err)
			// A canceled run still carries the scores gathered so far.
			if run.Name != "" {
				runs = append(runs, run)
			}
			return &BenchmarkResult{Runs: runs}, err
		}
		runs = append(runs, run)
	}

	b.setPhase(PhaseAggregating)
	report := domain.NewComparisonReport(runs)

	if b.store != nil {
		for _, run := range runs {
			if err := b.store.SaveRun(run); err != nil {
				return nil, fmt.Errorf("saving run %q: %w", run.Name, err)
			}
		}
		if err := b.store.SaveReport(report); err != nil {
			return nil, fmt.Errorf("saving report: %w", err)
		}
		if err := b.renderArtifacts(report); err != nil {
			return nil, err
		}
	}

	b.setPhase(PhaseReported)
	return &BenchmarkResult{Runs: runs, Report: report}, nil
}

// scoreImplementation answers every dataset seed with the adapter and
// evaluates the requested metrics over the materialized examples.
// An adapter failure on one example keeps the example in place with
// empty output so ordering holds; its context-dependent metrics gate
// to unavailable downstream.
func (b *Benchmark) scoreImplementation(
	ctx context.Context,
	dataset domain.Dataset,
	adapter ports.RAGAdapter,
) (domain.ImplementationRun, error) {
	ctx, span := b.tracer.Start(ctx, "Benchmark.scoreImplementation",
		trace.WithAttributes(attribute.String("implementation", adapter.Name())),
	)
	defer span.End()

	started := time.Now().UTC()

	examples := make([]domain.EvaluationExample, len(dataset.Seeds))
	var answerWarnings []string
	for i, seed := range dataset.Seeds {
		if ctx.Err() != nil {
			return domain.ImplementationRun{}, ctx.Err()
		}
		contexts, answer, err := adapter.Answer(ctx, seed.Query)
		if err != nil {
			warning := fmt.Sprintf("implementation %q failed on example %d: %v", adapter.Name(), i, err)
			answerWarnings = append(answerWarnings, warning)
			span.AddEvent("answer failed", trace.WithAttributes(
				attribute.Int("example", i),
				attribute.String("error", err.Error()),
			))
			examples[i] = domain.NewExample(seed, nil, "")
			continue
		}
		examples[i] = domain.NewExample(seed, contexts, answer)
	}

	evaluation, err := b.evaluator.Evaluate(ctx, examples, b.config.Metrics, b.config.Labeled)
	if err != nil && evaluation == nil {
		return domain.ImplementationRun{}, fmt.Errorf("evaluating %q: %w", adapter.Name(), err)
	}

	run := domain.ImplementationRun{
		Name:           adapter.Name(),
		Dataset:        dataset.ID,
		Examples:       examples,
		Scores:         evaluation.Scores,
		Batches:        evaluation.Batches,
		Warnings:       append(answerWarnings, evaluation.Warnings...),
		FailedExamples: evaluation.FailedExamples,
		StartedAt:      started,
		CompletedAt:    time.Now().UTC(),
	}
	// A canceled evaluation still yields a valid partial run.
	return run, err
}

// renderArtifacts runs every renderer over the same aggregated table
// and persists the outputs.
func (b *Benchmark) renderArtifacts(report domain.ComparisonReport) error {
	for _, renderer := range b.renderers {
		data, err := renderer.Render(report)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", renderer.Name(), err)
		}
		name := fmt.Sprintf("%s.%s", renderer.Name(), renderer.Extension())
		if err := b.store.SaveArtifact(name, data); err != nil {
			return fmt.Errorf("saving artifact %s: %w", name, err)
		}
	}
	return nil
}
