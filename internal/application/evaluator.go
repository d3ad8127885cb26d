package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// EvaluationResult is the complete output of one evaluator invocation.
// Scores is parallel to the input examples: Scores[i] always holds the
// results for input example i, regardless of batch size or concurrency.
type EvaluationResult struct {
	// Scores holds one ScoreSet per input example, in input order.
	Scores []domain.ScoreSet

	// Batches is the ordered log of batch outcomes. Batches that were
	// never issued (operator abort) do not appear.
	Batches []domain.BatchRecord

	// Warnings lists run-level warning events, such as metrics excluded
	// on an unlabeled run.
	Warnings []string

	// FailedExamples lists, in ascending order, indices of examples
	// whose batch exhausted its retries.
	FailedExamples []int
}

// Evaluator computes a requested set of metrics for an ordered sequence
// of evaluation examples. It processes examples in fixed-size batches
// to respect external rate limits, retries failed batches with bounded
// exponential backoff, and records explicit unavailable markers instead
// of fabricated scores whenever a metric cannot be computed.
// An Evaluator is stateless across invocations and safe for concurrent
// use.
type Evaluator struct {
	scorers map[string]ports.MetricScorer
	config  EvaluatorConfig
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewEvaluator creates an Evaluator from the given scorers.
// Scorer names must be unique; collector may be nil, in which case
// operational metrics are discarded.
func NewEvaluator(config EvaluatorConfig, scorers []ports.MetricScorer, collector ports.MetricsCollector) (*Evaluator, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}

	registry := make(map[string]ports.MetricScorer, len(scorers))
	for _, scorer := range scorers {
		if scorer.Name() == "" {
			return nil, fmt.Errorf("%w: scorer with empty name", domain.ErrInvalidConfiguration)
		}
		if _, exists := registry[scorer.Name()]; exists {
			return nil, fmt.Errorf("%w: duplicate scorer %q", domain.ErrInvalidConfiguration, scorer.Name())
		}
		registry[scorer.Name()] = scorer
	}

	if collector == nil {
		collector = noopCollector{}
	}

	return &Evaluator{
		scorers: registry,
		config:  config,
		metrics: collector,
		tracer:  otel.Tracer("metrics-evaluator"),
	}, nil
}

// MetricNames returns the sorted names of all registered scorers.
func (e *Evaluator) MetricNames() []string {
	names := make([]string, 0, len(e.scorers))
	for name := range e.scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate scores the examples against the requested metrics.
//
// Unknown metric names fail before any batch work begins. When labeled
// is false, reference-requiring metrics are excluded from computation
// entirely and reported as warnings; they do not appear in any score
// set. Per-example gaps (a labeled run whose individual example lacks
// the reference field a metric needs) produce an unavailable marker for
// that metric on that example only.
//
// A batch whose scoring fails transiently is retried with exponential
// backoff; completed batches are never discarded. A batch that exhausts
// its retries marks only its own examples as failed and the run
// continues. If ctx is canceled mid-run, no further batches are issued
// and the partial result gathered so far is returned alongside the
// context error.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	examples []domain.EvaluationExample,
	metricNames []string,
	labeled bool,
) (*EvaluationResult, error) {
	active, warnings, err := e.resolveScorers(metricNames, labeled)
	if err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "Evaluator.Evaluate",
		trace.WithAttributes(
			attribute.Int("eval.examples", len(examples)),
			attribute.Int("eval.metrics", len(active)),
			attribute.Bool("eval.labeled", labeled),
			attribute.Int("eval.batch_size", e.config.BatchSize),
		),
	)
	defer span.End()

	result := &EvaluationResult{
		Scores:   make([]domain.ScoreSet, len(examples)),
		Warnings: warnings,
	}
	for _, warning := range warnings {
		span.AddEvent("metric excluded", trace.WithAttributes(attribute.String("detail", warning)))
		e.metrics.RecordCounter("evaluator_metrics_excluded_total", 1, nil)
	}
	for i := range result.Scores {
		result.Scores[i] = domain.ScoreSet{}
	}

	batches := planBatches(len(examples), e.config.BatchSize)

	var runErr error
	if e.config.MaxConcurrency > 1 {
		runErr = e.runConcurrent(ctx, examples, active, batches, result)
	} else {
		runErr = e.runSequential(ctx, examples, active, batches, result)
	}

	for _, record := range result.Batches {
		if record.Status == domain.BatchFailed {
			for i := record.Start; i < record.End; i++ {
				result.FailedExamples = append(result.FailedExamples, i)
			}
		}
	}
	sort.Ints(result.FailedExamples)

	span.SetAttributes(
		attribute.Int("eval.batches", len(result.Batches)),
		attribute.Int("eval.failed_examples", len(result.FailedExamples)),
	)
	return result, runErr
}

// resolveScorers maps requested metric names to scorers, failing fast
// on unknown names and excluding reference-requiring metrics when the
// run is unlabeled.
func (e *Evaluator) resolveScorers(metricNames []string, labeled bool) ([]ports.MetricScorer, []string, error) {
	seen := make(map[string]struct{}, len(metricNames))
	active := make([]ports.MetricScorer, 0, len(metricNames))
	var warnings []string

	for _, name := range metricNames {
		scorer, ok := e.scorers[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownMetric, name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if !labeled && scorer.RequiresReference() {
			warnings = append(warnings,
				fmt.Sprintf("metric %q requires a labeled dataset and was excluded", name))
			continue
		}
		active = append(active, scorer)
	}
	return active, warnings, nil
}

// batchSpan is the half-open example index range [start, end) of one batch.
type batchSpan struct {
	index int
	start int
	end   int
}

func planBatches(total, size int) []batchSpan {
	var batches []batchSpan
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		batches = append(batches, batchSpan{index: len(batches), start: start, end: end})
	}
	return batches
}

// runSequential processes batches strictly one after another, pausing
// InterBatchDelay between them. This is the default mode and exists
// specifically to respect external rate limits.
func (e *Evaluator) runSequential(
	ctx context.Context,
	examples []domain.EvaluationExample,
	scorers []ports.MetricScorer,
	batches []batchSpan,
	result *EvaluationResult,
) error {
	for _, batch := range batches {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		record := e.runBatch(ctx, examples, scorers, batch, result.Scores)
		result.Batches = append(result.Batches, record)

		if batch.index < len(batches)-1 && e.config.InterBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.config.InterBatchDelay):
			}
		}
	}
	return nil
}

// runConcurrent processes up to MaxConcurrency batches in flight.
// Pacing is delegated to the LLM client's rate limiter in this mode.
func (e *Evaluator) runConcurrent(
	ctx context.Context,
	examples []domain.EvaluationExample,
	scorers []ports.MetricScorer,
	batches []batchSpan,
	result *EvaluationResult,
) error {
	records := make([]domain.BatchRecord, len(batches))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.config.MaxConcurrency)
	for _, batch := range batches {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			records[batch.index] = e.runBatch(groupCtx, examples, scorers, batch, result.Scores)
			return nil
		})
	}
	err := group.Wait()

	// Keep the log ordered and drop batches that were never issued.
	for _, record := range records {
		if record.Attempts > 0 {
			result.Batches = append(result.Batches, record)
		}
	}
	return err
}

// runBatch executes one batch with bounded retry and backoff, writing
// scores for its example range into scores. A batch-level failure
// discards only that batch's partial scores before retrying; other
// batches are untouched.
func (e *Evaluator) runBatch(
	ctx context.Context,
	examples []domain.EvaluationExample,
	scorers []ports.MetricScorer,
	batch batchSpan,
	scores []domain.ScoreSet,
) domain.BatchRecord {
	ctx, span := e.tracer.Start(ctx, "Evaluator.batch",
		trace.WithAttributes(
			attribute.Int("batch.index", batch.index),
			attribute.Int("batch.start", batch.start),
			attribute.Int("batch.end", batch.end),
		),
	)
	defer span.End()

	record := domain.BatchRecord{Index: batch.index, Start: batch.start, End: batch.end}
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		record.Attempts = attempt + 1

		sets, err := e.scoreBatch(ctx, examples, scorers, batch)
		if err == nil {
			for i, set := range sets {
				scores[batch.start+i] = set
			}
			record.Status = domain.BatchSucceeded
			if attempt > 0 {
				record.Status = domain.BatchRetried
			}
			e.recordBatchOutcome(record, time.Since(start))
			return record
		}

		lastErr = err
		span.RecordError(err)

		if ctx.Err() != nil && !errors.Is(err, context.DeadlineExceeded) {
			// Operator abort, not a per-attempt timeout.
			break
		}
		if !isRetryable(err) || attempt == e.config.MaxRetries {
			break
		}

		e.metrics.RecordCounter("evaluator_batch_retries_total", 1, nil)
		select {
		case <-ctx.Done():
			attempt = e.config.MaxRetries
		case <-time.After(e.backoffDelay(attempt)):
		}
	}

	// The batch is failed terminally: mark every metric for every
	// example in the range unavailable so gaps stay explicit.
	reason := fmt.Sprintf("batch %d failed: %v", batch.index, lastErr)
	for i := batch.start; i < batch.end; i++ {
		set := domain.ScoreSet{}
		for _, scorer := range scorers {
			set[scorer.Name()] = domain.UnavailableResult(scorer.Name(), reason)
		}
		scores[i] = set
	}
	record.Status = domain.BatchFailed
	record.Error = lastErr.Error()
	e.recordBatchOutcome(record, time.Since(start))
	return record
}

// scoreBatch computes every active metric for every example in the
// batch range. Gating outcomes (missing references, empty contexts,
// unusable judge output) become unavailable markers; any other scorer
// error aborts the batch attempt so it can be retried as a unit.
func (e *Evaluator) scoreBatch(
	ctx context.Context,
	examples []domain.EvaluationExample,
	scorers []ports.MetricScorer,
	batch batchSpan,
) ([]domain.ScoreSet, error) {
	if e.config.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.BatchTimeout)
		defer cancel()
	}

	sets := make([]domain.ScoreSet, 0, batch.end-batch.start)
	for i := batch.start; i < batch.end; i++ {
		example := examples[i]
		set := domain.ScoreSet{}

		for _, scorer := range scorers {
			name := scorer.Name()

			if scorer.RequiresReference() && !example.HasReference {
				set[name] = domain.UnavailableResult(name, domain.ErrReferenceRequired.Error())
				e.metrics.RecordCounter("evaluator_metrics_gated_total", 1, map[string]string{"metric": name})
				continue
			}
			if scorer.RequiresContexts() && len(example.RetrievedContexts) == 0 {
				set[name] = domain.UnavailableResult(name, domain.ErrNoContexts.Error())
				e.metrics.RecordCounter("evaluator_metrics_gated_total", 1, map[string]string{"metric": name})
				continue
			}

			score, err := scorer.Score(ctx, example)
			switch {
			case err == nil:
				set[name] = domain.AvailableResult(name, score)
			case errors.Is(err, domain.ErrScoreUnavailable),
				errors.Is(err, domain.ErrReferenceRequired),
				errors.Is(err, domain.ErrNoContexts):
				set[name] = domain.UnavailableResult(name, err.Error())
				e.metrics.RecordCounter("evaluator_metrics_unavailable_total", 1, map[string]string{"metric": name})
			default:
				return nil, fmt.Errorf("metric %s on example %d: %w", name, i, err)
			}
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// backoffDelay computes the exponential backoff with ±25% jitter for
// the given attempt, capped at RetryMaxDelay.
func (e *Evaluator) backoffDelay(attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	// #nosec G115 - attempt is bounded between 0 and 30
	multiplier := 1 << uint(attempt)
	delay := time.Duration(float64(e.config.RetryBaseDelay) * float64(multiplier))

	// #nosec G404 - Using weak RNG is acceptable for jitter calculation
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - (delay / 4)

	if delay > e.config.RetryMaxDelay {
		delay = e.config.RetryMaxDelay
	}
	return delay
}

func (e *Evaluator) recordBatchOutcome(record domain.BatchRecord, elapsed time.Duration) {
	labels := map[string]string{"status": string(record.Status)}
	e.metrics.RecordCounter("evaluator_batches_total", 1, labels)
	e.metrics.RecordLatency("evaluator_batch", elapsed, labels)
}

// isRetryable classifies batch attempt failures. Timeouts, rate limits,
// and upstream unavailability are transient; everything else fails the
// batch immediately.
func isRetryable(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ports.ErrRateLimited) ||
		errors.Is(err, ports.ErrTimeout) ||
		errors.Is(err, ports.ErrServiceUnavailable)
}

// noopCollector discards all operational metrics.
type noopCollector struct{}

func (noopCollector) RecordLatency(string, time.Duration, map[string]string) {}
func (noopCollector) RecordCounter(string, float64, map[string]string)       {}
func (noopCollector) RecordGauge(string, float64, map[string]string)         {}
