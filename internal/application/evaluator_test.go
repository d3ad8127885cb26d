package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// stubScorer is a configurable ports.MetricScorer for evaluator tests.
type stubScorer struct {
	name        string
	requiresRef bool
	requiresCtx bool
	score       func(ctx context.Context, example domain.EvaluationExample) (float64, error)
}

func (s *stubScorer) Name() string            { return s.name }
func (s *stubScorer) RequiresReference() bool { return s.requiresRef }
func (s *stubScorer) RequiresContexts() bool  { return s.requiresCtx }

func (s *stubScorer) Score(ctx context.Context, example domain.EvaluationExample) (float64, error) {
	if s.score != nil {
		return s.score(ctx, example)
	}
	return 0.5, nil
}

func constantScorer(name string, value float64) *stubScorer {
	return &stubScorer{
		name: name,
		score: func(context.Context, domain.EvaluationExample) (float64, error) {
			return value, nil
		},
	}
}

func fastConfig() EvaluatorConfig {
	config := DefaultEvaluatorConfig()
	config.BatchSize = 2
	config.InterBatchDelay = 0
	config.RetryBaseDelay = time.Millisecond
	config.RetryMaxDelay = 5 * time.Millisecond
	config.BatchTimeout = time.Second
	return config
}

func labeledExamples(n int) []domain.EvaluationExample {
	examples := make([]domain.EvaluationExample, n)
	for i := range examples {
		examples[i] = domain.NewExample(domain.ExampleSeed{
			Query:           fmt.Sprintf("question %d", i),
			ReferenceAnswer: fmt.Sprintf("reference %d", i),
			HasReference:    true,
		}, []string{fmt.Sprintf("context %d", i)}, fmt.Sprintf("answer %d", i))
	}
	return examples
}

func TestNewEvaluator_RejectsDuplicateScorers(t *testing.T) {
	_, err := NewEvaluator(fastConfig(), []ports.MetricScorer{
		constantScorer("m", 0.5),
		constantScorer("m", 0.7),
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestEvaluate_UnknownMetricFailsFast(t *testing.T) {
	called := false
	scorer := &stubScorer{
		name: "known",
		score: func(context.Context, domain.EvaluationExample) (float64, error) {
			called = true
			return 1, nil
		},
	}
	evaluator, err := NewEvaluator(fastConfig(), []ports.MetricScorer{scorer}, nil)
	require.NoError(t, err)

	_, err = evaluator.Evaluate(context.Background(), labeledExamples(3),
		[]string{"known", "nonexistent"}, true)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownMetric)
	assert.Contains(t, err.Error(), "nonexistent")
	assert.False(t, called, "no scoring may happen before name resolution")
}

func TestEvaluate_UnlabeledExcludesReferenceMetrics(t *testing.T) {
	refMetric := constantScorer("needs_ref", 0.9)
	refMetric.requiresRef = true
	freeMetric := constantScorer("no_ref", 0.4)

	evaluator, err := NewEvaluator(fastConfig(),
		[]ports.MetricScorer{refMetric, freeMetric}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), labeledExamples(3),
		[]string{"needs_ref", "no_ref"}, false)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "needs_ref")

	for i, set := range result.Scores {
		_, present := set["needs_ref"]
		assert.False(t, present, "example %d: excluded metric must not appear", i)
		assert.False(t, set["no_ref"].Unavailable)
	}
}

func TestEvaluate_PerExampleReferenceGating(t *testing.T) {
	refMetric := constantScorer("needs_ref", 0.9)
	refMetric.requiresRef = true

	examples := labeledExamples(3)
	examples[1].HasReference = false
	examples[1].ReferenceAnswer = ""

	evaluator, err := NewEvaluator(fastConfig(), []ports.MetricScorer{refMetric}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), examples,
		[]string{"needs_ref"}, true)
	require.NoError(t, err)

	assert.False(t, result.Scores[0]["needs_ref"].Unavailable)
	assert.True(t, result.Scores[1]["needs_ref"].Unavailable)
	assert.Equal(t, domain.ErrReferenceRequired.Error(), result.Scores[1]["needs_ref"].Reason)
	assert.False(t, result.Scores[2]["needs_ref"].Unavailable)
}

func TestEvaluate_ContextGating(t *testing.T) {
	ctxMetric := constantScorer("needs_ctx", 0.9)
	ctxMetric.requiresCtx = true

	examples := labeledExamples(2)
	examples[0].RetrievedContexts = nil

	evaluator, err := NewEvaluator(fastConfig(), []ports.MetricScorer{ctxMetric}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), examples,
		[]string{"needs_ctx"}, true)
	require.NoError(t, err)

	assert.True(t, result.Scores[0]["needs_ctx"].Unavailable)
	assert.False(t, result.Scores[1]["needs_ctx"].Unavailable)
}

func TestEvaluate_OrderPreservedAcrossBatchSizes(t *testing.T) {
	// The scorer echoes a per-example value so misordered writes would
	// be visible in the result.
	echo := &stubScorer{
		name: "echo",
		score: func(_ context.Context, example domain.EvaluationExample) (float64, error) {
			var i int
			fmt.Sscanf(example.Query, "question %d", &i)
			return float64(i) / 100, nil
		},
	}

	for _, batchSize := range []int{1, 2, 3, 5, 20} {
		t.Run(fmt.Sprintf("batch_size_%d", batchSize), func(t *testing.T) {
			config := fastConfig()
			config.BatchSize = batchSize

			evaluator, err := NewEvaluator(config, []ports.MetricScorer{echo}, nil)
			require.NoError(t, err)

			result, err := evaluator.Evaluate(context.Background(), labeledExamples(7),
				[]string{"echo"}, true)
			require.NoError(t, err)
			require.Len(t, result.Scores, 7)

			for i, set := range result.Scores {
				assert.InDelta(t, float64(i)/100, set["echo"].Score, 1e-9,
					"example %d must keep its own score", i)
			}
		})
	}
}

func TestEvaluate_BatchLogSpansAndStatus(t *testing.T) {
	evaluator, err := NewEvaluator(fastConfig(),
		[]ports.MetricScorer{constantScorer("m", 0.5)}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), labeledExamples(5),
		[]string{"m"}, true)
	require.NoError(t, err)

	require.Len(t, result.Batches, 3)
	assert.Equal(t, []int{0, 2, 4}, []int{result.Batches[0].Start, result.Batches[1].Start, result.Batches[2].Start})
	assert.Equal(t, []int{2, 4, 5}, []int{result.Batches[0].End, result.Batches[1].End, result.Batches[2].End})
	for _, record := range result.Batches {
		assert.Equal(t, domain.BatchSucceeded, record.Status)
		assert.Equal(t, 1, record.Attempts)
	}
}

func TestEvaluate_FailedBatchLeavesOthersIntact(t *testing.T) {
	// Examples 2 and 3 form the second batch; the scorer fails
	// deterministically (non-retryably) on them.
	scorer := &stubScorer{
		name: "m",
		score: func(_ context.Context, example domain.EvaluationExample) (float64, error) {
			var i int
			fmt.Sscanf(example.Query, "question %d", &i)
			if i == 2 || i == 3 {
				return 0, errors.New("permanent scorer defect")
			}
			return 0.7, nil
		},
	}

	evaluator, err := NewEvaluator(fastConfig(), []ports.MetricScorer{scorer}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), labeledExamples(6),
		[]string{"m"}, true)
	require.NoError(t, err, "a failed batch does not fail the run")

	assert.Equal(t, []int{2, 3}, result.FailedExamples)

	for _, i := range []int{0, 1, 4, 5} {
		assert.False(t, result.Scores[i]["m"].Unavailable, "example %d", i)
		assert.InDelta(t, 0.7, result.Scores[i]["m"].Score, 1e-9)
	}
	for _, i := range []int{2, 3} {
		require.True(t, result.Scores[i]["m"].Unavailable, "example %d", i)
		assert.Contains(t, result.Scores[i]["m"].Reason, "batch 1 failed")
	}

	require.Len(t, result.Batches, 3)
	assert.Equal(t, domain.BatchSucceeded, result.Batches[0].Status)
	assert.Equal(t, domain.BatchFailed, result.Batches[1].Status)
	assert.Equal(t, domain.BatchSucceeded, result.Batches[2].Status)
	assert.Equal(t, 1, result.Batches[1].Attempts, "non-retryable errors are not retried")
	assert.NotEmpty(t, result.Batches[1].Error)
}

func TestEvaluate_TransientFailureRetriesAndRecovers(t *testing.T) {
	var mu sync.Mutex
	failuresLeft := 2

	scorer := &stubScorer{
		name: "m",
		score: func(context.Context, domain.EvaluationExample) (float64, error) {
			mu.Lock()
			defer mu.Unlock()
			if failuresLeft > 0 {
				failuresLeft--
				return 0, fmt.Errorf("upstream: %w", ports.ErrRateLimited)
			}
			return 0.6, nil
		},
	}

	config := fastConfig()
	config.BatchSize = 10
	evaluator, err := NewEvaluator(config, []ports.MetricScorer{scorer}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), labeledExamples(3),
		[]string{"m"}, true)
	require.NoError(t, err)

	require.Len(t, result.Batches, 1)
	assert.Equal(t, domain.BatchRetried, result.Batches[0].Status)
	assert.Equal(t, 3, result.Batches[0].Attempts)
	assert.Empty(t, result.FailedExamples)
	for i := range result.Scores {
		assert.InDelta(t, 0.6, result.Scores[i]["m"].Score, 1e-9, "example %d", i)
	}
}

func TestEvaluate_ExhaustedRetriesMarkBatchFailed(t *testing.T) {
	scorer := &stubScorer{
		name: "m",
		score: func(context.Context, domain.EvaluationExample) (float64, error) {
			return 0, fmt.Errorf("upstream: %w", ports.ErrServiceUnavailable)
		},
	}

	config := fastConfig()
	config.BatchSize = 10
	config.MaxRetries = 2
	evaluator, err := NewEvaluator(config, []ports.MetricScorer{scorer}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), labeledExamples(2),
		[]string{"m"}, true)
	require.NoError(t, err)

	require.Len(t, result.Batches, 1)
	assert.Equal(t, domain.BatchFailed, result.Batches[0].Status)
	assert.Equal(t, 3, result.Batches[0].Attempts)
	assert.Equal(t, []int{0, 1}, result.FailedExamples)
}

func TestEvaluate_UnusableJudgeOutputIsUnavailableNotFatal(t *testing.T) {
	scorer := &stubScorer{
		name: "judged",
		score: func(_ context.Context, example domain.EvaluationExample) (float64, error) {
			if example.Query == "question 1" {
				return 0, fmt.Errorf("%w: judge score 1.700 outside [0, 1]", domain.ErrScoreUnavailable)
			}
			return 0.5, nil
		},
	}

	evaluator, err := NewEvaluator(fastConfig(), []ports.MetricScorer{scorer}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), labeledExamples(3),
		[]string{"judged"}, true)
	require.NoError(t, err)

	assert.False(t, result.Scores[0]["judged"].Unavailable)
	assert.True(t, result.Scores[1]["judged"].Unavailable)
	assert.False(t, result.Scores[2]["judged"].Unavailable)
	assert.Empty(t, result.FailedExamples, "unavailable scores are not batch failures")
}

func TestEvaluate_CancellationReturnsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	scored := 0
	scorer := &stubScorer{
		name: "m",
		score: func(context.Context, domain.EvaluationExample) (float64, error) {
			mu.Lock()
			defer mu.Unlock()
			scored++
			if scored == 2 {
				// Abort mid-run after the first batch completes.
				cancel()
			}
			return 0.5, nil
		},
	}

	evaluator, err := NewEvaluator(fastConfig(), []ports.MetricScorer{scorer}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(ctx, labeledExamples(6), []string{"m"}, true)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result, "partial progress must be returned")
	require.Len(t, result.Batches, 1, "unissued batches do not appear in the log")
	assert.Equal(t, domain.BatchSucceeded, result.Batches[0].Status)
}

func TestEvaluate_ConcurrentModeKeepsOrder(t *testing.T) {
	echo := &stubScorer{
		name: "echo",
		score: func(_ context.Context, example domain.EvaluationExample) (float64, error) {
			var i int
			fmt.Sscanf(example.Query, "question %d", &i)
			return float64(i) / 100, nil
		},
	}

	config := fastConfig()
	config.MaxConcurrency = 4
	evaluator, err := NewEvaluator(config, []ports.MetricScorer{echo}, nil)
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), labeledExamples(9),
		[]string{"echo"}, true)
	require.NoError(t, err)

	for i, set := range result.Scores {
		assert.InDelta(t, float64(i)/100, set["echo"].Score, 1e-9, "example %d", i)
	}
	require.Len(t, result.Batches, 5)
	for i, record := range result.Batches {
		assert.Equal(t, i, record.Index, "batch log stays in index order")
	}
}
