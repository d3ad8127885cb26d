package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ahrav/rag-bench/internal/ports"
)

// RetryMiddleware retries failed requests with exponential backoff and
// jitter. Only errors classified as retryable (rate limits, timeouts,
// transient server failures) are retried; authentication and validation
// failures surface immediately.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &retryLLM{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

type retryLLM struct {
	next       CoreLLM
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func (r *retryLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", 0, 0, ctx.Err()
			case <-time.After(r.delayFor(attempt)):
			}
		}

		response, tokensIn, tokensOut, err := r.next.DoRequest(ctx, prompt, opts)
		if err == nil {
			return response, tokensIn, tokensOut, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryableError(err) {
			return "", 0, 0, err
		}
	}
	return "", 0, 0, fmt.Errorf("request failed after %d retries: %w", r.maxRetries, lastErr)
}

func (r *retryLLM) GetModel() string      { return r.next.GetModel() }
func (r *retryLLM) SetModel(model string) { r.next.SetModel(model) }

// delayFor computes exponential backoff with ±25% jitter, capped at
// maxDelay.
func (r *retryLLM) delayFor(attempt int) time.Duration {
	delay := r.baseDelay * time.Duration(1<<uint(attempt-1))
	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	// Jitter does not need cryptographic randomness.
	jitter := time.Duration(rand.Int63n(int64(delay)/2+1)) - delay/4 // #nosec G404
	delay += jitter
	if delay < 0 {
		delay = 0
	}
	return delay
}

func isRetryableError(err error) bool {
	return errors.Is(err, ports.ErrRateLimited) ||
		errors.Is(err, ports.ErrServiceUnavailable) ||
		errors.Is(err, ports.ErrTimeout)
}
