package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a client-side token bucket so judge
// requests stay under the provider's rate limits regardless of batch
// concurrency. requestsPerSecond of zero disables the limiter.
func RateLimitMiddleware(requestsPerSecond float64, burst int) Middleware {
	return func(next CoreLLM) CoreLLM {
		if requestsPerSecond <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		return &rateLimitedLLM{
			next:    next,
			limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		}
	}
}

type rateLimitedLLM struct {
	next    CoreLLM
	limiter *rate.Limiter
}

func (r *rateLimitedLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", 0, 0, fmt.Errorf("rate limiter wait: %w", err)
	}
	return r.next.DoRequest(ctx, prompt, opts)
}

func (r *rateLimitedLLM) GetModel() string      { return r.next.GetModel() }
func (r *rateLimitedLLM) SetModel(model string) { r.next.SetModel(model) }
