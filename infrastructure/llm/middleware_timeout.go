package llm

import (
	"context"
	"time"
)

// TimeoutMiddleware bounds each request with a per-call deadline on top
// of whatever deadline the caller already set. A zero timeout is a
// no-op.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next CoreLLM) CoreLLM {
		if timeout <= 0 {
			return next
		}
		return &timeoutLLM{next: next, timeout: timeout}
	}
}

type timeoutLLM struct {
	next    CoreLLM
	timeout time.Duration
}

func (t *timeoutLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.DoRequest(ctx, prompt, opts)
}

func (t *timeoutLLM) GetModel() string      { return t.next.GetModel() }
func (t *timeoutLLM) SetModel(model string) { t.next.SetModel(model) }
