package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/rag-bench/internal/ports"
)

// fakeCore is a scriptable CoreLLM for middleware tests.
type fakeCore struct {
	mu        sync.Mutex
	model     string
	calls     int
	failFirst int
	err       error
	response  string
}

func (f *fakeCore) DoRequest(ctx context.Context, prompt string, _ map[string]any) (string, int, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", 0, 0, f.err
	}
	if f.failFirst > 0 {
		f.failFirst--
		return "", 0, 0, fmt.Errorf("transient: %w", ports.ErrRateLimited)
	}
	return f.response, len(prompt) / 4, len(f.response) / 4, nil
}

func (f *fakeCore) GetModel() string      { return f.model }
func (f *fakeCore) SetModel(model string) { f.model = model }

func (f *fakeCore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient("telepathy", ClientConfig{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewClient_RequiresModel(t *testing.T) {
	_, err := NewClient("openai", ClientConfig{APIKey: "key"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}

func TestNewClient_CustomFactoryAndMiddlewareOrder(t *testing.T) {
	core := &fakeCore{model: "fake-model", response: "hello"}
	RegisterProviderFactory("fake-order", func(ClientConfig) (CoreLLM, error) {
		return core, nil
	})

	var order []string
	tag := func(name string) Middleware {
		return func(next CoreLLM) CoreLLM {
			return middlewareFunc{next: next, before: func() { order = append(order, name) }}
		}
	}

	client, err := NewClient("fake-order", ClientConfig{
		Model:      "fake-model",
		Middleware: []Middleware{tag("outer"), tag("inner")},
	})
	require.NoError(t, err)

	response, err := client.Complete(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", response)
	assert.Equal(t, []string{"outer", "inner"}, order,
		"first middleware entry must be outermost")
	assert.Equal(t, "fake-model", client.GetModel())
}

// middlewareFunc wraps a CoreLLM with a before hook.
type middlewareFunc struct {
	next   CoreLLM
	before func()
}

func (m middlewareFunc) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	m.before()
	return m.next.DoRequest(ctx, prompt, opts)
}

func (m middlewareFunc) GetModel() string      { return m.next.GetModel() }
func (m middlewareFunc) SetModel(model string) { m.next.SetModel(model) }

func TestRetryMiddleware_RecoversFromTransientFailure(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok", failFirst: 2}
	wrapped := RetryMiddleware(3, time.Millisecond, 5*time.Millisecond)(core)

	response, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", response)
	assert.Equal(t, 3, core.callCount())
}

func TestRetryMiddleware_DoesNotRetryFatalErrors(t *testing.T) {
	fatal := fmt.Errorf("bad key: %w", ports.ErrAuthenticationFailed)
	core := &fakeCore{model: "m", err: fatal}
	wrapped := RetryMiddleware(3, time.Millisecond, 5*time.Millisecond)(core)

	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrAuthenticationFailed)
	assert.Equal(t, 1, core.callCount())
}

func TestRetryMiddleware_ExhaustsRetries(t *testing.T) {
	core := &fakeCore{model: "m", failFirst: 10}
	wrapped := RetryMiddleware(2, time.Millisecond, 5*time.Millisecond)(core)

	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrRateLimited)
	assert.Equal(t, 3, core.callCount())
}

func TestRateLimitMiddleware_ZeroRateIsPassthrough(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok"}
	wrapped := RateLimitMiddleware(0, 0)(core)
	assert.Same(t, CoreLLM(core), wrapped)
}

func TestRateLimitMiddleware_AllowsWithinBudget(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok"}
	wrapped := RateLimitMiddleware(1000, 5)(core)

	for i := 0; i < 3; i++ {
		_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, core.callCount())
}

func TestTimeoutMiddleware_EnforcesDeadline(t *testing.T) {
	slow := slowCore{delay: 50 * time.Millisecond}
	wrapped := TimeoutMiddleware(5 * time.Millisecond)(slow)

	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type slowCore struct{ delay time.Duration }

func (s slowCore) DoRequest(ctx context.Context, _ string, _ map[string]any) (string, int, int, error) {
	select {
	case <-ctx.Done():
		return "", 0, 0, ctx.Err()
	case <-time.After(s.delay):
		return "slow", 0, 0, nil
	}
}

func (slowCore) GetModel() string { return "slow" }
func (slowCore) SetModel(string)  {}

func TestClassifyStatus_MapsToSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, ports.ErrAuthenticationFailed},
		{403, ports.ErrAuthenticationFailed},
		{429, ports.ErrRateLimited},
		{408, ports.ErrTimeout},
		{504, ports.ErrTimeout},
		{500, ports.ErrServiceUnavailable},
		{503, ports.ErrServiceUnavailable},
	}

	for _, tt := range tests {
		err := classifyStatus("test", tt.status, errors.New("upstream"))
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)

		var providerErr *ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, tt.status, providerErr.StatusCode)
	}
}

func TestClassifyStatus_UnknownStatusKeepsRawError(t *testing.T) {
	raw := errors.New("bad request")
	err := classifyStatus("test", 400, raw)

	assert.ErrorIs(t, err, raw)
	for _, sentinel := range []error{
		ports.ErrRateLimited, ports.ErrTimeout,
		ports.ErrServiceUnavailable, ports.ErrAuthenticationFailed,
	} {
		assert.False(t, errors.Is(err, sentinel))
	}
}

func TestClassifyTransport(t *testing.T) {
	timeoutErr := classifyTransport("test", context.DeadlineExceeded)
	assert.ErrorIs(t, timeoutErr, ports.ErrTimeout)

	cancelErr := classifyTransport("test", context.Canceled)
	assert.ErrorIs(t, cancelErr, context.Canceled)
}

func TestParseRequestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
		want RequestOptions
	}{
		{
			name: "nil uses defaults",
			opts: nil,
			want: RequestOptions{Temperature: 0, MaxTokens: 1024},
		},
		{
			name: "overrides",
			opts: map[string]any{
				"temperature":   0.7,
				"max_tokens":    256,
				"system_prompt": "be terse",
			},
			want: RequestOptions{Temperature: 0.7, MaxTokens: 256, SystemPrompt: "be terse"},
		},
		{
			name: "clamps out of range",
			opts: map[string]any{"temperature": 9.0, "max_tokens": -5},
			want: RequestOptions{Temperature: 2, MaxTokens: 1},
		},
		{
			name: "ignores wrong types",
			opts: map[string]any{"temperature": "hot", "max_tokens": "many"},
			want: RequestOptions{Temperature: 0, MaxTokens: 1024},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRequestOptions(tt.opts))
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
}
