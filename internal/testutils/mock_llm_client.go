// Package testutils provides shared test doubles for the benchmark
// pipeline: a scriptable judge client, a scripted RAG adapter, and a
// small labeled dataset builder.
package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/ahrav/rag-bench/internal/ports"
)

// MockLLMClient is a configurable test double for ports.LLMClient.
// Responses are selected by substring match on the prompt; failures
// can be injected globally or for the first N calls to exercise retry
// paths. All methods are safe for concurrent use.
type MockLLMClient struct {
	mu sync.Mutex

	// responses maps a prompt substring to the canned response.
	responses map[string]string

	// defaultResponse is returned when no pattern matches.
	defaultResponse string

	// err, when set, fails every call.
	err error

	// failFirst fails the first N calls with failErr, then succeeds.
	failFirst int
	failErr   error

	callCount int
	prompts   []string

	model string
}

// NewMockLLMClient returns a mock that answers every prompt with a
// well-formed judge verdict of score 0.8.
func NewMockLLMClient() *MockLLMClient {
	return &MockLLMClient{
		responses:       make(map[string]string),
		defaultResponse: `{"score": 0.8, "reasoning": "canned verdict"}`,
		model:           "mock-model",
	}
}

// SetResponse registers a canned response for prompts containing the
// given substring.
func (m *MockLLMClient) SetResponse(promptSubstring, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[promptSubstring] = response
}

// SetDefaultResponse changes the fallback response.
func (m *MockLLMClient) SetDefaultResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = response
}

// SetError makes every subsequent call fail with err.
func (m *MockLLMClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FailFirst makes the next n calls fail with err before recovering.
func (m *MockLLMClient) FailFirst(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFirst = n
	m.failErr = err
}

// CallCount returns how many Complete calls were made.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns a copy of every prompt received, in call order.
func (m *MockLLMClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Complete implements ports.LLMClient.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, _ map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.prompts = append(m.prompts, prompt)

	if m.err != nil {
		return "", m.err
	}
	if m.failFirst > 0 {
		m.failFirst--
		return "", m.failErr
	}

	for substring, response := range m.responses {
		if strings.Contains(prompt, substring) {
			return response, nil
		}
	}
	return m.defaultResponse, nil
}

// EstimateTokens implements ports.LLMClient.
func (m *MockLLMClient) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel implements ports.LLMClient.
func (m *MockLLMClient) GetModel() string { return m.model }

var _ ports.LLMClient = (*MockLLMClient)(nil)
