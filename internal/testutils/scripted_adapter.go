package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahrav/rag-bench/internal/ports"
)

// ScriptedResponse is one canned adapter answer.
type ScriptedResponse struct {
	Contexts []string
	Answer   string
	Err      error
}

// ScriptedAdapter is a deterministic ports.RAGAdapter returning canned
// responses keyed by query. Unknown queries return a fixed fallback so
// tests do not need to script every seed.
type ScriptedAdapter struct {
	mu        sync.Mutex
	name      string
	responses map[string]ScriptedResponse
	calls     []string
}

// NewScriptedAdapter creates an adapter with the given row label.
func NewScriptedAdapter(name string) *ScriptedAdapter {
	return &ScriptedAdapter{
		name:      name,
		responses: make(map[string]ScriptedResponse),
	}
}

// Script registers the response for a query.
func (a *ScriptedAdapter) Script(query string, response ScriptedResponse) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[query] = response
}

// Calls returns the queries received, in order.
func (a *ScriptedAdapter) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

// Name implements ports.RAGAdapter.
func (a *ScriptedAdapter) Name() string { return a.name }

// Answer implements ports.RAGAdapter.
func (a *ScriptedAdapter) Answer(_ context.Context, query string) ([]string, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, query)

	if response, ok := a.responses[query]; ok {
		return response.Contexts, response.Answer, response.Err
	}
	return []string{fmt.Sprintf("context for %q", query)},
		fmt.Sprintf("answer for %q", query), nil
}

var _ ports.RAGAdapter = (*ScriptedAdapter)(nil)
