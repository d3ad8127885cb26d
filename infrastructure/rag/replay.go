// Package rag provides the RAG adapter implementations benchmarked by
// the harness: a Weaviate-backed retrieval pipeline and a replay
// adapter that serves pre-recorded responses for offline comparisons.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ahrav/rag-bench/internal/ports"
)

// recordedResponse is one replay entry keyed by query text.
type recordedResponse struct {
	Contexts []string `json:"contexts"`
	Answer   string   `json:"answer"`
}

// ReplayAdapter serves answers recorded from a previous pipeline run.
// It lets a remote or expensive implementation be benchmarked offline,
// and gives tests a deterministic adapter.
type ReplayAdapter struct {
	name      string
	responses map[string]recordedResponse
}

// NewReplayAdapter loads a replay file: a JSON object mapping query
// text to {"contexts": [...], "answer": "..."}.
func NewReplayAdapter(name, path string) (*ReplayAdapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading replay file: %w", err)
	}

	var responses map[string]recordedResponse
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("parsing replay file %s: %w", path, err)
	}
	return &ReplayAdapter{name: name, responses: responses}, nil
}

// Name returns the adapter's report row label.
func (a *ReplayAdapter) Name() string { return a.name }

// Answer returns the recorded response for the query. Queries absent
// from the replay file are an error so gaps surface as warnings rather
// than silent empty answers.
func (a *ReplayAdapter) Answer(_ context.Context, query string) ([]string, string, error) {
	response, ok := a.responses[query]
	if !ok {
		return nil, "", fmt.Errorf("no recorded response for query %q", query)
	}
	return response.Contexts, response.Answer, nil
}

var _ ports.RAGAdapter = (*ReplayAdapter)(nil)
