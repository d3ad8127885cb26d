package ports

import "context"

// RAGAdapter is the single capability every RAG implementation under
// comparison must expose. Given a query it returns the retrieved
// context passages, in retrieval order, and the generated answer.
// The evaluator and reporting layers depend only on this contract, so
// any implementation satisfying it can be benchmarked without changes
// elsewhere. Side effects such as network calls and cost are
// implementation-specific.
type RAGAdapter interface {
	// Name returns the implementation name used as the run identifier
	// in reports (e.g. "baseline", "graph").
	Name() string

	// Answer retrieves supporting contexts for the query and generates
	// an answer from them.
	Answer(ctx context.Context, query string) (contexts []string, answer string, err error)
}
