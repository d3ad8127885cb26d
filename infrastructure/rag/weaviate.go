package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/ahrav/rag-bench/internal/ports"
)

// Package-level validator instance for adapter configuration.
var validate = validator.New()

// RetrievalMode selects the Weaviate search operator.
type RetrievalMode string

const (
	// ModeNearText uses pure vector search.
	ModeNearText RetrievalMode = "neartext"
	// ModeHybrid blends vector and keyword (BM25) search.
	ModeHybrid RetrievalMode = "hybrid"
)

// WeaviateConfig configures a Weaviate-backed adapter.
type WeaviateConfig struct {
	// Name is the adapter's report row label.
	Name string `validate:"required"`

	// Host and Scheme locate the Weaviate instance.
	Host   string `validate:"required"`
	Scheme string `validate:"required,oneof=http https"`

	// ClassName is the collection holding document chunks.
	ClassName string `validate:"required"`

	// ContentField is the chunk text property.
	ContentField string `validate:"required"`

	// TopK is the number of chunks retrieved per query.
	TopK int `validate:"min=1,max=100"`

	// Mode selects nearText or hybrid retrieval.
	Mode RetrievalMode `validate:"required,oneof=neartext hybrid"`

	// Alpha balances hybrid search: 0 is pure keyword, 1 pure vector.
	// Only used in hybrid mode.
	Alpha float32 `validate:"min=0,max=1"`
}

// answerPromptFormat instructs the generator to stay within the
// retrieved contexts.
const answerPromptFormat = `Answer the question using only the information in the provided contexts.
If the contexts do not contain the answer, say so.

Contexts:
%s

Question: %s

Answer:`

// WeaviateAdapter implements ports.RAGAdapter over a Weaviate vector
// store and an LLM generator: retrieve top-K chunks for the query,
// then prompt the generator with the chunks to produce the answer.
type WeaviateAdapter struct {
	config    WeaviateConfig
	client    *weaviate.Client
	generator ports.LLMClient
}

// NewWeaviateAdapter creates an adapter from its config and generator.
func NewWeaviateAdapter(config WeaviateConfig, generator ports.LLMClient) (*WeaviateAdapter, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid weaviate adapter config: %w", err)
	}
	if generator == nil {
		return nil, fmt.Errorf("answer generator is required")
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   config.Host,
		Scheme: config.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("creating weaviate client: %w", err)
	}

	return &WeaviateAdapter{
		config:    config,
		client:    client,
		generator: generator,
	}, nil
}

// Name returns the adapter's report row label.
func (a *WeaviateAdapter) Name() string { return a.config.Name }

// Answer retrieves the top-K chunks for the query and generates an
// answer grounded in them.
func (a *WeaviateAdapter) Answer(ctx context.Context, query string) ([]string, string, error) {
	contexts, err := a.retrieve(ctx, query)
	if err != nil {
		return nil, "", fmt.Errorf("retrieving contexts: %w", err)
	}
	if len(contexts) == 0 {
		return nil, "", fmt.Errorf("no chunks retrieved for query")
	}

	prompt := fmt.Sprintf(answerPromptFormat, strings.Join(contexts, "\n---\n"), query)
	answer, err := a.generator.Complete(ctx, prompt, map[string]any{"temperature": 0.0})
	if err != nil {
		return nil, "", fmt.Errorf("generating answer: %w", err)
	}
	return contexts, strings.TrimSpace(answer), nil
}

// retrieve runs the configured search operator and extracts chunk
// texts in relevance order.
func (a *WeaviateAdapter) retrieve(ctx context.Context, query string) ([]string, error) {
	builder := a.client.GraphQL().Get().
		WithClassName(a.config.ClassName).
		WithFields(
			graphql.Field{Name: a.config.ContentField},
			graphql.Field{Name: "_additional { certainty distance }"},
		).
		WithLimit(a.config.TopK)

	switch a.config.Mode {
	case ModeHybrid:
		builder = builder.WithHybrid(a.client.GraphQL().HybridArgumentBuilder().
			WithQuery(query).
			WithAlpha(a.config.Alpha))
	default:
		builder = builder.WithNearText(a.client.GraphQL().NearTextArgBuilder().
			WithConcepts([]string{query}))
	}

	result, err := builder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate query: %s", result.Errors[0].Message)
	}
	return a.parseChunks(result), nil
}

// parseChunks pulls the content field out of the GraphQL response,
// skipping malformed objects.
func (a *WeaviateAdapter) parseChunks(result *models.GraphQLResponse) []string {
	data, ok := result.Data["Get"].(map[string]any)
	if !ok {
		return nil
	}
	objects, ok := data[a.config.ClassName].([]any)
	if !ok {
		return nil
	}

	chunks := make([]string, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		if content, ok := m[a.config.ContentField].(string); ok && content != "" {
			chunks = append(chunks, content)
		}
	}
	return chunks
}

var _ ports.RAGAdapter = (*WeaviateAdapter)(nil)
