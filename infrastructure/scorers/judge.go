package scorers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// Package-level validator instance for judge response validation.
var validate = validator.New()

// Judge request defaults. Temperature zero keeps verdicts repeatable;
// the token budget leaves room for the reasoning field.
const (
	judgeTemperature = 0.0
	judgeMaxTokens   = 512
)

// judgeSystemPrompt instructs the model to answer in machine-readable
// form. It is shared by every judged metric.
const judgeSystemPrompt = `You are an impartial evaluation judge for retrieval-augmented generation systems.
Respond with a single JSON object of the form {"score": <number between 0.0 and 1.0>, "reasoning": "<one or two sentences>"}.
Do not include any other text.`

// judgeResponse is the JSON verdict expected from the judge model.
type judgeResponse struct {
	// Score is the metric value on the [0, 1] scale.
	Score float64 `json:"score"`

	// Reasoning is the judge's short justification.
	Reasoning string `json:"reasoning" validate:"required"`
}

// promptData carries the example fields into rubric templates.
type promptData struct {
	Query     string
	Contexts  string
	Answer    string
	Reference string
}

// judgeScorer implements ports.MetricScorer for metrics whose value is
// produced by prompting a judge LLM with a rubric. Unusable judge
// output (malformed JSON, out-of-range score) is reported as an
// unavailable score, never defaulted; transport failures pass through
// untouched so the evaluator can retry the batch.
type judgeScorer struct {
	name              string
	requiresReference bool
	requiresContexts  bool
	prompt            *template.Template
	client            ports.LLMClient
	tracer            trace.Tracer
}

func newJudgeScorer(name string, requiresReference, requiresContexts bool, rubric string, client ports.LLMClient) *judgeScorer {
	return &judgeScorer{
		name:              name,
		requiresReference: requiresReference,
		requiresContexts:  requiresContexts,
		prompt:            template.Must(template.New(name).Parse(rubric)),
		client:            client,
		tracer:            otel.Tracer("scorers"),
	}
}

// Name returns the metric identifier used in configs and reports.
func (s *judgeScorer) Name() string { return s.name }

// RequiresReference reports whether the metric needs a reference answer.
func (s *judgeScorer) RequiresReference() bool { return s.requiresReference }

// RequiresContexts reports whether the metric needs retrieved contexts.
func (s *judgeScorer) RequiresContexts() bool { return s.requiresContexts }

// Score renders the rubric for the example, asks the judge, and parses
// the verdict.
func (s *judgeScorer) Score(ctx context.Context, example domain.EvaluationExample) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "judgeScorer.Score",
		trace.WithAttributes(attribute.String("metric", s.name)),
	)
	defer span.End()

	var prompt strings.Builder
	data := promptData{
		Query:     example.Query,
		Contexts:  strings.Join(example.RetrievedContexts, "\n---\n"),
		Answer:    example.GeneratedAnswer,
		Reference: example.ReferenceAnswer,
	}
	if err := s.prompt.Execute(&prompt, data); err != nil {
		return 0, fmt.Errorf("rendering %s rubric: %w", s.name, err)
	}

	response, err := s.client.Complete(ctx, prompt.String(), map[string]any{
		"temperature":   judgeTemperature,
		"max_tokens":    judgeMaxTokens,
		"system_prompt": judgeSystemPrompt,
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	score, err := parseVerdict(response)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("%w: %s judge: %v", domain.ErrScoreUnavailable, s.name, err)
	}
	span.SetAttributes(attribute.Float64("score", score))
	return score, nil
}

// parseVerdict extracts and validates the judge's JSON verdict. A score
// outside [0, 1] is rejected rather than clamped.
func parseVerdict(response string) (float64, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return 0, fmt.Errorf("no JSON object found in judge response (%d chars)", len(response))
	}

	var verdict judgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
		return 0, fmt.Errorf("malformed judge verdict: %w", err)
	}
	if err := validate.Struct(verdict); err != nil {
		return 0, fmt.Errorf("incomplete judge verdict: %w", err)
	}
	if verdict.Score < 0 || verdict.Score > 1 {
		return 0, fmt.Errorf("judge score %.3f outside [0, 1]", verdict.Score)
	}
	return verdict.Score, nil
}

// extractJSON pulls a JSON object out of a response that may wrap it
// in markdown fences or surrounding prose.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```json"); idx != -1 {
		rest := response[idx+7:]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(response, "```"); idx != -1 {
		rest := response[idx+3:]
		if nl := strings.Index(rest, "\n"); nl != -1 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end != -1 {
			candidate := strings.TrimSpace(rest[:end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return response[start : end+1]
}
