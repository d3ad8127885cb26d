package scorers

import "github.com/ahrav/rag-bench/internal/ports"

// NewFaithfulnessScorer measures how well the generated answer is
// supported by the retrieved contexts. It needs contexts but no
// reference answer, so it works on unlabeled datasets.
func NewFaithfulnessScorer(client ports.LLMClient) ports.MetricScorer {
	return newJudgeScorer("faithfulness", false, true, `Evaluate whether every claim in the answer is supported by the retrieved contexts.
Score 1.0 if all claims are grounded in the contexts, 0.0 if none are, and proportionally in between.

Question: {{.Query}}

Retrieved contexts:
{{.Contexts}}

Answer: {{.Answer}}`, client)
}

// NewContextPrecisionScorer measures what fraction of the retrieved
// contexts is actually relevant to the question. It needs contexts but
// no reference answer, so it works on unlabeled datasets.
func NewContextPrecisionScorer(client ports.LLMClient) ports.MetricScorer {
	return newJudgeScorer("context_precision", false, true, `Evaluate what fraction of the retrieved contexts is relevant to answering the question.
Score 1.0 if every context is useful for the question, 0.0 if none are, and proportionally in between.

Question: {{.Query}}

Retrieved contexts:
{{.Contexts}}`, client)
}

// NewContextRecallScorer measures how much of the reference answer is
// attributable to the retrieved contexts.
func NewContextRecallScorer(client ports.LLMClient) ports.MetricScorer {
	return newJudgeScorer("context_recall", true, true, `Evaluate how much of the reference answer can be attributed to the retrieved contexts.
Score 1.0 if every statement in the reference answer is covered by the contexts, 0.0 if none are, and proportionally in between.

Question: {{.Query}}

Retrieved contexts:
{{.Contexts}}

Reference answer: {{.Reference}}`, client)
}

// NewContextEntityRecallScorer measures the fraction of entities in the
// reference answer that also appear in the retrieved contexts.
func NewContextEntityRecallScorer(client ports.LLMClient) ports.MetricScorer {
	return newJudgeScorer("context_entity_recall", true, true, `List the named entities in the reference answer, then determine what fraction of them appears in the retrieved contexts.
Score is that fraction: 1.0 if every entity is present, 0.0 if none are.

Retrieved contexts:
{{.Contexts}}

Reference answer: {{.Reference}}`, client)
}

// NewNoiseSensitivityScorer measures how often the answer picks up
// incorrect claims from irrelevant retrieved contexts. Lower noise
// influence scores higher.
func NewNoiseSensitivityScorer(client ports.LLMClient) ports.MetricScorer {
	return newJudgeScorer("noise_sensitivity", true, true, `Compare the answer with the reference answer and the retrieved contexts.
Identify claims in the answer that are incorrect and trace to irrelevant or misleading contexts.
Score 1.0 if no incorrect claims come from noisy contexts, 0.0 if the answer is dominated by them, and proportionally in between.

Question: {{.Query}}

Retrieved contexts:
{{.Contexts}}

Answer: {{.Answer}}

Reference answer: {{.Reference}}`, client)
}

// NewAnswerRelevancyScorer measures how directly the answer addresses
// the question, independent of factual correctness. It needs neither
// contexts nor a reference answer.
func NewAnswerRelevancyScorer(client ports.LLMClient) ports.MetricScorer {
	return newJudgeScorer("answer_relevancy", false, false, `Evaluate how directly the answer addresses the question.
Penalize evasive, incomplete, or redundant answers regardless of factual accuracy.
Score 1.0 for a fully on-point answer, 0.0 for an answer that ignores the question.

Question: {{.Query}}

Answer: {{.Answer}}`, client)
}

// NewAnswerCorrectnessScorer measures factual agreement between the
// answer and the reference answer.
func NewAnswerCorrectnessScorer(client ports.LLMClient) ports.MetricScorer {
	return newJudgeScorer("answer_correctness", true, false, `Evaluate the factual agreement between the answer and the reference answer.
Weigh both factual overlap and contradictions.
Score 1.0 for full agreement, 0.0 for complete disagreement.

Question: {{.Query}}

Answer: {{.Answer}}

Reference answer: {{.Reference}}`, client)
}
