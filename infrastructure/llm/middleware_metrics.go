package llm

import (
	"context"
	"time"

	"github.com/ahrav/rag-bench/internal/ports"
)

// MetricsMiddleware records request latency, token throughput, and
// error counts to the collector. A nil collector is a no-op.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreLLM) CoreLLM {
		if collector == nil {
			return next
		}
		return &metricsLLM{next: next, collector: collector}
	}
}

type metricsLLM struct {
	next      CoreLLM
	collector ports.MetricsCollector
}

func (m *metricsLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	start := time.Now()
	response, tokensIn, tokensOut, err := m.next.DoRequest(ctx, prompt, opts)

	labels := map[string]string{"model": m.next.GetModel()}
	m.collector.RecordLatency("llm_request", time.Since(start), labels)
	if err != nil {
		m.collector.RecordCounter("llm_request_errors", 1, labels)
		return response, tokensIn, tokensOut, err
	}
	m.collector.RecordCounter("llm_tokens_in", float64(tokensIn), labels)
	m.collector.RecordCounter("llm_tokens_out", float64(tokensOut), labels)
	return response, tokensIn, tokensOut, nil
}

func (m *metricsLLM) GetModel() string      { return m.next.GetModel() }
func (m *metricsLLM) SetModel(model string) { m.next.SetModel(model) }
