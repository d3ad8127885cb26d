package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/rag-bench/internal/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfigYAML = `
dataset: toy-3
cache_dir: data
results_dir: results
labeled: true
metrics:
  - faithfulness
  - context_precision
adapters:
  - name: baseline
    type: replay
    path: replays/baseline.json
`

func TestLoadBenchmarkConfig_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, validConfigYAML)

	config, err := LoadBenchmarkConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "toy-3", config.Dataset)
	assert.True(t, config.Labeled)
	assert.Equal(t, []string{"faithfulness", "context_precision"}, config.Metrics)

	// Unset fields keep their defaults.
	assert.Equal(t, 20, config.Evaluator.BatchSize)
	assert.Equal(t, time.Second, config.Evaluator.InterBatchDelay)
	assert.Equal(t, 3, config.Evaluator.MaxRetries)
	assert.Equal(t, 1, config.Evaluator.MaxConcurrency)
	assert.Equal(t, 5, config.TopK)
	assert.Equal(t, "openai", config.Judge.Provider)
}

func TestLoadBenchmarkConfig_OverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, validConfigYAML+`
evaluator:
  batch_size: 4
  inter_batch_delay: 250ms
  max_concurrency: 3
judge:
  provider: bedrock
  model: anthropic.claude-3-5-sonnet-20240620-v1:0
  region: us-east-1
`)

	config, err := LoadBenchmarkConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4, config.Evaluator.BatchSize)
	assert.Equal(t, 250*time.Millisecond, config.Evaluator.InterBatchDelay)
	assert.Equal(t, 3, config.Evaluator.MaxConcurrency)
	assert.Equal(t, "bedrock", config.Judge.Provider)
	assert.Equal(t, "us-east-1", config.Judge.Region)
}

func TestLoadBenchmarkConfig_RejectsUnknownFields(t *testing.T) {
	path := writeConfigFile(t, validConfigYAML+`
batchsize: 10
`)

	_, err := LoadBenchmarkConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typo")
}

func TestBenchmarkConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BenchmarkConfig)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(*BenchmarkConfig) {},
		},
		{
			name:    "missing dataset",
			mutate:  func(c *BenchmarkConfig) { c.Dataset = "" },
			wantErr: true,
		},
		{
			name:    "empty metrics",
			mutate:  func(c *BenchmarkConfig) { c.Metrics = nil },
			wantErr: true,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *BenchmarkConfig) { c.Evaluator.BatchSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative delay",
			mutate:  func(c *BenchmarkConfig) { c.Evaluator.InterBatchDelay = -time.Second },
			wantErr: true,
		},
		{
			name:    "unknown judge provider",
			mutate:  func(c *BenchmarkConfig) { c.Judge.Provider = "carrier-pigeon" },
			wantErr: true,
		},
		{
			name:    "excessive retries",
			mutate:  func(c *BenchmarkConfig) { c.Evaluator.MaxRetries = 99 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultBenchmarkConfig()
			config.Dataset = "toy-3"
			config.CacheDir = "data"
			config.ResultsDir = "results"
			config.Metrics = []string{"faithfulness"}
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}
