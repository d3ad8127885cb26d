// Package application wires the benchmark pipeline together: it owns
// configuration, the batch metrics evaluator, and the run orchestration
// that takes a dataset through answering, scoring, aggregation, and
// reporting.
package application

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/rag-bench/internal/domain"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// EvaluatorConfig controls batching, pacing, and retry behavior of the
// metrics evaluator. Batch size and inter-batch delay are configuration
// rather than constants so operators can match external rate limits.
type EvaluatorConfig struct {
	// BatchSize is the number of examples scored per batch.
	BatchSize int `yaml:"batch_size" validate:"min=1,max=500"`

	// InterBatchDelay is the pause inserted between batches when
	// executing sequentially, to stay under upstream rate limits.
	InterBatchDelay time.Duration `yaml:"inter_batch_delay" validate:"min=0"`

	// MaxRetries bounds how many times a failed batch is reissued.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`

	// RetryBaseDelay is the starting backoff delay for batch retries.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" validate:"min=0"`

	// RetryMaxDelay caps the backoff delay between batch retries.
	RetryMaxDelay time.Duration `yaml:"retry_max_delay" validate:"min=0"`

	// BatchTimeout bounds one attempt of one batch. A timeout is a
	// retryable failure, not a fatal error. Zero disables the timeout.
	BatchTimeout time.Duration `yaml:"batch_timeout" validate:"min=0"`

	// MaxConcurrency is the number of batches in flight at once.
	// The default of 1 processes batches strictly one after another;
	// higher values rely on the LLM client's rate limiter for pacing
	// and suppress InterBatchDelay.
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=1,max=32"`
}

// DefaultEvaluatorConfig returns the evaluator defaults used when a
// config file leaves fields unset.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		BatchSize:       20,
		InterBatchDelay: time.Second,
		MaxRetries:      3,
		RetryBaseDelay:  500 * time.Millisecond,
		RetryMaxDelay:   30 * time.Second,
		BatchTimeout:    60 * time.Second,
		MaxConcurrency:  1,
	}
}

// JudgeConfig selects and configures the LLM used by judge-based
// metric scorers.
type JudgeConfig struct {
	// Provider selects the LLM backend.
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic google bedrock"`

	// Model is the provider-specific model identifier.
	Model string `yaml:"model" validate:"required"`

	// APIKey authenticates with the provider. For bedrock this is
	// unused; the AWS credential chain applies instead.
	APIKey string `yaml:"api_key"`

	// Region is the AWS region for the bedrock provider.
	Region string `yaml:"region"`

	// RequestsPerSecond and Burst configure the client-side token
	// bucket protecting the provider's rate limits.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
	Burst             int     `yaml:"burst" validate:"min=0"`

	// Timeout bounds a single judge request.
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
}

// AdapterConfig declares one RAG implementation to benchmark.
type AdapterConfig struct {
	// Name is the report row label. Must be unique per run.
	Name string `yaml:"name" validate:"required"`

	// Type selects the adapter implementation.
	Type string `yaml:"type" validate:"required,oneof=replay weaviate"`

	// Path locates the recorded responses file for replay adapters.
	Path string `yaml:"path"`

	// Host, Scheme, ClassName, and ContentField configure weaviate
	// adapters.
	Host         string `yaml:"host"`
	Scheme       string `yaml:"scheme"`
	ClassName    string `yaml:"class_name"`
	ContentField string `yaml:"content_field"`

	// Mode is the weaviate retrieval mode: neartext or hybrid.
	Mode string `yaml:"mode"`

	// Alpha balances hybrid search between keyword (0) and vector (1).
	Alpha float32 `yaml:"alpha" validate:"min=0,max=1"`
}

// BenchmarkConfig is the full configuration surface of one benchmark
// run. There is no ambient global state; this struct is threaded
// explicitly through the dataset provider, adapters, and evaluator
// constructors.
type BenchmarkConfig struct {
	// Dataset is the catalog identifier of the evaluation set.
	Dataset string `yaml:"dataset" validate:"required"`

	// CacheDir is the local dataset cache directory.
	CacheDir string `yaml:"cache_dir" validate:"required"`

	// ResultsDir is the root directory for run outputs.
	ResultsDir string `yaml:"results_dir" validate:"required"`

	// Labeled declares whether reference-dependent metrics may run.
	Labeled bool `yaml:"labeled"`

	// Metrics is the requested metric set. Unknown names fail fast
	// before any batch work begins.
	Metrics []string `yaml:"metrics" validate:"required,min=1,dive,min=1"`

	// TopK is the retrieval depth passed through to RAG adapters.
	// It is not interpreted by the evaluator.
	TopK int `yaml:"top_k" validate:"min=1,max=100"`

	// Adapters lists the RAG implementations to compare, in report row
	// order. Callers constructing adapters themselves may leave it
	// empty.
	Adapters []AdapterConfig `yaml:"adapters" validate:"dive"`

	// Evaluator holds batching and retry settings.
	Evaluator EvaluatorConfig `yaml:"evaluator"`

	// Judge configures the scoring LLM.
	Judge JudgeConfig `yaml:"judge"`
}

// DefaultBenchmarkConfig returns a config with all defaulted fields
// populated. Dataset, directories, and metrics must still be set by
// the caller or the config file.
func DefaultBenchmarkConfig() BenchmarkConfig {
	return BenchmarkConfig{
		TopK:      5,
		Evaluator: DefaultEvaluatorConfig(),
		Judge: JudgeConfig{
			Provider:          "openai",
			Model:             "gpt-4o-mini",
			RequestsPerSecond: 5,
			Burst:             10,
			Timeout:           30 * time.Second,
		},
	}
}

// LoadBenchmarkConfig reads and validates a YAML benchmark config.
// Decoding is strict so configuration typos surface as errors instead
// of being silently ignored.
func LoadBenchmarkConfig(path string) (BenchmarkConfig, error) {
	config := DefaultBenchmarkConfig()

	file, err := os.Open(path)
	if err != nil {
		return config, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("failed to decode config (check for typos): %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate checks the configuration against its struct tags and wraps
// failures in domain.ErrInvalidConfiguration.
func (c BenchmarkConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	return nil
}
