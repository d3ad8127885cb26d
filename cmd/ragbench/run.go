package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/rag-bench/infrastructure/dataset"
	"github.com/ahrav/rag-bench/infrastructure/llm"
	"github.com/ahrav/rag-bench/infrastructure/observability"
	"github.com/ahrav/rag-bench/infrastructure/rag"
	"github.com/ahrav/rag-bench/infrastructure/scorers"
	"github.com/ahrav/rag-bench/infrastructure/store"
	"github.com/ahrav/rag-bench/infrastructure/viz"
	"github.com/ahrav/rag-bench/internal/application"
	"github.com/ahrav/rag-bench/internal/ports"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark described by a config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := application.LoadBenchmarkConfig(configPath)
			if err != nil {
				return err
			}
			if len(config.Adapters) == 0 {
				return fmt.Errorf("config declares no adapters")
			}

			judge, err := buildJudgeClient(config.Judge)
			if err != nil {
				return fmt.Errorf("building judge client: %w", err)
			}

			collector := observability.NewPrometheusMetrics(nil)
			evaluator, err := application.NewEvaluator(
				config.Evaluator, scorers.DefaultScorers(judge), collector)
			if err != nil {
				return err
			}

			adapters, err := buildAdapters(config, judge)
			if err != nil {
				return err
			}

			provider, err := dataset.NewCachingProvider(config.CacheDir, dataset.NewRegistry())
			if err != nil {
				return err
			}

			runStore, err := store.NewFileRunStore(config.ResultsDir)
			if err != nil {
				return err
			}

			renderers := []ports.ReportRenderer{
				viz.NewBarRenderer(),
				viz.NewRadarRenderer(),
				viz.NewHeatmapRenderer(),
				viz.NewLineRenderer(),
				viz.NewScatterRenderer(),
				viz.NewCSVRenderer(),
				viz.NewMarkdownRenderer(),
			}

			benchmark, err := application.NewBenchmark(
				config, provider, adapters, evaluator, runStore, renderers)
			if err != nil {
				return err
			}

			result, err := benchmark.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "results written to %s\n", runStore.Dir())
			for _, row := range result.Report.Rows {
				if overall, ok := result.Report.OverallScore(row); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-30s overall %.3f\n", row, overall)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-30s overall n/a\n", row)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ragbench.yaml", "benchmark config file")
	return cmd
}

// buildJudgeClient assembles the judge LLM. The rate limiter sits
// outside the timeout so waiting for a token does not eat into the
// request deadline. Request retries are deliberately absent here: the
// evaluator retries at batch granularity.
func buildJudgeClient(config application.JudgeConfig) (ports.LLMClient, error) {
	return llm.NewClient(config.Provider, llm.ClientConfig{
		APIKey: config.APIKey,
		Model:  config.Model,
		Region: config.Region,
		Middleware: []llm.Middleware{
			llm.RateLimitMiddleware(config.RequestsPerSecond, config.Burst),
			llm.TimeoutMiddleware(config.Timeout),
		},
	})
}

func buildAdapters(config application.BenchmarkConfig, generator ports.LLMClient) ([]ports.RAGAdapter, error) {
	adapters := make([]ports.RAGAdapter, 0, len(config.Adapters))
	for _, ac := range config.Adapters {
		switch ac.Type {
		case "replay":
			adapter, err := rag.NewReplayAdapter(ac.Name, ac.Path)
			if err != nil {
				return nil, fmt.Errorf("adapter %q: %w", ac.Name, err)
			}
			adapters = append(adapters, adapter)
		case "weaviate":
			mode := rag.RetrievalMode(ac.Mode)
			if mode == "" {
				mode = rag.ModeNearText
			}
			scheme := ac.Scheme
			if scheme == "" {
				scheme = "http"
			}
			adapter, err := rag.NewWeaviateAdapter(rag.WeaviateConfig{
				Name:         ac.Name,
				Host:         ac.Host,
				Scheme:       scheme,
				ClassName:    ac.ClassName,
				ContentField: ac.ContentField,
				TopK:         config.TopK,
				Mode:         mode,
				Alpha:        ac.Alpha,
			}, generator)
			if err != nil {
				return nil, fmt.Errorf("adapter %q: %w", ac.Name, err)
			}
			adapters = append(adapters, adapter)
		default:
			return nil, fmt.Errorf("adapter %q: unknown type %q", ac.Name, ac.Type)
		}
	}
	return adapters, nil
}
