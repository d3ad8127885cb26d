package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahrav/rag-bench/infrastructure/viz"
	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

func newReportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <report.json>",
		Short: "Re-render a saved comparison report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading report: %w", err)
			}
			var report domain.ComparisonReport
			if err := json.Unmarshal(data, &report); err != nil {
				return fmt.Errorf("parsing report: %w", err)
			}

			var renderer ports.ReportRenderer
			switch format {
			case "md":
				renderer = viz.NewMarkdownRenderer()
			case "csv":
				renderer = viz.NewCSVRenderer()
			default:
				return fmt.Errorf("unknown format %q (want md or csv)", format)
			}

			out, err := renderer.Render(report)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "output format: md or csv")
	return cmd
}
