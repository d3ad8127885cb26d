// Command ragbench runs RAG benchmark comparisons: it loads a dataset,
// answers it with each configured implementation, scores the answers in
// rate-limited batches, and writes an aggregated comparison report with
// rendered charts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ragbench",
		Short:         "Benchmark and compare RAG implementations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newDatasetCmd())
	root.AddCommand(newReportCmd())
	return root
}
