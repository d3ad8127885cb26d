package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/rag-bench/infrastructure/dataset"
)

func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage the local dataset cache",
	}
	cmd.AddCommand(newDatasetListCmd())
	cmd.AddCommand(newDatasetPullCmd())
	return cmd
}

func newDatasetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the datasets the catalog knows about",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, id := range dataset.NewRegistry().List() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newDatasetPullCmd() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "pull <dataset-id>",
		Short: "Fetch a dataset into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := dataset.NewCachingProvider(cacheDir, dataset.NewRegistry())
			if err != nil {
				return err
			}
			ds, err := provider.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cached %s (%d examples, labeled=%t)\n",
				ds.ID, len(ds.Seeds), ds.Labeled)
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "data", "dataset cache directory")
	return cmd
}
