// Package dataset implements commands for inspecting the collected dataset
// and the scrape run ledger.
package dataset

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/subsift/cmd/common"
	"github.com/jonesrussell/subsift/internal/dataset"
)

// DefaultRunsLimit is the number of ledger entries shown by "dataset runs".
const DefaultRunsLimit = 20

const (
	percent      = 100
	timeRounding = 10 * time.Millisecond
)

// Command returns the dataset command group for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect the collected dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(statsCommand())
	cmd.AddCommand(runsCommand())

	return cmd
}

// statsCommand reports descriptive statistics about the dataset.
func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show descriptive statistics for the dataset",
		Long: `Stats summarizes the dataset: posts per subreddit, title length
distribution, and the baseline accuracy a majority-class predictor
achieves. Trained models have to beat that baseline to be useful.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			store, err := cmdcommon.OpenStore(deps)
			if err != nil {
				return err
			}

			posts, err := store.Load()
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}

			stats, err := dataset.ComputeStats(posts)
			if err != nil {
				return fmt.Errorf("failed to compute statistics: %w", err)
			}

			renderLabelTable(stats)
			fmt.Printf("\nTotal posts:        %d\n", stats.Total)
			fmt.Printf("Majority label:     %s\n", stats.MajorityLabel)
			fmt.Printf("Baseline accuracy:  %.4f\n", stats.BaselineAccuracy)
			fmt.Printf("Mean title chars:   %.1f (min %d, max %d)\n",
				stats.MeanTitleChars, stats.MinTitleChars, stats.MaxTitleChars)
			fmt.Printf("Mean title tokens:  %.1f\n", stats.MeanTitleTokens)
			return nil
		},
	}
}

// runsCommand lists entries from the scrape run ledger.
func runsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded scrape runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			ledger, err := cmdcommon.OpenRunLog(deps)
			if err != nil {
				return err
			}
			defer ledger.Close()

			runs, err := ledger.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Println("No scrape runs recorded yet.")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Started", "Subreddit", "Status", "Fetched", "Added", "Dataset", "Duration"})
			for _, run := range runs {
				t.AppendRow(table.Row{
					run.StartedAt.Format("2006-01-02 15:04:05"),
					run.Subreddit,
					run.Status,
					run.PostsFetched,
					run.PostsAdded,
					run.DatasetTotal,
					run.Duration().Round(timeRounding).String(),
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultRunsLimit, "number of runs to show")

	return cmd
}

// renderLabelTable prints per-subreddit post counts.
func renderLabelTable(stats *dataset.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Subreddit", "Posts", "Share"})
	for _, label := range stats.Labels {
		t.AppendRow(table.Row{label.Label, label.Count, fmt.Sprintf("%.1f%%", label.Share*percent)})
	}
	t.Render()
}
