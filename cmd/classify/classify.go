// Package classify implements the classify command for predicting which
// subreddit a title came from.
package classify

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/subsift/cmd/common"
	"github.com/jonesrussell/subsift/internal/model"
)

// Command returns the classify command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [title]",
		Short: "Predict the subreddit for a post title",
		Long: `Classify runs the saved model on a title and prints the predicted
subreddit with per-class scores.

Example:
  subsift classify "Why does my goroutine leak memory?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			cfg := deps.Config.GetTrainingConfig()
			pipeline, err := model.Load(cfg.ModelPath)
			if err != nil {
				return fmt.Errorf("failed to load model from %s: %w", cfg.ModelPath, err)
			}

			title := strings.Join(args, " ")
			prediction, err := pipeline.PredictTitle(title)
			if err != nil {
				return fmt.Errorf("classification failed: %w", err)
			}

			fmt.Printf("Model:     %s\n", prediction.Model)
			fmt.Printf("Predicted: r/%s\n\n", prediction.Label)

			labels := make([]string, 0, len(prediction.Scores))
			for label := range prediction.Scores {
				labels = append(labels, label)
			}
			sort.Slice(labels, func(i, j int) bool {
				return prediction.Scores[labels[i]] > prediction.Scores[labels[j]]
			})

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Subreddit", "Score"})
			for _, label := range labels {
				t.AppendRow(table.Row{label, fmt.Sprintf("%.4f", prediction.Scores[label])})
			}
			t.Render()
			return nil
		},
	}
}
