// Package evaluate implements the evaluate command for scoring a saved
// model against the dataset.
package evaluate

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/subsift/cmd/common"
	"github.com/jonesrussell/subsift/internal/dataset"
	"github.com/jonesrussell/subsift/internal/evaluate"
	"github.com/jonesrussell/subsift/internal/model"
)

const percent = 100

// Command returns the evaluate command for use in the root command.
func Command() *cobra.Command {
	var (
		modelPath string
		labels    []string
		testOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate the saved model against the dataset",
		Long: `Evaluate loads the saved model and scores it on the dataset, printing
accuracy, per-class metrics and the confusion matrix.

With --test-only the model is scored on the same held-out split the
train command used, reproducing its reported test accuracy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			cfg := deps.Config.GetTrainingConfig()
			if modelPath == "" {
				modelPath = cfg.ModelPath
			}
			pipeline, err := model.Load(modelPath)
			if err != nil {
				return fmt.Errorf("failed to load model from %s: %w", modelPath, err)
			}

			store, err := cmdcommon.OpenStore(deps)
			if err != nil {
				return err
			}
			posts, err := store.Load()
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			posts = dataset.Filter(posts, labels)

			if testOnly {
				_, posts, err = dataset.Split(posts, cfg.TestSplit, cfg.Seed)
				if err != nil {
					return fmt.Errorf("failed to split dataset: %w", err)
				}
			}

			samples := model.BuildSamples(pipeline.Tokenizer, pipeline.Vectorizer, posts)
			result, err := evaluate.Evaluate(pipeline.Classifier, samples)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}

			fmt.Printf("Model: %s\n", result.Model)
			fmt.Printf("Samples: %d\n", len(samples))
			fmt.Printf("Accuracy: %.2f%%\n\n", result.Accuracy*percent)
			renderClassMetrics(result)
			fmt.Println()
			renderConfusion(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "path to the saved model (default from config)")
	cmd.Flags().StringSliceVarP(&labels, "labels", "l", nil, "restrict evaluation to these subreddits (default: all)")
	cmd.Flags().BoolVar(&testOnly, "test-only", false, "score only the held-out test split")

	return cmd
}

// renderClassMetrics prints per-class precision, recall and F1.
func renderClassMetrics(result *evaluate.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Class", "Precision", "Recall", "F1", "Support"})
	for _, class := range result.Classes {
		t.AppendRow(table.Row{
			class.Label,
			fmt.Sprintf("%.3f", class.Precision),
			fmt.Sprintf("%.3f", class.Recall),
			fmt.Sprintf("%.3f", class.F1),
			class.Support,
		})
	}
	t.Render()
}

// renderConfusion prints the confusion matrix, actual labels as rows.
func renderConfusion(result *evaluate.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)

	header := table.Row{"Actual \\ Predicted"}
	for _, label := range result.Labels {
		header = append(header, label)
	}
	t.AppendHeader(header)

	for _, actual := range result.Labels {
		row := table.Row{actual}
		for _, predicted := range result.Labels {
			row = append(row, result.Confusion[actual][predicted])
		}
		t.AppendRow(row)
	}
	t.Render()
}
