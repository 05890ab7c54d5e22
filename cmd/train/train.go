// Package train implements the train command for fitting and selecting
// subreddit classifiers.
package train

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/subsift/cmd/common"
	"github.com/jonesrussell/subsift/internal/dataset"
	"github.com/jonesrussell/subsift/internal/evaluate"
	"github.com/jonesrussell/subsift/internal/model"
	"github.com/jonesrussell/subsift/internal/train"
)

const percent = 100

// Command returns the train command for use in the root command.
func Command() *cobra.Command {
	var (
		models []string
		labels []string
		noSave bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and select a subreddit classifier",
		Long: `Train splits the dataset into training and test sets, cross-validates
each candidate model on the training split, fits the best one and
reports its accuracy on the held-out test set against the majority
baseline. The fitted model is saved for the classify command and the
HTTP API.

Candidates: majority-baseline, keyword-rules, naive-bayes, random-forest.`,
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
			posts = dataset.Filter(posts, labels)

			cfg := deps.Config.GetTrainingConfig()
			trainer := train.New(train.Options{
				TestSplit:  cfg.TestSplit,
				Folds:      cfg.Folds,
				Seed:       cfg.Seed,
				MinDocFreq: cfg.MinDocFreq,
				MaxVocab:   cfg.MaxVocab,
				TFIDF:      cfg.TFIDF,
				Alpha:      cfg.Alpha,
				Trees:      cfg.Trees,
				MaxDepth:   cfg.MaxDepth,
				MinLeaf:    cfg.MinLeaf,
				Models:     models,
			}, deps.Logger)

			report, err := trainer.Run(posts)
			if err != nil {
				return err
			}

			renderReport(report)

			if noSave {
				return nil
			}
			if err = model.Save(cfg.ModelPath, report.Pipeline); err != nil {
				return fmt.Errorf("failed to save model: %w", err)
			}
			fmt.Printf("\nSaved %s to %s\n", report.Winner, cfg.ModelPath)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&models, "models", "m", nil, "candidate models to compare (default: all)")
	cmd.Flags().StringSliceVarP(&labels, "labels", "l", nil, "restrict training to these subreddits (default: all)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "skip saving the winning model")

	return cmd
}

// renderReport prints the cross-validation comparison and test metrics.
func renderReport(report *train.Report) {
	fmt.Printf("Training samples: %d, test samples: %d, vocabulary: %d terms\n\n",
		report.TrainSize, report.TestSize, report.VocabularySize)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Model", "CV Mean Accuracy", "CV Std Dev", "Folds"})
	for _, result := range report.CrossVal {
		t.AppendRow(table.Row{
			result.Model,
			fmt.Sprintf("%.2f%%", result.Mean*percent),
			fmt.Sprintf("%.4f", result.StdDev),
			result.Folds,
		})
	}
	t.Render()

	fmt.Printf("\nWinner: %s\n", report.Winner)
	fmt.Printf("Held-out test accuracy: %.2f%%\n\n", report.Test.Accuracy*percent)
	renderClassMetrics(report.Test)
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
