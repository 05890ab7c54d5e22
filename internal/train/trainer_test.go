package train_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/model"
	"github.com/jonesrussell/subsift/internal/train"
)

// corpus builds a separable two-class dataset large enough for 5-fold
// cross-validation on the training split.
func corpus() []domain.Post {
	goTitles := []string{
		"Generics in the standard library",
		"Goroutine leaks and how to find them",
		"Profiling goroutine scheduling latency",
		"Error wrapping with errors package",
		"Context cancellation patterns for goroutine pools",
		"Table driven tests for goroutine code",
		"Channel select loops and goroutine shutdown",
		"Escape analysis and goroutine stacks",
		"Goroutine pools versus worker queues",
		"Benchmarking goroutine channel throughput",
	}
	rustTitles := []string{
		"Understanding the borrow checker",
		"Lifetimes explained with examples",
		"Borrow checker errors demystified",
		"Unsafe blocks and the borrow checker",
		"Lifetimes in async borrow contexts",
		"Trait objects and borrow semantics",
		"Borrow splitting for struct fields",
		"Lifetimes of borrowed iterators",
		"Interior mutability versus the borrow checker",
		"Borrowed slices and lifetimes in practice",
	}

	var posts []domain.Post
	for i, title := range goTitles {
		posts = append(posts, domain.Post{
			Subreddit: "golang", Title: title, ID: fmt.Sprintf("t3_go%d", i),
		})
	}
	for i, title := range rustTitles {
		posts = append(posts, domain.Post{
			Subreddit: "rust", Title: title, ID: fmt.Sprintf("t3_rs%d", i),
		})
	}
	return posts
}

func defaultOptions() train.Options {
	return train.Options{
		TestSplit:  0.25,
		Folds:      3,
		Seed:       42,
		MinDocFreq: 1,
		Alpha:      1.0,
		Trees:      20,
		MaxDepth:   8,
		MinLeaf:    1,
	}
}

func TestRun_SelectsWinnerAndFitsIt(t *testing.T) {
	trainer := train.New(defaultOptions(), logger.NewNoOp())
	report, err := trainer.Run(corpus())
	require.NoError(t, err)

	assert.Equal(t, 16, report.TrainSize)
	assert.Equal(t, 4, report.TestSize)
	require.Len(t, report.CrossVal, 4)

	// Results are ranked best first and the winner heads the list.
	assert.Equal(t, report.Winner, report.CrossVal[0].Model)
	for i := 1; i < len(report.CrossVal); i++ {
		assert.GreaterOrEqual(t, report.CrossVal[i-1].Mean, report.CrossVal[i].Mean)
	}

	// On a separable corpus every real model beats the majority baseline.
	assert.NotEqual(t, model.BaselineName, report.Winner)
	assert.Greater(t, report.Test.Accuracy, 0.5)

	// The returned pipeline is fitted and usable.
	prediction, err := report.Pipeline.PredictTitle("Fighting the borrow checker")
	require.NoError(t, err)
	assert.Equal(t, "rust", prediction.Label)
}

func TestRun_RestrictsCandidates(t *testing.T) {
	opts := defaultOptions()
	opts.Models = []string{model.NaiveBayesName, model.BaselineName}

	trainer := train.New(opts, logger.NewNoOp())
	report, err := trainer.Run(corpus())
	require.NoError(t, err)

	require.Len(t, report.CrossVal, 2)
	assert.Equal(t, model.NaiveBayesName, report.Winner)
}

func TestRun_UnknownModel(t *testing.T) {
	opts := defaultOptions()
	opts.Models = []string{"perceptron"}

	trainer := train.New(opts, logger.NewNoOp())
	_, err := trainer.Run(corpus())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestRun_Deterministic(t *testing.T) {
	first, err := train.New(defaultOptions(), logger.NewNoOp()).Run(corpus())
	require.NoError(t, err)
	second, err := train.New(defaultOptions(), logger.NewNoOp()).Run(corpus())
	require.NoError(t, err)

	assert.Equal(t, first.Winner, second.Winner)
	assert.InDelta(t, first.Test.Accuracy, second.Test.Accuracy, 0.0001)
}
