// Package train orchestrates model selection: split the dataset, cross-
// validate each candidate classifier, fit the winner and score it on the
// held-out test set.
package train

import (
	"fmt"

	"github.com/jonesrussell/subsift/internal/dataset"
	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/evaluate"
	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/model"
	"github.com/jonesrussell/subsift/internal/textproc"
)

// Options parameterize a training run.
type Options struct {
	TestSplit  float64
	Folds      int
	Seed       int64
	MinDocFreq int
	MaxVocab   int
	TFIDF      bool
	// Alpha is the Naive Bayes smoothing parameter.
	Alpha float64
	// Trees, MaxDepth and MinLeaf parameterize the random forest.
	Trees    int
	MaxDepth int
	MinLeaf  int
	// Models restricts the candidate set; empty means all candidates.
	Models []string
}

// Report is the outcome of a training run.
type Report struct {
	TrainSize      int
	TestSize       int
	VocabularySize int
	// CrossVal holds per-candidate cross-validation results, best first.
	CrossVal []*evaluate.CrossValResult
	// Winner is the candidate with the best mean cross-validation accuracy.
	Winner string
	// Test is the winner's performance on the held-out test set.
	Test *evaluate.Result
	// Pipeline is the winner fitted on the full training split.
	Pipeline *model.Pipeline
}

// Trainer runs training over a dataset.
type Trainer struct {
	opts Options
	log  logger.Interface
}

// New creates a trainer.
func New(opts Options, log logger.Interface) *Trainer {
	return &Trainer{opts: opts, log: log}
}

// candidate pairs a model name with its factory.
type candidate struct {
	name    string
	factory evaluate.ModelFactory
}

// candidates returns the models to cross-validate, in a fixed order so
// ranking ties resolve the same way on every run.
func (t *Trainer) candidates() ([]candidate, error) {
	all := []candidate{
		{model.BaselineName, func() model.Classifier { return model.NewBaseline() }},
		{model.RulesName, func() model.Classifier {
			return model.NewRuleClassifier(model.DefaultKeywordsPerLabel)
		}},
		{model.NaiveBayesName, func() model.Classifier { return model.NewNaiveBayes(t.opts.Alpha) }},
		{model.ForestName, func() model.Classifier {
			return model.NewForest(model.ForestOptions{
				Trees:    t.opts.Trees,
				MaxDepth: t.opts.MaxDepth,
				MinLeaf:  t.opts.MinLeaf,
				Seed:     t.opts.Seed,
			})
		}},
	}
	if len(t.opts.Models) == 0 {
		return all, nil
	}

	picked := make([]candidate, 0, len(t.opts.Models))
	for _, name := range t.opts.Models {
		found := false
		for _, c := range all {
			if c.name == name {
				picked = append(picked, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown model %q", name)
		}
	}
	return picked, nil
}

// Run executes the full training flow over labeled posts.
func (t *Trainer) Run(posts []domain.Post) (*Report, error) {
	trainPosts, testPosts, err := dataset.Split(posts, t.opts.TestSplit, t.opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split dataset: %w", err)
	}

	tokenizer := textproc.NewTokenizer()
	docs := make([][]string, len(trainPosts))
	for i := range trainPosts {
		docs[i] = tokenizer.Tokenize(trainPosts[i].Title)
	}
	// The vocabulary is built from the training split only, so test scores
	// are not inflated by test-set terms.
	vocab := textproc.BuildVocabulary(docs, textproc.VocabularyOptions{
		MinDocFreq: t.opts.MinDocFreq,
		MaxTerms:   t.opts.MaxVocab,
	})
	vectorizer := textproc.NewVectorizer(vocab, t.opts.TFIDF)

	trainSamples := model.BuildSamples(tokenizer, vectorizer, trainPosts)
	testSamples := model.BuildSamples(tokenizer, vectorizer, testPosts)

	t.log.Info("Training split ready",
		"train", len(trainSamples),
		"test", len(testSamples),
		"vocabulary", len(vocab.Terms),
	)

	cands, err := t.candidates()
	if err != nil {
		return nil, err
	}

	results := make([]*evaluate.CrossValResult, 0, len(cands))
	for _, c := range cands {
		result, cvErr := evaluate.CrossValidate(c.factory, trainSamples, t.opts.Folds, t.opts.Seed)
		if cvErr != nil {
			return nil, fmt.Errorf("cross-validation of %s failed: %w", c.name, cvErr)
		}
		t.log.Info("Cross-validation complete",
			"model", c.name,
			"mean_accuracy", result.Mean,
			"std_dev", result.StdDev,
		)
		results = append(results, result)
	}
	ranked := evaluate.Comparison(results)
	winner := ranked[0].Model

	var classifier model.Classifier
	for _, c := range cands {
		if c.name == winner {
			classifier = c.factory()
			break
		}
	}
	if err = classifier.Fit(trainSamples); err != nil {
		return nil, fmt.Errorf("failed to fit %s: %w", winner, err)
	}

	testResult, err := evaluate.Evaluate(classifier, testSamples)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", winner, err)
	}

	return &Report{
		TrainSize:      len(trainSamples),
		TestSize:       len(testSamples),
		VocabularySize: len(vocab.Terms),
		CrossVal:       ranked,
		Winner:         winner,
		Test:           testResult,
		Pipeline:       model.NewPipeline(vectorizer, classifier),
	}, nil
}
