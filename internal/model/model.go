// Package model implements the classifiers trained over title text: a
// majority-class baseline, an Aho-Corasick keyword-rule model, multinomial
// Naive Bayes and a random forest. All models share one interface so the
// training command can fit, cross-validate and compare them uniformly.
package model

import (
	"errors"

	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/textproc"
)

// Training errors shared by all models.
var (
	ErrNotFitted   = errors.New("model has not been fitted")
	ErrNoSamples   = errors.New("no training samples")
	ErrSingleClass = errors.New("training data contains a single class")
)

// Sample is one labeled document in both token and vector form. Keeping
// both lets token-based models (rules) and vector-based models (NB, forest)
// share the same training pipeline.
type Sample struct {
	Tokens []string
	Vector textproc.Vector
	Label  string
}

// Classifier is the common interface for all title classifiers.
type Classifier interface {
	// Name identifies the model in reports and saved files.
	Name() string
	// Fit trains the model on the given samples.
	Fit(samples []Sample) error
	// Predict classifies a single document.
	Predict(sample Sample) (*domain.Prediction, error)
}

// labelSet returns the distinct labels in training order.
func labelSet(samples []Sample) []string {
	seen := make(map[string]struct{})
	var labels []string
	for i := range samples {
		if _, ok := seen[samples[i].Label]; !ok {
			seen[samples[i].Label] = struct{}{}
			labels = append(labels, samples[i].Label)
		}
	}
	return labels
}

// majorityLabel returns the most frequent label; ties go to the label seen
// first.
func majorityLabel(samples []Sample) string {
	counts := make(map[string]int)
	var best string
	var bestCount int
	for i := range samples {
		counts[samples[i].Label]++
		if counts[samples[i].Label] > bestCount {
			best = samples[i].Label
			bestCount = counts[samples[i].Label]
		}
	}
	return best
}
