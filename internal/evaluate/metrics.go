// Package evaluate computes model quality metrics: held-out accuracy,
// per-class precision/recall/F1, confusion matrices and stratified k-fold
// cross-validation.
package evaluate

import (
	"fmt"
	"sort"

	"github.com/jonesrussell/subsift/internal/model"
)

// ClassMetrics holds per-class precision, recall and F1.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Result is the outcome of evaluating one model on a labeled set.
type Result struct {
	Model    string         `json:"model"`
	Accuracy float64        `json:"accuracy"`
	Classes  []ClassMetrics `json:"classes"`
	// Confusion maps actual label -> predicted label -> count.
	Confusion map[string]map[string]int `json:"confusion"`
	// Labels is the sorted label set, for stable confusion rendering.
	Labels []string `json:"labels"`
}

// Evaluate runs the classifier over the samples and computes metrics.
func Evaluate(classifier model.Classifier, samples []model.Sample) (*Result, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("evaluation set is empty")
	}

	labelIndex := make(map[string]struct{})
	confusion := make(map[string]map[string]int)
	correct := 0

	for i := range samples {
		pred, err := classifier.Predict(samples[i])
		if err != nil {
			return nil, fmt.Errorf("prediction failed: %w", err)
		}

		actual := samples[i].Label
		labelIndex[actual] = struct{}{}
		labelIndex[pred.Label] = struct{}{}
		if confusion[actual] == nil {
			confusion[actual] = make(map[string]int)
		}
		confusion[actual][pred.Label]++
		if pred.Label == actual {
			correct++
		}
	}

	labels := make([]string, 0, len(labelIndex))
	for label := range labelIndex {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	result := &Result{
		Model:     classifier.Name(),
		Accuracy:  float64(correct) / float64(len(samples)),
		Confusion: confusion,
		Labels:    labels,
	}

	for _, label := range labels {
		var tp, fp, fn int
		for _, actual := range labels {
			for _, predicted := range labels {
				count := confusion[actual][predicted]
				switch {
				case actual == label && predicted == label:
					tp += count
				case actual != label && predicted == label:
					fp += count
				case actual == label && predicted != label:
					fn += count
				}
			}
		}

		metrics := ClassMetrics{Label: label, Support: tp + fn}
		if tp+fp > 0 {
			metrics.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			metrics.Recall = float64(tp) / float64(tp+fn)
		}
		if metrics.Precision+metrics.Recall > 0 {
			metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
		}
		result.Classes = append(result.Classes, metrics)
	}

	return result, nil
}
