package evaluate

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jonesrussell/subsift/internal/model"
)

// CrossValResult summarizes k-fold cross-validation of one model.
type CrossValResult struct {
	Model      string    `json:"model"`
	Folds      int       `json:"folds"`
	Accuracies []float64 `json:"accuracies"`
	Mean       float64   `json:"mean"`
	StdDev     float64   `json:"std_dev"`
}

// ModelFactory builds a fresh, unfitted model per fold so folds never
// share state.
type ModelFactory func() model.Classifier

// CrossValidate runs stratified k-fold cross-validation. Fold assignment
// is seeded and stratified by label so each fold mirrors class balance.
func CrossValidate(factory ModelFactory, samples []model.Sample, folds int, seed int64) (*CrossValResult, error) {
	if folds < 2 {
		return nil, fmt.Errorf("cross-validation needs at least 2 folds, got %d", folds)
	}
	if len(samples) < folds {
		return nil, fmt.Errorf("cannot split %d samples into %d folds", len(samples), folds)
	}

	assignments := stratifiedFolds(samples, folds, seed)

	accuracies := make([]float64, 0, folds)
	for fold := 0; fold < folds; fold++ {
		var train, test []model.Sample
		for i := range samples {
			if assignments[i] == fold {
				test = append(test, samples[i])
			} else {
				train = append(train, samples[i])
			}
		}
		if len(test) == 0 {
			continue
		}

		classifier := factory()
		if err := classifier.Fit(train); err != nil {
			return nil, fmt.Errorf("fold %d fit failed: %w", fold, err)
		}

		result, err := Evaluate(classifier, test)
		if err != nil {
			return nil, fmt.Errorf("fold %d evaluation failed: %w", fold, err)
		}
		accuracies = append(accuracies, result.Accuracy)
	}

	mean := stat.Mean(accuracies, nil)
	stdDev := 0.0
	if len(accuracies) > 1 {
		stdDev = stat.StdDev(accuracies, nil)
	}

	name := factory().Name()
	return &CrossValResult{
		Model:      name,
		Folds:      folds,
		Accuracies: accuracies,
		Mean:       mean,
		StdDev:     stdDev,
	}, nil
}

// stratifiedFolds assigns each sample index a fold, round-robin within a
// shuffled per-label group.
func stratifiedFolds(samples []model.Sample, folds int, seed int64) []int {
	byLabel := make(map[string][]int)
	for i := range samples {
		byLabel[samples[i].Label] = append(byLabel[samples[i].Label], i)
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(seed))
	assignments := make([]int, len(samples))
	for _, label := range labels {
		group := byLabel[label]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		for pos, idx := range group {
			assignments[idx] = pos % folds
		}
	}
	return assignments
}

// Comparison ranks cross-validation results: best mean accuracy first,
// lower variance breaking ties.
func Comparison(results []*CrossValResult) []*CrossValResult {
	ranked := make([]*CrossValResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Mean != ranked[j].Mean {
			return ranked[i].Mean > ranked[j].Mean
		}
		return ranked[i].StdDev < ranked[j].StdDev
	})
	return ranked
}
