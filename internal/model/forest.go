package model

import (
	"math/rand"

	"github.com/jonesrussell/subsift/internal/domain"
)

// ForestName identifies the random forest model.
const ForestName = "random-forest"

// Forest is a random forest of CART trees over sparse term vectors.
// Bootstrap sampling and per-split feature subsampling decorrelate the
// trees; prediction is a majority vote. The Seed makes training
// reproducible.
type Forest struct {
	Trees    int   `json:"trees"`
	MaxDepth int   `json:"max_depth"`
	MinLeaf  int   `json:"min_leaf"`
	Seed     int64 `json:"seed"`

	Grown  []*treeNode `json:"grown,omitempty"`
	Labels []string    `json:"labels,omitempty"`
}

// ForestOptions parameterize forest training.
type ForestOptions struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
	Seed     int64
}

// NewForest creates an unfitted forest.
func NewForest(opts ForestOptions) *Forest {
	if opts.Trees <= 0 {
		opts.Trees = 100
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 12
	}
	if opts.MinLeaf <= 0 {
		opts.MinLeaf = 2
	}
	return &Forest{
		Trees:    opts.Trees,
		MaxDepth: opts.MaxDepth,
		MinLeaf:  opts.MinLeaf,
		Seed:     opts.Seed,
	}
}

// Name identifies the model.
func (f *Forest) Name() string { return ForestName }

// Fit grows the forest from bootstrap samples.
func (f *Forest) Fit(samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	labels := labelSet(samples)
	if len(labels) < 2 {
		return ErrSingleClass
	}
	f.Labels = labels

	features := 0
	for i := range samples {
		for idx := range samples[i].Vector {
			if idx+1 > features {
				features = idx + 1
			}
		}
	}

	params := treeParams{
		maxDepth:    f.MaxDepth,
		minLeaf:     f.MinLeaf,
		featureSubs: sqrtFeatures(features),
		features:    features,
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.Grown = make([]*treeNode, f.Trees)
	for t := 0; t < f.Trees; t++ {
		// Bootstrap: sample n indices with replacement.
		indices := make([]int, len(samples))
		for i := range indices {
			indices[i] = rng.Intn(len(samples))
		}
		f.Grown[t] = buildTree(samples, indices, params, 0, rng)
	}
	return nil
}

// Predict takes the majority vote across trees. Vote shares are reported
// as scores.
func (f *Forest) Predict(sample Sample) (*domain.Prediction, error) {
	if len(f.Grown) == 0 {
		return nil, ErrNotFitted
	}

	votes := make(map[string]int, len(f.Labels))
	for _, tree := range f.Grown {
		if label := tree.predict(sample); label != "" {
			votes[label]++
		}
	}

	var best string
	var bestVotes int
	total := 0
	scores := make(map[string]float64, len(votes))
	for _, label := range f.Labels {
		total += votes[label]
	}
	for _, label := range f.Labels {
		if total > 0 {
			scores[label] = float64(votes[label]) / float64(total)
		}
		if votes[label] > bestVotes {
			best = label
			bestVotes = votes[label]
		}
	}
	if best == "" {
		best = f.Labels[0]
	}

	return &domain.Prediction{
		Label:  best,
		Scores: scores,
		Model:  ForestName,
	}, nil
}
