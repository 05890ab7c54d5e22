package model

import (
	"math"
	"math/rand"
	"sort"
)

// treeNode is one node of a CART decision tree. Internal nodes split on a
// single feature against a threshold; leaves carry a label.
type treeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Label     string    `json:"label,omitempty"`
	Leaf      bool      `json:"leaf"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// treeParams bound tree growth.
type treeParams struct {
	maxDepth    int
	minLeaf     int
	featureSubs int // features sampled per split
	features    int // total feature count
}

// buildTree grows a tree on the sample indices using the provided RNG for
// feature subsampling.
func buildTree(samples []Sample, indices []int, params treeParams, depth int, rng *rand.Rand) *treeNode {
	if len(indices) == 0 {
		return &treeNode{Leaf: true}
	}

	label, pure := majorityAt(samples, indices)
	if pure || depth >= params.maxDepth || len(indices) <= params.minLeaf {
		return &treeNode{Leaf: true, Label: label}
	}

	feature, threshold, ok := bestSplit(samples, indices, params, rng)
	if !ok {
		return &treeNode{Leaf: true, Label: label}
	}

	var left, right []int
	for _, idx := range indices {
		if samples[idx].Vector[feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Leaf: true, Label: label}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(samples, left, params, depth+1, rng),
		Right:     buildTree(samples, right, params, depth+1, rng),
	}
}

// predictTree walks the tree for one sample.
func (n *treeNode) predict(sample Sample) string {
	node := n
	for !node.Leaf {
		if sample.Vector[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Label
}

// majorityAt returns the majority label among the indices and whether the
// set is single-class.
func majorityAt(samples []Sample, indices []int) (label string, pure bool) {
	counts := make(map[string]int)
	var best string
	var bestCount int
	for _, idx := range indices {
		l := samples[idx].Label
		counts[l]++
		if counts[l] > bestCount {
			best = l
			bestCount = counts[l]
		}
	}
	return best, len(counts) == 1
}

// bestSplit searches a random feature subset for the split minimizing
// weighted Gini impurity. Titles produce sparse binary-ish count features,
// so the candidate threshold is presence (0.5) plus observed midpoints for
// weighted vectors.
func bestSplit(samples []Sample, indices []int, params treeParams, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	parentGini := giniAt(samples, indices)
	bestGain := 1e-9
	candidates := sampleFeatures(samples, indices, params, rng)

	for _, f := range candidates {
		for _, th := range thresholdsFor(samples, indices, f) {
			var left, right []int
			for _, idx := range indices {
				if samples[idx].Vector[f] <= th {
					left = append(left, idx)
				} else {
					right = append(right, idx)
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			n := float64(len(indices))
			weighted := float64(len(left))/n*giniAt(samples, left) +
				float64(len(right))/n*giniAt(samples, right)
			if gain := parentGini - weighted; gain > bestGain {
				bestGain = gain
				feature = f
				threshold = th
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// sampleFeatures picks sqrt-sized random subset of features present in the
// node's samples; splitting on globally absent features is pointless.
func sampleFeatures(samples []Sample, indices []int, params treeParams, rng *rand.Rand) []int {
	present := make(map[int]struct{})
	for _, idx := range indices {
		for f := range samples[idx].Vector {
			present[f] = struct{}{}
		}
	}
	features := make([]int, 0, len(present))
	for f := range present {
		features = append(features, f)
	}
	sort.Ints(features) // deterministic order before shuffling

	k := params.featureSubs
	if k <= 0 || k > len(features) {
		k = len(features)
	}
	rng.Shuffle(len(features), func(i, j int) {
		features[i], features[j] = features[j], features[i]
	})
	return features[:k]
}

// thresholdsFor returns candidate thresholds for a feature: presence plus
// midpoints between distinct observed values (capped, values sorted).
func thresholdsFor(samples []Sample, indices []int, feature int) []float64 {
	const maxThresholds = 4

	values := make(map[float64]struct{})
	for _, idx := range indices {
		values[samples[idx].Vector[feature]] = struct{}{}
	}
	if len(values) <= 1 {
		return nil
	}

	sorted := make([]float64, 0, len(values))
	for v := range values {
		sorted = append(sorted, v)
	}
	sort.Float64s(sorted)

	thresholds := make([]float64, 0, maxThresholds)
	for i := 0; i+1 < len(sorted) && len(thresholds) < maxThresholds; i++ {
		thresholds = append(thresholds, (sorted[i]+sorted[i+1])/2)
	}
	return thresholds
}

// giniAt computes Gini impurity over the indices.
func giniAt(samples []Sample, indices []int) float64 {
	counts := make(map[string]int)
	for _, idx := range indices {
		counts[samples[idx].Label]++
	}
	n := float64(len(indices))
	impurity := 1.0
	for _, count := range counts {
		p := float64(count) / n
		impurity -= p * p
	}
	return impurity
}

// sqrtFeatures is the conventional per-split feature budget.
func sqrtFeatures(total int) int {
	if total <= 1 {
		return total
	}
	return int(math.Sqrt(float64(total))) + 1
}
