package model

import (
	"math"

	"github.com/jonesrussell/subsift/internal/domain"
)

// NaiveBayesName identifies the multinomial Naive Bayes model.
const NaiveBayesName = "naive-bayes"

// NaiveBayes is a multinomial Naive Bayes classifier over sparse term
// vectors with Laplace smoothing. Exported fields make the fitted model
// JSON round-trippable.
type NaiveBayes struct {
	// Alpha is the Laplace smoothing parameter.
	Alpha float64 `json:"alpha"`
	// Features is the vocabulary size the model was fitted with.
	Features int `json:"features"`
	// Labels in training order.
	Labels []string `json:"labels"`
	// LogPrior per label.
	LogPrior map[string]float64 `json:"log_prior"`
	// LogLikelihood maps label -> feature index -> log P(term|label).
	// Sparse: absent features fall back to the label's smoothed floor.
	LogLikelihood map[string]map[int]float64 `json:"log_likelihood"`
	// UnseenLogProb is the smoothed log probability for features never
	// seen with a label.
	UnseenLogProb map[string]float64 `json:"unseen_log_prob"`
}

// NewNaiveBayes creates an unfitted model with the given smoothing.
func NewNaiveBayes(alpha float64) *NaiveBayes {
	if alpha <= 0 {
		alpha = 1.0
	}
	return &NaiveBayes{Alpha: alpha}
}

// Name identifies the model.
func (nb *NaiveBayes) Name() string { return NaiveBayesName }

// Fit estimates priors and per-term likelihoods from the samples.
func (nb *NaiveBayes) Fit(samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	labels := labelSet(samples)
	if len(labels) < 2 {
		return ErrSingleClass
	}

	features := 0
	classDocs := make(map[string]int, len(labels))
	termCounts := make(map[string]map[int]float64, len(labels))
	totalCounts := make(map[string]float64, len(labels))
	for _, label := range labels {
		termCounts[label] = make(map[int]float64)
	}

	for i := range samples {
		label := samples[i].Label
		classDocs[label]++
		for idx, count := range samples[i].Vector {
			termCounts[label][idx] += count
			totalCounts[label] += count
			if idx+1 > features {
				features = idx + 1
			}
		}
	}

	nb.Features = features
	nb.Labels = labels
	nb.LogPrior = make(map[string]float64, len(labels))
	nb.LogLikelihood = make(map[string]map[int]float64, len(labels))
	nb.UnseenLogProb = make(map[string]float64, len(labels))

	for _, label := range labels {
		nb.LogPrior[label] = math.Log(float64(classDocs[label]) / float64(len(samples)))

		denom := totalCounts[label] + nb.Alpha*float64(features)
		nb.UnseenLogProb[label] = math.Log(nb.Alpha / denom)

		likes := make(map[int]float64, len(termCounts[label]))
		for idx, count := range termCounts[label] {
			likes[idx] = math.Log((count + nb.Alpha) / denom)
		}
		nb.LogLikelihood[label] = likes
	}
	return nil
}

// Predict returns the label with the highest posterior probability.
// Scores are normalized posteriors computed via log-sum-exp.
func (nb *NaiveBayes) Predict(sample Sample) (*domain.Prediction, error) {
	if len(nb.Labels) == 0 {
		return nil, ErrNotFitted
	}

	logScores := make(map[string]float64, len(nb.Labels))
	var best string
	bestScore := math.Inf(-1)
	for _, label := range nb.Labels {
		score := nb.LogPrior[label]
		likes := nb.LogLikelihood[label]
		for idx, count := range sample.Vector {
			if idx >= nb.Features {
				continue // token unseen at fit time
			}
			logProb, ok := likes[idx]
			if !ok {
				logProb = nb.UnseenLogProb[label]
			}
			score += count * logProb
		}
		logScores[label] = score
		if score > bestScore {
			best = label
			bestScore = score
		}
	}

	var total float64
	for _, score := range logScores {
		total += math.Exp(score - bestScore)
	}
	logTotal := bestScore + math.Log(total)

	scores := make(map[string]float64, len(logScores))
	for label, score := range logScores {
		scores[label] = math.Exp(score - logTotal)
	}

	return &domain.Prediction{
		Label:  best,
		Scores: scores,
		Model:  NaiveBayesName,
	}, nil
}
