package model

import "github.com/jonesrussell/subsift/internal/domain"

// BaselineName identifies the majority-class model.
const BaselineName = "majority-baseline"

// Baseline always predicts the majority training label. Its accuracy is
// the floor every real model has to beat.
type Baseline struct {
	Majority string             `json:"majority"`
	Shares   map[string]float64 `json:"shares"`
}

// NewBaseline creates an unfitted baseline model.
func NewBaseline() *Baseline {
	return &Baseline{}
}

// Name identifies the model.
func (b *Baseline) Name() string { return BaselineName }

// Fit records the majority label and class shares.
func (b *Baseline) Fit(samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}

	counts := make(map[string]int)
	for i := range samples {
		counts[samples[i].Label]++
	}
	b.Shares = make(map[string]float64, len(counts))
	for label, count := range counts {
		b.Shares[label] = float64(count) / float64(len(samples))
	}
	b.Majority = majorityLabel(samples)
	return nil
}

// Predict returns the majority label regardless of input.
func (b *Baseline) Predict(_ Sample) (*domain.Prediction, error) {
	if b.Majority == "" {
		return nil, ErrNotFitted
	}
	return &domain.Prediction{
		Label:  b.Majority,
		Scores: b.Shares,
		Model:  BaselineName,
	}, nil
}
