package domain

// Prediction is the result of classifying a single title.
type Prediction struct {
	Label string `json:"label"`
	// Scores holds the per-label score used to pick the winner. For
	// probabilistic models these are log-space or normalized scores;
	// callers should only rely on their ordering.
	Scores map[string]float64 `json:"scores,omitempty"`
	Model  string             `json:"model"`
}
