package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/jonesrussell/subsift/internal/textproc"
)

// FormatVersion guards saved model files against incompatible readers.
const FormatVersion = 1

// savedModel is the on-disk envelope for a fitted pipeline.
type savedModel struct {
	FormatVersion int                  `json:"format_version"`
	ModelName     string               `json:"model_name"`
	CreatedAt     time.Time            `json:"created_at"`
	Vectorizer    *textproc.Vectorizer `json:"vectorizer"`
	Payload       json.RawMessage      `json:"payload"`
}

// Save writes a fitted pipeline to path as JSON.
func Save(path string, pipeline *Pipeline) error {
	payload, err := json.Marshal(pipeline.Classifier)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	envelope := savedModel{
		FormatVersion: FormatVersion,
		ModelName:     pipeline.Classifier.Name(),
		CreatedAt:     time.Now().UTC(),
		Vectorizer:    pipeline.Vectorizer,
		Payload:       payload,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model file: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Load reads a saved pipeline from path.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var envelope savedModel
	if err = json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}
	if envelope.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported model format version %d", envelope.FormatVersion)
	}
	if envelope.Vectorizer == nil || envelope.Vectorizer.Vocab == nil {
		return nil, fmt.Errorf("model file %s has no vectorizer", path)
	}

	classifier, err := newByName(envelope.ModelName)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(envelope.Payload, classifier); err != nil {
		return nil, fmt.Errorf("failed to parse %s payload: %w", envelope.ModelName, err)
	}

	return NewPipeline(envelope.Vectorizer, classifier), nil
}

// newByName returns an empty classifier for a saved model name.
func newByName(name string) (Classifier, error) {
	switch name {
	case BaselineName:
		return &Baseline{}, nil
	case RulesName:
		return &RuleClassifier{}, nil
	case NaiveBayesName:
		return &NaiveBayes{}, nil
	case ForestName:
		return &Forest{}, nil
	default:
		return nil, fmt.Errorf("unknown model name %q", name)
	}
}
