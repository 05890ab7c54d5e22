package model

import (
	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/textproc"
)

// Pipeline couples a fitted classifier with the text processing used to
// fit it, so raw titles can be classified end to end.
type Pipeline struct {
	Tokenizer  *textproc.Tokenizer
	Vectorizer *textproc.Vectorizer
	Classifier Classifier
}

// NewPipeline creates a pipeline around a fitted classifier.
func NewPipeline(vectorizer *textproc.Vectorizer, classifier Classifier) *Pipeline {
	return &Pipeline{
		Tokenizer:  textproc.NewTokenizer(),
		Vectorizer: vectorizer,
		Classifier: classifier,
	}
}

// MakeSample converts a raw title into a model sample.
func (p *Pipeline) MakeSample(title string) Sample {
	tokens := p.Tokenizer.Tokenize(title)
	return Sample{
		Tokens: tokens,
		Vector: p.Vectorizer.Vectorize(tokens),
	}
}

// PredictTitle classifies a raw title.
func (p *Pipeline) PredictTitle(title string) (*domain.Prediction, error) {
	return p.Classifier.Predict(p.MakeSample(title))
}

// BuildSamples converts labeled posts into model samples using the
// pipeline's tokenizer and vectorizer.
func BuildSamples(tokenizer *textproc.Tokenizer, vectorizer *textproc.Vectorizer, posts []domain.Post) []Sample {
	samples := make([]Sample, len(posts))
	for i := range posts {
		tokens := tokenizer.Tokenize(posts[i].Title)
		samples[i] = Sample{
			Tokens: tokens,
			Vector: vectorizer.Vectorize(tokens),
			Label:  posts[i].Subreddit,
		}
	}
	return samples
}
