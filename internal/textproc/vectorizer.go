package textproc

import "math"

// Vector is a sparse feature vector: term index to weight.
type Vector map[int]float64

// Vectorizer converts token sequences into sparse vectors over a fixed
// vocabulary.
type Vectorizer struct {
	Vocab *Vocabulary `json:"vocab"`
	// TFIDF enables inverse-document-frequency weighting; otherwise raw
	// term counts are emitted.
	TFIDF bool `json:"tfidf"`
}

// NewVectorizer creates a vectorizer over the given vocabulary.
func NewVectorizer(vocab *Vocabulary, tfidf bool) *Vectorizer {
	return &Vectorizer{Vocab: vocab, TFIDF: tfidf}
}

// Vectorize converts one tokenized document. Tokens outside the vocabulary
// are dropped.
func (v *Vectorizer) Vectorize(doc []string) Vector {
	vec := make(Vector)
	for _, token := range doc {
		if idx, ok := v.Vocab.Index[token]; ok {
			vec[idx]++
		}
	}
	if v.TFIDF {
		for idx, tf := range vec {
			vec[idx] = tf * v.idf(idx)
		}
	}
	return vec
}

// VectorizeAll converts a batch of documents.
func (v *Vectorizer) VectorizeAll(docs [][]string) []Vector {
	vecs := make([]Vector, len(docs))
	for i, doc := range docs {
		vecs[i] = v.Vectorize(doc)
	}
	return vecs
}

// idf computes smoothed inverse document frequency for a term index.
func (v *Vectorizer) idf(idx int) float64 {
	// Add-one smoothing keeps weights finite for terms present in every
	// document.
	return math.Log(float64(1+v.Vocab.Docs)/float64(1+v.Vocab.DocFreq[idx])) + 1
}
