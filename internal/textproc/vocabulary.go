package textproc

import "sort"

// Vocabulary maps tokens to feature indices. It is built from training
// documents only; unknown tokens at prediction time are ignored.
type Vocabulary struct {
	Index map[string]int `json:"index"`
	Terms []string       `json:"terms"`
	// DocFreq counts, per term index, the number of documents containing
	// the term. Used for TF-IDF weighting.
	DocFreq []int `json:"doc_freq"`
	// Docs is the number of documents the vocabulary was built from.
	Docs int `json:"docs"`
}

// VocabularyOptions bound vocabulary growth.
type VocabularyOptions struct {
	// MinDocFreq drops terms appearing in fewer documents.
	MinDocFreq int
	// MaxTerms caps the vocabulary at the most frequent terms; zero means
	// no cap.
	MaxTerms int
}

// BuildVocabulary constructs a vocabulary from tokenized documents. Term
// ordering is deterministic: document frequency descending, then
// lexicographic.
func BuildVocabulary(docs [][]string, opts VocabularyOptions) *Vocabulary {
	if opts.MinDocFreq < 1 {
		opts.MinDocFreq = 1
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, token := range doc {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			df[token]++
		}
	}

	terms := make([]string, 0, len(df))
	for term, freq := range df {
		if freq >= opts.MinDocFreq {
			terms = append(terms, term)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if opts.MaxTerms > 0 && len(terms) > opts.MaxTerms {
		terms = terms[:opts.MaxTerms]
	}

	vocab := &Vocabulary{
		Index:   make(map[string]int, len(terms)),
		Terms:   terms,
		DocFreq: make([]int, len(terms)),
		Docs:    len(docs),
	}
	for i, term := range terms {
		vocab.Index[term] = i
		vocab.DocFreq[i] = df[term]
	}
	return vocab
}

// Size returns the number of terms in the vocabulary.
func (v *Vocabulary) Size() int {
	return len(v.Terms)
}
