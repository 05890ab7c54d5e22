// Package textproc turns post titles into token and vector representations
// for model training. Tokenization is deliberately simple: Unicode
// normalization, lowercasing, letter/digit runs, stopword and short-token
// removal.
package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// minTokenLength drops one-character tokens, which carry no signal in
// title classification.
const minTokenLength = 2

// Tokenizer splits titles into normalized tokens.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a tokenizer with the default English stopword list.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{stopwords: defaultStopwords()}
}

// Tokenize converts a title to its token sequence.
func (t *Tokenizer) Tokenize(title string) []string {
	normalized := norm.NFKC.String(title)
	lowered := strings.ToLower(normalized)

	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) < minTokenLength {
			continue
		}
		if _, stop := t.stopwords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// TokenizeAll tokenizes a batch of titles.
func (t *Tokenizer) TokenizeAll(titles []string) [][]string {
	docs := make([][]string, len(titles))
	for i, title := range titles {
		docs[i] = t.Tokenize(title)
	}
	return docs
}
