package textproc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/subsift/internal/textproc"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tok := textproc.NewTokenizer()

	testCases := []struct {
		name     string
		title    string
		expected []string
	}{
		{
			name:     "lowercases and splits on punctuation",
			title:    "Go 1.25 Released: What's New?",
			expected: []string{"go", "25", "released", "new"},
		},
		{
			name:     "drops stopwords and single characters",
			title:    "Why I think the borrow checker is a good idea",
			expected: []string{"think", "borrow", "checker", "good", "idea"},
		},
		{
			name:     "handles unicode titles",
			title:    "Résumé parsing in Go — ﬁnally solved",
			expected: []string{"résumé", "parsing", "go", "finally", "solved"},
		},
		{
			name:     "empty title",
			title:    "",
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tok.Tokenize(tc.title))
		})
	}
}

func TestBuildVocabulary(t *testing.T) {
	docs := [][]string{
		{"go", "generics", "go"},
		{"go", "channels"},
		{"rust", "channels"},
	}

	vocab := textproc.BuildVocabulary(docs, textproc.VocabularyOptions{MinDocFreq: 2})

	// "go" and "channels" each appear in two documents; the rest are cut.
	require.Equal(t, 2, vocab.Size())
	assert.Contains(t, vocab.Index, "go")
	assert.Contains(t, vocab.Index, "channels")
	assert.NotContains(t, vocab.Index, "generics")
	assert.Equal(t, 3, vocab.Docs)
}

func TestBuildVocabulary_MaxTerms(t *testing.T) {
	docs := [][]string{
		{"alpha", "beta", "gamma"},
		{"alpha", "beta"},
		{"alpha"},
	}

	vocab := textproc.BuildVocabulary(docs, textproc.VocabularyOptions{MinDocFreq: 1, MaxTerms: 2})

	require.Equal(t, 2, vocab.Size())
	// Highest document frequency first.
	assert.Equal(t, "alpha", vocab.Terms[0])
	assert.Equal(t, "beta", vocab.Terms[1])
}

func TestVectorizer_Counts(t *testing.T) {
	vocab := textproc.BuildVocabulary([][]string{{"go", "rust"}}, textproc.VocabularyOptions{})
	vec := textproc.NewVectorizer(vocab, false).Vectorize([]string{"go", "go", "unknown"})

	require.Len(t, vec, 1)
	assert.InDelta(t, 2.0, vec[vocab.Index["go"]], 1e-9)
}

func TestVectorizer_TFIDF(t *testing.T) {
	docs := [][]string{
		{"go", "common"},
		{"rust", "common"},
	}
	vocab := textproc.BuildVocabulary(docs, textproc.VocabularyOptions{})
	vectorizer := textproc.NewVectorizer(vocab, true)

	vec := vectorizer.Vectorize([]string{"go", "common"})
	// "common" appears in every document, so its weight must be below the
	// rarer "go".
	assert.Less(t, vec[vocab.Index["common"]], vec[vocab.Index["go"]])
}
