package dataset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/subsift/internal/dataset"
	"github.com/jonesrussell/subsift/internal/domain"
)

func TestComputeStats(t *testing.T) {
	posts := []domain.Post{
		post("golang", "Go modules explained", "t3_a"),
		post("golang", "Generics in practice", "t3_b"),
		post("golang", "Error handling", "t3_c"),
		post("rust", "Lifetimes", "t3_d"),
	}

	stats, err := dataset.ComputeStats(posts)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	require.Len(t, stats.Labels, 2)
	assert.Equal(t, "golang", stats.MajorityLabel)
	assert.InDelta(t, 0.75, stats.BaselineAccuracy, 1e-9)
	assert.Equal(t, "golang", stats.Labels[0].Label)
	assert.Equal(t, 3, stats.Labels[0].Count)
	assert.Positive(t, stats.MeanTitleChars)
	assert.Positive(t, stats.MeanTitleTokens)
}

func TestComputeStats_Empty(t *testing.T) {
	stats, err := dataset.ComputeStats(nil)
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)
	assert.Nil(t, stats)
}

func TestSplit_Stratified(t *testing.T) {
	var posts []domain.Post
	for i := 0; i < 80; i++ {
		posts = append(posts, post("golang", "go title", idFor("g", i)))
	}
	for i := 0; i < 20; i++ {
		posts = append(posts, post("rust", "rust title", idFor("r", i)))
	}

	train, test, err := dataset.Split(posts, 0.25, 42)
	require.NoError(t, err)
	assert.Len(t, test, 25)
	assert.Len(t, train, 75)

	// Each label keeps its share on both sides.
	assert.Equal(t, 20, countLabel(test, "golang"))
	assert.Equal(t, 5, countLabel(test, "rust"))
	assert.Equal(t, 60, countLabel(train, "golang"))
	assert.Equal(t, 15, countLabel(train, "rust"))
}

func TestSplit_Deterministic(t *testing.T) {
	var posts []domain.Post
	for i := 0; i < 40; i++ {
		posts = append(posts, post("golang", "title", idFor("g", i)))
	}

	train1, test1, err := dataset.Split(posts, 0.25, 7)
	require.NoError(t, err)
	train2, test2, err := dataset.Split(posts, 0.25, 7)
	require.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
}

func TestSplit_Empty(t *testing.T) {
	_, _, err := dataset.Split(nil, 0.25, 1)
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)
}

func TestFilter(t *testing.T) {
	posts := []domain.Post{
		post("golang", "a", "t3_a"),
		post("rust", "b", "t3_b"),
		post("python", "c", "t3_c"),
	}

	filtered := dataset.Filter(posts, []string{"golang", "rust"})
	assert.Len(t, filtered, 2)

	assert.Len(t, dataset.Filter(posts, nil), 3)
}

func idFor(prefix string, i int) string {
	return "t3_" + prefix + string(rune('a'+i%26)) + string(rune('a'+i/26))
}

func countLabel(posts []domain.Post, label string) int {
	var n int
	for _, p := range posts {
		if p.Subreddit == label {
			n++
		}
	}
	return n
}
