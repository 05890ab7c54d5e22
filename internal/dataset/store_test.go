package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/subsift/internal/dataset"
	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/logger"
)

func newTestStore(t *testing.T) *dataset.Store {
	t.Helper()
	return dataset.NewStore(filepath.Join(t.TempDir(), "subreddit_data.csv"), logger.NewNoOp())
}

func post(sub, title, id string) domain.Post {
	return domain.Post{Subreddit: sub, Title: title, ID: id}
}

func TestStore_Load_MissingFile(t *testing.T) {
	store := newTestStore(t)

	posts, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestStore_AppendAndLoad(t *testing.T) {
	store := newTestStore(t)

	added, total, err := store.Append([]domain.Post{
		post("golang", "Go 1.25 released", "t3_aaa"),
		post("rust", "Borrow checker tips", "t3_bbb"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, total)

	posts, err := store.Load()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "golang", posts[0].Subreddit)
	assert.Equal(t, "Go 1.25 released", posts[0].Title)
	assert.Equal(t, "t3_aaa", posts[0].ID)
}

func TestStore_Append_DeduplicatesByID(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Append([]domain.Post{
		post("golang", "Original title", "t3_aaa"),
	})
	require.NoError(t, err)

	// Same ID again, different title: first occurrence wins.
	added, total, err := store.Append([]domain.Post{
		post("golang", "Edited title", "t3_aaa"),
		post("golang", "Brand new", "t3_bbb"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, total)

	posts, err := store.Load()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Original title", posts[0].Title)
}

func TestStore_Append_SkipsInvalidPosts(t *testing.T) {
	store := newTestStore(t)

	added, total, err := store.Append([]domain.Post{
		post("golang", "", "t3_aaa"),
		post("", "No label", "t3_bbb"),
		post("golang", "Valid", "t3_ccc"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, total)
}

func TestStore_Append_PreservesCommasAndQuotes(t *testing.T) {
	store := newTestStore(t)

	title := `Why "generics", really, matter`
	_, _, err := store.Append([]domain.Post{post("golang", title, "t3_aaa")})
	require.NoError(t, err)

	posts, err := store.Load()
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, title, posts[0].Title)
}

func TestStore_WritesHeader(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Append([]domain.Post{post("golang", "Hello", "t3_aaa")})
	require.NoError(t, err)

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "subreddit,title,id\n")
}
