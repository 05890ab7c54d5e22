package scrape_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/reddit"
	"github.com/jonesrussell/subsift/internal/scrape"
)

type fakeLister struct {
	pages    []*reddit.Page
	authErr  error
	listErr  error
	requests int
}

func (f *fakeLister) Authenticate(_ context.Context) error {
	return f.authErr
}

func (f *fakeLister) ListNew(_ context.Context, _ string, _ int, _ string) (*reddit.Page, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.requests >= len(f.pages) {
		return &reddit.Page{}, nil
	}
	page := f.pages[f.requests]
	f.requests++
	return page, nil
}

type fakeStore struct {
	appended []domain.Post
	total    int
	err      error
}

func (f *fakeStore) Append(posts []domain.Post) (int, int, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.appended = append(f.appended, posts...)
	f.total += len(posts)
	return len(posts), f.total, nil
}

type fakeLedger struct {
	started   *domain.ScrapeRun
	completed bool
	failed    bool
	failErr   string
}

func (f *fakeLedger) Start(_ context.Context, subreddit string, pages int) (*domain.ScrapeRun, error) {
	f.started = &domain.ScrapeRun{
		ID:        "run-1",
		Subreddit: subreddit,
		Pages:     pages,
		Status:    domain.RunStatusRunning,
	}
	return f.started, nil
}

func (f *fakeLedger) Complete(_ context.Context, run *domain.ScrapeRun) error {
	f.completed = true
	run.Status = domain.RunStatusCompleted
	return nil
}

func (f *fakeLedger) Fail(_ context.Context, run *domain.ScrapeRun, runErr error) error {
	f.failed = true
	f.failErr = runErr.Error()
	run.Status = domain.RunStatusFailed
	return nil
}

type fakeIndexer struct {
	indexed []domain.Post
	err     error
}

func (f *fakeIndexer) IndexPosts(_ context.Context, posts []domain.Post) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, posts...)
	return nil
}

func listingPage(subreddit, after string, titles ...string) *reddit.Page {
	page := &reddit.Page{After: after}
	for i, title := range titles {
		page.Posts = append(page.Posts, reddit.Post{
			Subreddit: subreddit,
			Title:     title,
			Fullname:  "t3_" + subreddit + string(rune('a'+i)) + after,
		})
	}
	return page
}

func TestRunner_Run(t *testing.T) {
	client := &fakeLister{pages: []*reddit.Page{
		listingPage("golang", "t3_cursor", "Generics in practice", "Error wrapping"),
		listingPage("golang", "", "Context cancellation"),
	}}
	store := &fakeStore{}
	ledger := &fakeLedger{}
	indexer := &fakeIndexer{}

	runner := scrape.NewRunner(client, store, ledger, indexer, logger.NewNoOp())
	run, err := runner.Run(context.Background(), scrape.Options{
		Subreddit: "golang",
		Pages:     10,
		PageLimit: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.PostsFetched)
	assert.Equal(t, 3, run.PostsAdded)
	assert.Equal(t, 3, run.DatasetTotal)
	assert.True(t, ledger.completed)
	assert.Len(t, indexer.indexed, 3)
	// Stopped at the empty cursor, not the page budget.
	assert.Equal(t, 2, client.requests)
}

func TestRunner_Run_StopsAtPageBudget(t *testing.T) {
	client := &fakeLister{pages: []*reddit.Page{
		listingPage("rust", "t3_a", "Borrow checker"),
		listingPage("rust", "t3_b", "Lifetimes"),
		listingPage("rust", "t3_c", "Unsafe blocks"),
	}}
	store := &fakeStore{}
	ledger := &fakeLedger{}

	runner := scrape.NewRunner(client, store, ledger, nil, logger.NewNoOp())
	run, err := runner.Run(context.Background(), scrape.Options{
		Subreddit: "rust",
		Pages:     2,
		PageLimit: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, client.requests)
	assert.Equal(t, 2, run.PostsFetched)
}

func TestRunner_Run_AuthFailureRecordedAsFailed(t *testing.T) {
	client := &fakeLister{authErr: reddit.ErrNotAuthorized}
	store := &fakeStore{}
	ledger := &fakeLedger{}

	runner := scrape.NewRunner(client, store, ledger, nil, logger.NewNoOp())
	run, err := runner.Run(context.Background(), scrape.Options{
		Subreddit: "golang",
		Pages:     10,
		PageLimit: 100,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, reddit.ErrNotAuthorized)

	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.True(t, ledger.failed)
	assert.Contains(t, ledger.failErr, "authentication failed")
	assert.Empty(t, store.appended)
}

func TestRunner_Run_AppendFailureRecordedAsFailed(t *testing.T) {
	client := &fakeLister{pages: []*reddit.Page{
		listingPage("golang", "", "A single post"),
	}}
	store := &fakeStore{err: errors.New("disk full")}
	ledger := &fakeLedger{}

	runner := scrape.NewRunner(client, store, ledger, nil, logger.NewNoOp())
	run, err := runner.Run(context.Background(), scrape.Options{
		Subreddit: "golang",
		Pages:     1,
		PageLimit: 100,
	})
	require.Error(t, err)

	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.True(t, ledger.failed)
}

func TestRunner_Run_IndexFailureIsNonFatal(t *testing.T) {
	client := &fakeLister{pages: []*reddit.Page{
		listingPage("golang", "", "A single post"),
	}}
	store := &fakeStore{}
	ledger := &fakeLedger{}
	indexer := &fakeIndexer{err: errors.New("elasticsearch unavailable")}

	runner := scrape.NewRunner(client, store, ledger, indexer, logger.NewNoOp())
	run, err := runner.Run(context.Background(), scrape.Options{
		Subreddit: "golang",
		Pages:     1,
		PageLimit: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, 1, run.PostsAdded)
}
