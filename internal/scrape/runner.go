// Package scrape orchestrates one scraping run: authenticate, page through
// a subreddit's newest submissions, merge into the dataset, record the run
// in the ledger and optionally index the posts for search.
package scrape

import (
	"context"
	"fmt"

	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/reddit"
)

// Lister fetches listing pages from the Reddit API.
type Lister interface {
	Authenticate(ctx context.Context) error
	ListNew(ctx context.Context, subreddit string, limit int, after string) (*reddit.Page, error)
}

// DatasetAppender merges posts into the persisted dataset.
type DatasetAppender interface {
	Append(posts []domain.Post) (added, total int, err error)
}

// RunRecorder writes the scrape run ledger.
type RunRecorder interface {
	Start(ctx context.Context, subreddit string, pages int) (*domain.ScrapeRun, error)
	Complete(ctx context.Context, run *domain.ScrapeRun) error
	Fail(ctx context.Context, run *domain.ScrapeRun, runErr error) error
}

// PostIndexer pushes scraped posts into the search index. Implementations
// must tolerate being nil-checked away when indexing is disabled.
type PostIndexer interface {
	IndexPosts(ctx context.Context, posts []domain.Post) error
}

// Options parameterize a run.
type Options struct {
	Subreddit string
	Pages     int
	PageLimit int
}

// Runner executes scrape runs.
type Runner struct {
	client  Lister
	store   DatasetAppender
	ledger  RunRecorder
	indexer PostIndexer // nil when indexing is disabled
	log     logger.Interface
}

// NewRunner wires a runner. indexer may be nil.
func NewRunner(
	client Lister,
	store DatasetAppender,
	ledger RunRecorder,
	indexer PostIndexer,
	log logger.Interface,
) *Runner {
	return &Runner{
		client:  client,
		store:   store,
		ledger:  ledger,
		indexer: indexer,
		log:     log,
	}
}

// Run executes one scrape and returns the completed ledger entry.
func (r *Runner) Run(ctx context.Context, opts Options) (*domain.ScrapeRun, error) {
	run, err := r.ledger.Start(ctx, opts.Subreddit, opts.Pages)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	posts, err := r.fetch(ctx, opts)
	if err != nil {
		if failErr := r.ledger.Fail(ctx, run, err); failErr != nil {
			r.log.Error("Failed to record run failure", "run_id", run.ID, "error", failErr)
		}
		return run, err
	}
	run.PostsFetched = len(posts)

	added, total, err := r.store.Append(posts)
	if err != nil {
		if failErr := r.ledger.Fail(ctx, run, err); failErr != nil {
			r.log.Error("Failed to record run failure", "run_id", run.ID, "error", failErr)
		}
		return run, fmt.Errorf("failed to update dataset: %w", err)
	}
	run.PostsAdded = added
	run.DatasetTotal = total

	if r.indexer != nil && len(posts) > 0 {
		if indexErr := r.indexer.IndexPosts(ctx, posts); indexErr != nil {
			// Indexing is best-effort; the dataset is the source of truth.
			r.log.Warn("Failed to index posts",
				"subreddit", opts.Subreddit,
				"count", len(posts),
				"error", indexErr,
			)
		}
	}

	if err = r.ledger.Complete(ctx, run); err != nil {
		return run, fmt.Errorf("failed to record run completion: %w", err)
	}

	r.log.Info("Scrape run complete",
		"run_id", run.ID,
		"subreddit", opts.Subreddit,
		"fetched", run.PostsFetched,
		"added", run.PostsAdded,
		"dataset_total", run.DatasetTotal,
	)
	return run, nil
}

// fetch authenticates and pages through the listing until the requested
// page count or the end of the listing.
func (r *Runner) fetch(ctx context.Context, opts Options) ([]domain.Post, error) {
	if err := r.client.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	var posts []domain.Post
	after := ""
	for page := 0; page < opts.Pages; page++ {
		listing, err := r.client.ListNew(ctx, opts.Subreddit, opts.PageLimit, after)
		if err != nil {
			return nil, err
		}

		for _, p := range listing.Posts {
			posts = append(posts, domain.Post{
				Subreddit: p.Subreddit,
				Title:     p.Title,
				ID:        p.Fullname,
			})
		}

		r.log.Debug("Fetched listing page",
			"subreddit", opts.Subreddit,
			"page", page+1,
			"posts", len(listing.Posts),
			"after", listing.After,
		)

		if listing.After == "" {
			break // listing exhausted
		}
		after = listing.After
	}
	return posts, nil
}
