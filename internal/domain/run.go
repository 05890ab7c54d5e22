package domain

import "time"

// RunStatus is the lifecycle state of a scrape run.
type RunStatus string

const (
	// RunStatusRunning marks a run that is still in progress.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted marks a run that finished successfully.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed marks a run that terminated with an error.
	RunStatusFailed RunStatus = "failed"
)

// ScrapeRun records one execution of the scraper against a subreddit.
type ScrapeRun struct {
	ID           string     `db:"id"            json:"id"`
	Subreddit    string     `db:"subreddit"     json:"subreddit"`
	Pages        int        `db:"pages"         json:"pages"`
	PostsFetched int        `db:"posts_fetched" json:"posts_fetched"`
	PostsAdded   int        `db:"posts_added"   json:"posts_added"`
	DatasetTotal int        `db:"dataset_total" json:"dataset_total"`
	Status       RunStatus  `db:"status"        json:"status"`
	Error        string     `db:"error"         json:"error,omitempty"`
	StartedAt    time.Time  `db:"started_at"    json:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"   json:"finished_at,omitempty"`
}

// Duration returns the elapsed run time, or zero if the run is unfinished.
func (r *ScrapeRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
