// Package domain defines the core data types shared across subsift.
package domain

import "errors"

// Post is a single scraped submission title. ID is the Reddit fullname
// (e.g. "t3_abc123") and is unique across the dataset.
type Post struct {
	Subreddit string `json:"subreddit" csv:"subreddit"`
	Title     string `json:"title"     csv:"title"`
	ID        string `json:"id"        csv:"id"`
}

// Validation errors for posts.
var (
	ErrEmptyID        = errors.New("post id is empty")
	ErrEmptyTitle     = errors.New("post title is empty")
	ErrEmptySubreddit = errors.New("post subreddit is empty")
)

// Validate checks that all required fields are present.
func (p *Post) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if p.Title == "" {
		return ErrEmptyTitle
	}
	if p.Subreddit == "" {
		return ErrEmptySubreddit
	}
	return nil
}
