// Package dataset persists and serves the labeled title dataset. The store
// is a flat CSV file with columns subreddit, title, id; the post ID is the
// uniqueness key and the first occurrence of an ID wins on append.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/logger"
)

// CSV layout.
const (
	columnSubreddit = 0
	columnTitle     = 1
	columnID        = 2
	columnCount     = 3
)

var header = []string{"subreddit", "title", "id"}

// ErrEmptyDataset is returned when an operation needs at least one record.
var ErrEmptyDataset = errors.New("dataset is empty")

// Store reads and writes the CSV dataset.
type Store struct {
	path string
	log  logger.Interface
}

// NewStore creates a store for the dataset at path. The file is created
// lazily on first append.
func NewStore(path string, log logger.Interface) *Store {
	return &Store{path: path, log: log}
}

// Path returns the dataset file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads all posts from the dataset. A missing file yields an empty
// slice, not an error, so callers can treat first run and empty dataset
// alike.
func (s *Store) Load() ([]domain.Post, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = columnCount

	// Header row.
	if _, err = reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	var posts []domain.Post
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read dataset row: %w", readErr)
		}
		posts = append(posts, domain.Post{
			Subreddit: record[columnSubreddit],
			Title:     record[columnTitle],
			ID:        record[columnID],
		})
	}
	return posts, nil
}

// Append merges new posts into the dataset, dropping duplicates by post ID
// with first-seen-wins semantics. It returns the number of rows actually
// added and the dataset total after the merge.
func (s *Store) Append(posts []domain.Post) (added, total int, err error) {
	existing, err := s.Load()
	if err != nil {
		return 0, 0, err
	}

	seen := make(map[string]struct{}, len(existing)+len(posts))
	merged := make([]domain.Post, 0, len(existing)+len(posts))
	for _, p := range existing {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
	}

	for _, p := range posts {
		if validateErr := p.Validate(); validateErr != nil {
			s.log.Warn("Skipping invalid post", "id", p.ID, "error", validateErr)
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
		added++
	}

	if err = s.write(merged); err != nil {
		return 0, 0, err
	}
	return added, len(merged), nil
}

// write replaces the dataset file atomically via a rename.
func (s *Store) write(posts []domain.Post) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dataset file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err = writer.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write dataset header: %w", err)
	}
	for i := range posts {
		row := []string{posts[i].Subreddit, posts[i].Title, posts[i].ID}
		if err = writer.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write dataset row: %w", err)
		}
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp dataset file: %w", err)
	}

	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace dataset file: %w", err)
	}
	return nil
}
