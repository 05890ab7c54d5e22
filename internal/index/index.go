package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/logger"
)

const (
	// DefaultOperationTimeout bounds individual index operations.
	DefaultOperationTimeout = 30 * time.Second
	// DefaultSearchSize is the hit count returned when none is requested.
	DefaultSearchSize = 10
)

// ErrIndexNotFound is returned when searching an index that does not exist.
var ErrIndexNotFound = errors.New("index not found")

// mapping is the posts index schema: keyword subreddit for filtering and
// aggregation, analyzed title for match queries.
var mapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"subreddit": map[string]any{"type": "keyword"},
			"title":     map[string]any{"type": "text"},
			"id":        map[string]any{"type": "keyword"},
		},
	},
}

// Hit is one search result.
type Hit struct {
	Post  domain.Post
	Score float64
}

// Index wraps an Elasticsearch index of posts.
type Index struct {
	client   *es.Client
	name     string
	bulkSize int
	log      logger.Interface
}

// New creates an Index. bulkSize caps documents per bulk request.
func New(client *es.Client, name string, bulkSize int, log logger.Interface) *Index {
	if bulkSize <= 0 {
		bulkSize = 500
	}
	return &Index{
		client:   client,
		name:     name,
		bulkSize: bulkSize,
		log:      log,
	}
}

// Name returns the index name.
func (i *Index) Name() string {
	return i.name
}

// Ensure creates the index with its mapping if it does not already exist.
func (i *Index) Ensure(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	exists, err := i.exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	var buf bytes.Buffer
	if err = json.NewEncoder(&buf).Encode(mapping); err != nil {
		return fmt.Errorf("error encoding mapping: %w", err)
	}

	res, err := i.client.Indices.Create(
		i.name,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(&buf),
	)
	if err != nil {
		return fmt.Errorf("error creating index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index %s: %s", i.name, res.String())
	}

	i.log.Info("Created index", "index", i.name)
	return nil
}

// IndexPosts bulk-indexes posts, keyed by post ID so re-scraping the same
// submissions overwrites rather than duplicates.
func (i *Index) IndexPosts(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	if err := i.Ensure(ctx); err != nil {
		return err
	}

	for start := 0; start < len(posts); start += i.bulkSize {
		end := start + i.bulkSize
		if end > len(posts) {
			end = len(posts)
		}
		if err := i.bulkIndex(ctx, posts[start:end]); err != nil {
			return err
		}
	}

	i.log.Debug("Indexed posts", "index", i.name, "count", len(posts))
	return nil
}

func (i *Index) bulkIndex(ctx context.Context, posts []domain.Post) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	var buf bytes.Buffer
	for _, post := range posts {
		action := map[string]any{
			"index": map[string]any{"_index": i.name, "_id": post.ID},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return fmt.Errorf("error encoding bulk action: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(post); err != nil {
			return fmt.Errorf("error encoding bulk document: %w", err)
		}
	}

	res, err := i.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		i.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("error executing bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index error: %s", res.String())
	}

	var result struct {
		Errors bool `json:"errors"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&result); decodeErr != nil {
		return fmt.Errorf("error decoding bulk response: %w", decodeErr)
	}
	if result.Errors {
		return errors.New("bulk index reported item failures")
	}
	return nil
}

// SearchTitles runs a match query over titles, optionally filtered by
// subreddit, and returns the best hits with their relevance scores.
func (i *Index) SearchTitles(ctx context.Context, text, subreddit string, size int) ([]Hit, error) {
	if size <= 0 {
		size = DefaultSearchSize
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	exists, err := i.exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, i.name)
	}

	match := map[string]any{
		"match": map[string]any{"title": text},
	}
	var query map[string]any
	if subreddit == "" {
		query = match
	} else {
		query = map[string]any{
			"bool": map[string]any{
				"must":   []any{match},
				"filter": []any{map[string]any{"term": map[string]any{"subreddit": subreddit}}},
			},
		}
	}

	body, err := json.Marshal(map[string]any{
		"query": query,
		"size":  size,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling search query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Score  float64     `json:"_score"`
				Source domain.Post `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&result); decodeErr != nil {
		return nil, fmt.Errorf("error decoding search response: %w", decodeErr)
	}

	hits := make([]Hit, 0, len(result.Hits.Hits))
	for _, h := range result.Hits.Hits {
		hits = append(hits, Hit{Post: h.Source, Score: h.Score})
	}
	return hits, nil
}

// Count returns the number of indexed posts.
func (i *Index) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	res, err := i.client.Count(
		i.client.Count.WithContext(ctx),
		i.client.Count.WithIndex(i.name),
	)
	if err != nil {
		return 0, fmt.Errorf("error executing count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var result struct {
		Count int64 `json:"count"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&result); decodeErr != nil {
		return 0, fmt.Errorf("error decoding count response: %w", decodeErr)
	}
	return result.Count, nil
}

func (i *Index) exists(ctx context.Context) (bool, error) {
	res, err := i.client.Indices.Exists(
		[]string{i.name},
		i.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status checking index existence: %s", res.Status())
	}
}
