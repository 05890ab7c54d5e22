package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/model"
	"github.com/jonesrussell/subsift/internal/runlog"
	"github.com/jonesrussell/subsift/internal/textproc"
)

// mockStore implements DatasetLoader for testing.
type mockStore struct {
	posts []domain.Post
	err   error
}

func (m *mockStore) Load() ([]domain.Post, error) {
	return m.posts, m.err
}

// mockRuns implements RunLister for testing.
type mockRuns struct {
	runs []domain.ScrapeRun
}

func (m *mockRuns) List(_ context.Context, limit int) ([]domain.ScrapeRun, error) {
	if limit > len(m.runs) {
		limit = len(m.runs)
	}
	return m.runs[:limit], nil
}

func (m *mockRuns) GetByID(_ context.Context, id string) (*domain.ScrapeRun, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, runlog.ErrRunNotFound
}

func trainedPipeline(t *testing.T) *model.Pipeline {
	t.Helper()

	posts := []domain.Post{
		{Subreddit: "golang", Title: "Generics in the standard library", ID: "t3_a"},
		{Subreddit: "golang", Title: "Goroutine leaks and how to find them", ID: "t3_b"},
		{Subreddit: "golang", Title: "Profiling goroutine scheduling latency", ID: "t3_c"},
		{Subreddit: "rust", Title: "Understanding the borrow checker", ID: "t3_d"},
		{Subreddit: "rust", Title: "Lifetimes explained with examples", ID: "t3_e"},
		{Subreddit: "rust", Title: "Borrow checker errors demystified", ID: "t3_f"},
	}

	tokenizer := textproc.NewTokenizer()
	docs := make([][]string, len(posts))
	for i := range posts {
		docs[i] = tokenizer.Tokenize(posts[i].Title)
	}
	vocab := textproc.BuildVocabulary(docs, textproc.VocabularyOptions{})
	vectorizer := textproc.NewVectorizer(vocab, false)

	nb := model.NewNaiveBayes(1.0)
	samples := model.BuildSamples(tokenizer, vectorizer, posts)
	require.NoError(t, nb.Fit(samples))

	return model.NewPipeline(vectorizer, nb)
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, handler)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClassify(t *testing.T) {
	handler := NewHandler(trainedPipeline(t), &mockStore{}, &mockRuns{}, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodPost, "/api/v1/classify", ClassifyRequest{
		Title: "Fighting the borrow checker again",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ClassifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Prediction)
	assert.Equal(t, "rust", resp.Prediction.Label)
	assert.Equal(t, model.NaiveBayesName, resp.Prediction.Model)
}

func TestClassify_BadRequest(t *testing.T) {
	handler := NewHandler(trainedPipeline(t), &mockStore{}, &mockRuns{}, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodPost, "/api/v1/classify", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassify_NoModel(t *testing.T) {
	handler := NewHandler(nil, &mockStore{}, &mockRuns{}, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodPost, "/api/v1/classify", ClassifyRequest{Title: "anything"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestClassifyBatch(t *testing.T) {
	handler := NewHandler(trainedPipeline(t), &mockStore{}, &mockRuns{}, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodPost, "/api/v1/classify/batch", BatchClassifyRequest{
		Titles: []string{
			"Goroutine scheduling internals",
			"Lifetimes and the borrow checker",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp BatchClassifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Predictions, 2)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "golang", resp.Predictions[0].Label)
	assert.Equal(t, "rust", resp.Predictions[1].Label)
}

func TestClassifyBatch_EmptyRejected(t *testing.T) {
	handler := NewHandler(trainedPipeline(t), &mockStore{}, &mockRuns{}, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodPost, "/api/v1/classify/batch", BatchClassifyRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDatasetStats(t *testing.T) {
	store := &mockStore{posts: []domain.Post{
		{Subreddit: "golang", Title: "a post", ID: "t3_a"},
		{Subreddit: "golang", Title: "another post", ID: "t3_b"},
		{Subreddit: "rust", Title: "a third post", ID: "t3_c"},
	}}
	handler := NewHandler(nil, store, &mockRuns{}, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodGet, "/api/v1/dataset/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Total            int     `json:"total"`
		MajorityLabel    string  `json:"majority_label"`
		BaselineAccuracy float64 `json:"baseline_accuracy"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, "golang", stats.MajorityLabel)
	assert.InDelta(t, 2.0/3.0, stats.BaselineAccuracy, 0.001)
}

func TestDatasetStats_Empty(t *testing.T) {
	handler := NewHandler(nil, &mockStore{}, &mockRuns{}, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodGet, "/api/v1/dataset/stats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRuns(t *testing.T) {
	runs := &mockRuns{runs: []domain.ScrapeRun{
		{ID: "run-2", Subreddit: "rust", Status: domain.RunStatusCompleted},
		{ID: "run-1", Subreddit: "golang", Status: domain.RunStatusCompleted},
	}}
	handler := NewHandler(nil, &mockStore{}, runs, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodGet, "/api/v1/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Runs  []domain.ScrapeRun `json:"runs"`
		Total int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "run-2", resp.Runs[0].ID)
}

func TestGetRun_NotFound(t *testing.T) {
	handler := NewHandler(nil, &mockStore{}, &mockRuns{}, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodGet, "/api/v1/runs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadyCheck(t *testing.T) {
	handler := NewHandler(nil, &mockStore{}, &mockRuns{}, logger.NewNoOp())
	router := setupRouter(handler)

	w := doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	handler = NewHandler(trainedPipeline(t), &mockStore{}, &mockRuns{}, logger.NewNoOp())
	router = setupRouter(handler)

	w = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
