// Package api exposes the trained classifier and the dataset over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/subsift/internal/dataset"
	"github.com/jonesrussell/subsift/internal/domain"
	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/model"
	"github.com/jonesrussell/subsift/internal/runlog"
)

// maxBatchSize caps a batch classification request.
const maxBatchSize = 100

// RunLister reads the scrape run ledger.
type RunLister interface {
	List(ctx context.Context, limit int) ([]domain.ScrapeRun, error)
	GetByID(ctx context.Context, id string) (*domain.ScrapeRun, error)
}

// DatasetLoader loads the persisted dataset.
type DatasetLoader interface {
	Load() ([]domain.Post, error)
}

// Handler handles HTTP requests.
type Handler struct {
	pipeline *model.Pipeline
	store    DatasetLoader
	runs     RunLister
	logger   logger.Interface
}

// NewHandler creates an API handler. pipeline may be nil when no model has
// been trained yet; classification endpoints then return 503.
func NewHandler(pipeline *model.Pipeline, store DatasetLoader, runs RunLister, log logger.Interface) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
		runs:     runs,
		logger:   log,
	}
}

// ClassifyRequest is a single title classification request.
type ClassifyRequest struct {
	Title string `json:"title" binding:"required"`
}

// ClassifyResponse carries a prediction.
type ClassifyResponse struct {
	Prediction *domain.Prediction `json:"prediction"`
	Error      string             `json:"error,omitempty"`
}

// BatchClassifyRequest is a batch of titles.
type BatchClassifyRequest struct {
	Titles []string `json:"titles" binding:"required,min=1,max=100"`
}

// BatchClassifyResponse carries per-title predictions in request order.
type BatchClassifyResponse struct {
	Predictions []*domain.Prediction `json:"predictions"`
	Total       int                  `json:"total"`
}

// Classify handles POST /api/v1/classify.
func (h *Handler) Classify(c *gin.Context) {
	if h.pipeline == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no trained model loaded"})
		return
	}

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid classification request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.pipeline.PredictTitle(req.Title)
	if err != nil {
		h.logger.Error("Classification failed", "error", err)
		c.JSON(http.StatusInternalServerError, ClassifyResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ClassifyResponse{Prediction: prediction})
}

// ClassifyBatch handles POST /api/v1/classify/batch.
func (h *Handler) ClassifyBatch(c *gin.Context) {
	if h.pipeline == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no trained model loaded"})
		return
	}

	var req BatchClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid batch classification request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Titles) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch too large"})
		return
	}

	predictions := make([]*domain.Prediction, 0, len(req.Titles))
	for _, title := range req.Titles {
		prediction, err := h.pipeline.PredictTitle(title)
		if err != nil {
			h.logger.Error("Batch classification failed", "title", title, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		predictions = append(predictions, prediction)
	}

	c.JSON(http.StatusOK, BatchClassifyResponse{
		Predictions: predictions,
		Total:       len(predictions),
	})
}

// DatasetStats handles GET /api/v1/dataset/stats.
func (h *Handler) DatasetStats(c *gin.Context) {
	posts, err := h.store.Load()
	if err != nil {
		h.logger.Error("Failed to load dataset", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stats, err := dataset.ComputeStats(posts)
	if err != nil {
		if errors.Is(err, dataset.ErrEmptyDataset) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListRuns handles GET /api/v1/runs.
func (h *Handler) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}

// GetRun handles GET /api/v1/runs/:id.
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, runlog.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		h.logger.Error("Failed to get run", "run_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadyCheck handles GET /ready. The server is ready once a model is loaded.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.pipeline == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "no model loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "model": h.pipeline.Classifier.Name()})
}
