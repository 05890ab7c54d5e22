package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Classification endpoints
		classify := v1.Group("/classify")
		{
			classify.POST("", handler.Classify)            // POST /api/v1/classify
			classify.POST("/batch", handler.ClassifyBatch) // POST /api/v1/classify/batch
		}

		// Dataset endpoints
		v1.GET("/dataset/stats", handler.DatasetStats) // GET /api/v1/dataset/stats

		// Scrape run ledger endpoints
		runs := v1.Group("/runs")
		{
			runs.GET("", handler.ListRuns)   // GET /api/v1/runs
			runs.GET("/:id", handler.GetRun) // GET /api/v1/runs/:id
		}
	}
}
