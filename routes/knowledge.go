package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"business-assistant-backend/internal/config"
	"business-assistant-backend/internal/queue"
	"business-assistant-backend/internal/rag"
	"business-assistant-backend/internal/telemetry"
	"business-assistant-backend/middleware"
	"business-assistant-backend/utils"
)

// SetupKnowledgeRoutes wires raw retrieval, index status, and the
// admin-only rebuild trigger. metrics may be nil.
func SetupKnowledgeRoutes(router *gin.Engine, cfg *config.Config, manager *rag.Manager, asynqClient *asynq.Client, authMiddleware *middleware.AuthMiddleware, metrics *telemetry.Metrics) {
	router.GET("/knowledge/search", func(c *gin.Context) {
		q := c.Query("q")
		if q == "" {
			utils.RespondWithBadRequest(c, "Query parameter 'q' is required", nil)
			return
		}

		k := cfg.RetrievalK
		if raw := c.Query("k"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				utils.RespondWithBadRequest(c, "Parameter 'k' must be a positive integer", nil)
				return
			}
			k = parsed
		}

		minScore := cfg.MinScore
		if raw := c.Query("min_score"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				utils.RespondWithBadRequest(c, "Parameter 'min_score' must be a number", nil)
				return
			}
			minScore = parsed
		}

		results, err := manager.Query(c.Request.Context(), q, k, minScore)
		if err != nil {
			if errors.Is(err, rag.ErrIndexNotFound) {
				c.JSON(http.StatusOK, gin.H{
					"results":         []retrievedChunk{},
					"index_available": false,
				})
				return
			}
			utils.RespondWithRetrievalError(c, err)
			return
		}

		if metrics != nil {
			metrics.RecordRetrieval(len(results))
		}
		c.JSON(http.StatusOK, gin.H{
			"results":         toRetrievedChunks(results),
			"index_available": true,
		})
	})

	router.GET("/knowledge/status", func(c *gin.Context) {
		entries, dimension := manager.ActiveStats()
		c.JSON(http.StatusOK, gin.H{
			"ready":     manager.Ready(),
			"entries":   entries,
			"dimension": dimension,
		})
	})

	admin := router.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())

	admin.POST("/reindex", func(c *gin.Context) {
		task, err := queue.NewIndexRebuildTask(queue.IndexRebuildPayload{
			DocumentsDir: cfg.DocumentsDir,
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
			RequestedBy:  middleware.GetUserID(c),
		})
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create rebuild task", nil)
			return
		}

		info, err := asynqClient.EnqueueContext(c.Request.Context(), task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue rebuild task", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"message": "Index rebuild enqueued",
			"task_id": info.ID,
			"queue":   info.Queue,
		})
	})
}
