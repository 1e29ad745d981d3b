package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"business-assistant-backend/internal/ai"
	"business-assistant-backend/internal/config"
	"business-assistant-backend/internal/rag"
	"business-assistant-backend/utils"
)

type assistantQueryRequest struct {
	Question string   `json:"question" binding:"required"`
	K        int      `json:"k"`
	MinScore *float64 `json:"min_score"`
}

type retrievedChunk struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// SetupAssistantRoutes wires the conversational endpoint: retrieve
// relevant knowledge, then generate a grounded answer.
func SetupAssistantRoutes(router *gin.Engine, cfg *config.Config, manager *rag.Manager, assistant *ai.AssistantClient) {
	router.POST("/assistant/query", func(c *gin.Context) {
		var req assistantQueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		k := req.K
		if k <= 0 {
			k = cfg.RetrievalK
		}
		minScore := cfg.MinScore
		if req.MinScore != nil {
			minScore = *req.MinScore
		}

		results, err := manager.Query(c.Request.Context(), req.Question, k, minScore)
		if err != nil {
			if errors.Is(err, rag.ErrIndexNotFound) {
				c.JSON(http.StatusOK, gin.H{
					"answer":          "",
					"sources":         []retrievedChunk{},
					"index_available": false,
				})
				return
			}
			utils.RespondWithRetrievalError(c, err)
			return
		}

		response := gin.H{
			"sources":         toRetrievedChunks(results),
			"index_available": true,
		}

		if len(results) == 0 {
			response["answer"] = "I could not find anything relevant in the company documents for that question."
			c.JSON(http.StatusOK, response)
			return
		}

		answer, err := assistant.GenerateAnswer(c.Request.Context(), req.Question, results)
		if err != nil {
			utils.RespondWithError(c, http.StatusServiceUnavailable,
				"generation_unavailable",
				"Answer generation is unavailable. The retrieved sources are still included.",
				gin.H{"error": err.Error()})
			return
		}
		response["answer"] = answer

		c.JSON(http.StatusOK, response)
	})
}

func toRetrievedChunks(results []rag.Result) []retrievedChunk {
	chunks := make([]retrievedChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, retrievedChunk{
			Text:   r.Chunk.Text,
			Source: r.Chunk.SourcePath,
			Score:  r.Score,
		})
	}
	return chunks
}
