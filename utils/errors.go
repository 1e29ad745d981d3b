package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"business-assistant-backend/internal/rag"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithUnauthorized sends a 401 Unauthorized error
func RespondWithUnauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, "unauthorized", message, nil)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithRetrievalError maps knowledge-base errors to HTTP responses.
// Upstream embedding failures surface as 503 so callers know to retry.
func RespondWithRetrievalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rag.ErrEmbeddingUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable,
			"embeddings_unavailable",
			"The embedding provider is unavailable. Please try again shortly.", nil)
	case errors.Is(err, rag.ErrInvalidConfiguration):
		RespondWithBadRequest(c, "Invalid retrieval parameters", gin.H{"error": err.Error()})
	case errors.Is(err, rag.ErrDimensionMismatch):
		RespondWithInternalError(c, "Vector index is inconsistent and needs a rebuild", nil)
	default:
		RespondWithInternalError(c, "Knowledge base query failed", nil)
	}
}
