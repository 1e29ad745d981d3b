package rag

import "errors"

// Sentinel errors for retrieval failures. Callers classify with errors.Is.
var (
	// ErrInvalidConfiguration means the chunking parameters are unusable.
	// Not retryable; the configuration must be fixed.
	ErrInvalidConfiguration = errors.New("invalid chunking configuration")

	// ErrEmbeddingUnavailable means the embedding model could not be
	// reached. Fatal during a build, retryable for queries.
	ErrEmbeddingUnavailable = errors.New("embedding model unavailable")

	// ErrDimensionMismatch means a vector's dimension differs from the
	// index's established dimension, usually from model-version drift.
	// The index must be rebuilt.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexNotFound means no index has been built or loaded yet.
	ErrIndexNotFound = errors.New("vector index not available")
)
