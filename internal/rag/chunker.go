package rag

import (
	"fmt"

	"github.com/google/uuid"
)

// Chunk is a bounded, overlapping segment of a source document's text.
// Offsets and lengths are in runes so multi-byte text chunks cleanly.
// Chunks are immutable once created.
type Chunk struct {
	ID         string
	Text       string
	SourcePath string
	Offset     int
	Length     int
}

// ChunkText slides a window of chunkSize characters across text, advancing
// by chunkSize-overlap each step. The final window is truncated to the
// remaining text and may be shorter than chunkSize. Text that fits in a
// single window produces exactly one chunk; empty text produces none.
func ChunkText(text string, chunkSize, overlap int) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidConfiguration, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidConfiguration, overlap, chunkSize)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := chunkSize - overlap
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			ID:     uuid.NewString(),
			Text:   string(runes[start:end]),
			Offset: start,
			Length: end - start,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}

// ChunkDocument chunks a document's extracted text and stamps each chunk
// with the source path it came from.
func ChunkDocument(sourcePath, text string, chunkSize, overlap int) ([]Chunk, error) {
	chunks, err := ChunkText(text, chunkSize, overlap)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		chunks[i].SourcePath = sourcePath
	}
	return chunks, nil
}
