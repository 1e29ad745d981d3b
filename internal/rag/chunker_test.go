package rag

import (
	"errors"
	"strings"
	"testing"
)

func TestChunkTextReconstructsOriginal(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
	}{
		{"no overlap", strings.Repeat("abcdefghij", 50), 70, 0},
		{"with overlap", strings.Repeat("the quick brown fox ", 40), 100, 30},
		{"default config", strings.Repeat("policy text ", 200), 700, 300},
		{"uneven tail", "abcdefghijklmnopqrstuvwxyz", 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := ChunkText(tt.text, tt.chunkSize, tt.overlap)
			if err != nil {
				t.Fatalf("chunk error: %v", err)
			}
			var b strings.Builder
			for i, c := range chunks {
				text := []rune(c.Text)
				if i == 0 {
					b.WriteString(c.Text)
				} else {
					b.WriteString(string(text[tt.overlap:]))
				}
			}
			if b.String() != tt.text {
				t.Errorf("reconstructed text does not match original")
			}
		})
	}
}

func TestChunkTextOverlapIsExact(t *testing.T) {
	text := strings.Repeat("0123456789", 30)
	chunks, err := ChunkText(text, 100, 40)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		curr := []rune(chunks[i].Text)
		shared := 40
		if len(curr) < shared {
			shared = len(curr)
		}
		tail := string(prev[len(prev)-shared:])
		head := string(curr[:shared])
		if tail != head {
			t.Errorf("chunks %d and %d share %q / %q, want identical overlap", i-1, i, tail, head)
		}
	}
}

func TestChunkTextSingleChunk(t *testing.T) {
	text := "Returns accepted within 30 days of purchase."
	chunks, err := ChunkText(text, 700, 300)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text = %q, want full text", chunks[0].Text)
	}
	if chunks[0].Offset != 0 || chunks[0].Length != len([]rune(text)) {
		t.Errorf("chunk offset/length = %d/%d", chunks[0].Offset, chunks[0].Length)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunks, err := ChunkText("", 100, 10)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestChunkTextInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"zero chunk size", 0, 0},
		{"negative chunk size", -5, 0},
		{"negative overlap", 100, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChunkText("some text", tt.chunkSize, tt.overlap)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestChunkDocumentStampsSource(t *testing.T) {
	chunks, err := ChunkDocument("data/documents/returns.txt", strings.Repeat("x", 250), 100, 0)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.SourcePath != "data/documents/returns.txt" {
			t.Errorf("source path = %q", c.SourcePath)
		}
		if c.ID == "" {
			t.Errorf("chunk missing ID")
		}
	}
}
