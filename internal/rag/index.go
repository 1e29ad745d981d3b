package rag

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Entry pairs a chunk with its embedding vector. The index owns its
// entries; they never outlive it.
type Entry struct {
	Vector []float32
	Chunk  Chunk
}

// Result is a single retrieval hit. Scores are cosine similarities and
// are only comparable within one index (same embedding model).
type Result struct {
	Chunk Chunk
	Score float64
}

// Index is an append-only collection of (vector, chunk) entries with
// brute-force cosine-similarity search. The first insert establishes the
// vector dimension for the index's lifetime. Reads run concurrently;
// ingestion builds a fresh Index and swaps it in rather than mutating one
// that is serving queries.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []Entry
}

func NewIndex() *Index { return &Index{} }

// Dimension returns the established vector dimension, 0 if no entries yet.
func (ix *Index) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimension
}

// Len returns the number of stored entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Insert appends entries in order. Every entry is validated before any is
// stored, so a dimension mismatch leaves the index unchanged.
func (ix *Index) Insert(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	dim := ix.dimension
	for _, e := range entries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("%w: entry %q has an empty vector", ErrDimensionMismatch, e.Chunk.ID)
		}
		if dim == 0 {
			dim = len(e.Vector)
			continue
		}
		if len(e.Vector) != dim {
			return fmt.Errorf("%w: entry %q has dimension %d, index has %d",
				ErrDimensionMismatch, e.Chunk.ID, len(e.Vector), dim)
		}
	}

	ix.dimension = dim
	ix.entries = append(ix.entries, entries...)
	return nil
}

// Search returns the k entries most similar to query, descending by score
// with ties broken by insertion order. An empty index yields an empty
// result, never an error.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			ErrDimensionMismatch, len(query), ix.dimension)
	}

	results := make([]Result, len(ix.entries))
	for i, e := range ix.entries {
		results[i] = Result{Chunk: e.Chunk, Score: cosineSimilarity(query, e.Vector)}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

type indexSnapshot struct {
	Dimension int
	Entries   []Entry
}

// Save persists the full entry set plus dimension. It writes to a
// temporary file and renames so a crash never leaves a torn index.
func (ix *Index) Save(path string) error {
	ix.mu.RLock()
	snap := indexSnapshot{Dimension: ix.dimension, Entries: ix.entries}
	ix.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close index file: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadIndex restores an index persisted by Save. A restored index
// round-trips to identical search results for any fixed query vector.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	var snap indexSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return &Index{dimension: snap.Dimension, entries: snap.Entries}, nil
}

// cosineSimilarity is the normalized dot product of two equal-length
// vectors. Accumulates in float64 to keep scores stable across runs.
// A zero-magnitude vector scores 0 against everything.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
