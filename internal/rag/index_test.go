package rag

import (
	"errors"
	"path/filepath"
	"testing"
)

func entry(id string, vector ...float32) Entry {
	return Entry{Vector: vector, Chunk: Chunk{ID: id, Text: "chunk " + id}}
}

func TestIndexSearchOrdering(t *testing.T) {
	ix := NewIndex()
	err := ix.Insert([]Entry{
		entry("a", 1, 0, 0),
		entry("b", 0.9, 0.1, 0),
		entry("c", 0, 1, 0),
		entry("d", 0.5, 0.5, 0),
	})
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}

	results, err := ix.Search([]float32{1, 0, 0}, 4)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "a" {
		t.Errorf("top result = %s, want a", results[0].Chunk.ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not descending at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestIndexSearchTieBreakByInsertionOrder(t *testing.T) {
	ix := NewIndex()
	// Identical vectors produce identical scores; earlier insert must win.
	err := ix.Insert([]Entry{
		entry("first", 0, 1),
		entry("second", 0, 1),
		entry("third", 0, 1),
	})
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}
	results, err := ix.Search([]float32{0, 1}, 3)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, r := range results {
		if r.Chunk.ID != want[i] {
			t.Errorf("result %d = %s, want %s", i, r.Chunk.ID, want[i])
		}
	}
}

func TestIndexSearchKLargerThanIndex(t *testing.T) {
	ix := NewIndex()
	if err := ix.Insert([]Entry{entry("a", 1, 0), entry("b", 0, 1)}); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	results, err := ix.Search([]float32{1, 1}, 10)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected all 2 entries, got %d", len(results))
	}
}

func TestIndexSearchEmpty(t *testing.T) {
	ix := NewIndex()
	results, err := ix.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("empty search must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestIndexInsertDimensionMismatch(t *testing.T) {
	ix := NewIndex()
	first := make([]float32, 768)
	first[0] = 1
	if err := ix.Insert([]Entry{{Vector: first, Chunk: Chunk{ID: "a"}}}); err != nil {
		t.Fatalf("insert error: %v", err)
	}

	smaller := make([]float32, 384)
	smaller[0] = 1
	err := ix.Insert([]Entry{{Vector: smaller, Chunk: Chunk{ID: "b"}}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
	if ix.Len() != 1 {
		t.Errorf("failed insert changed entry count: %d", ix.Len())
	}
	if ix.Dimension() != 768 {
		t.Errorf("dimension changed to %d", ix.Dimension())
	}
}

func TestIndexInsertRejectsMixedBatch(t *testing.T) {
	ix := NewIndex()
	err := ix.Insert([]Entry{entry("a", 1, 0, 0), entry("b", 1, 0)})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
	if ix.Len() != 0 {
		t.Errorf("mixed batch partially inserted: %d entries", ix.Len())
	}
}

func TestIndexSearchQueryDimensionMismatch(t *testing.T) {
	ix := NewIndex()
	if err := ix.Insert([]Entry{entry("a", 1, 0, 0)}); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	_, err := ix.Search([]float32{1, 0}, 1)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestIndexSaveLoadRoundTrip(t *testing.T) {
	ix := NewIndex()
	err := ix.Insert([]Entry{
		entry("a", 0.12, 0.88, 0.3),
		entry("b", 0.5, 0.5, 0.5),
		entry("c", 0.99, 0.01, 0.2),
	})
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "index.gob")
	if err := ix.Save(path); err != nil {
		t.Fatalf("save error: %v", err)
	}

	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if loaded.Dimension() != ix.Dimension() || loaded.Len() != ix.Len() {
		t.Fatalf("loaded index shape differs: dim %d/%d, len %d/%d",
			loaded.Dimension(), ix.Dimension(), loaded.Len(), ix.Len())
	}

	query := []float32{0.7, 0.2, 0.4}
	want, err := ix.Search(query, 3)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	got, err := loaded.Search(query, 3)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	for i := range want {
		if got[i].Chunk.ID != want[i].Chunk.ID || got[i].Score != want[i].Score {
			t.Errorf("result %d differs after round-trip: %v vs %v", i, got[i], want[i])
		}
	}
}

func TestLoadIndexMissingFile(t *testing.T) {
	_, err := LoadIndex(filepath.Join(t.TempDir(), "absent.gob"))
	if !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("err = %v, want ErrIndexNotFound", err)
	}
}
