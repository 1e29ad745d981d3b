package rag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"business-assistant-backend/internal/logger"
)

// Embedder maps texts to fixed-dimension vectors, one per input, order
// preserved. Implementations may batch internally but must not change
// output order or values relative to single-item calls.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Extractor turns a document file into plain text.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Options configures a Manager. Zero values fall back to defaults.
type Options struct {
	IndexPath    string
	BatchSize    int
	QueryRetries int
	RetryBackoff time.Duration
}

// Manager orchestrates ingestion (discover, chunk, embed, insert) and
// query-time retrieval. It owns the single active index for the process
// as a swappable reference: a rebuild assembles a complete new index off
// to the side and swaps it in atomically, so in-flight queries finish
// against the old one and a failed build changes nothing.
type Manager struct {
	embedder  Embedder
	extractor Extractor
	opts      Options

	active  atomic.Pointer[Index]
	buildMu sync.Mutex
	loadMu  sync.Mutex

	// Modification time of the index file backing the active index, in
	// unix nanos. Lets queries notice a rebuild persisted by another
	// process (the reindex worker) and reload without a restart.
	fileMtime atomic.Int64
}

func NewManager(embedder Embedder, extractor Extractor, opts Options) *Manager {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.QueryRetries <= 0 {
		opts.QueryRetries = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	return &Manager{embedder: embedder, extractor: extractor, opts: opts}
}

var supportedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// Build discovers supported documents under documentDir recursively,
// chunks and embeds them, and persists a fresh index before swapping it
// in as the active one. A directory with no eligible documents yields a
// valid empty index. An embedding failure aborts the whole build and the
// previously active index keeps serving.
func (m *Manager) Build(ctx context.Context, documentDir string, chunkSize, overlap int) (*Index, error) {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	paths, err := discoverDocuments(documentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan document directory: %w", err)
	}
	logger.Info("building vector index", "documents", len(paths), "dir", documentDir)

	var chunks []Chunk
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := m.extractor.ExtractText(ctx, path)
		if err != nil {
			// A single unreadable document does not sink the build.
			logger.Warn("skipping document", "path", path, "error", err)
			continue
		}
		docChunks, err := ChunkDocument(path, text, chunkSize, overlap)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, docChunks...)
	}

	index := NewIndex()
	if len(chunks) == 0 {
		logger.Warn("no chunks produced, index will be empty", "dir", documentDir)
		return m.finishBuild(index)
	}

	for start := 0; start < len(chunks); start += m.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + m.opts.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := m.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingUnavailable, len(vectors), len(batch))
		}

		entries := make([]Entry, len(batch))
		for i := range batch {
			entries[i] = Entry{Vector: vectors[i], Chunk: batch[i]}
		}
		if err := index.Insert(entries); err != nil {
			return nil, err
		}
	}

	logger.Info("vector index built", "chunks", index.Len(), "dimension", index.Dimension())
	return m.finishBuild(index)
}

func (m *Manager) finishBuild(index *Index) (*Index, error) {
	if m.opts.IndexPath != "" {
		if err := index.Save(m.opts.IndexPath); err != nil {
			return nil, err
		}
		if stat, err := os.Stat(m.opts.IndexPath); err == nil {
			m.fileMtime.Store(stat.ModTime().UnixNano())
		}
	}
	m.active.Store(index)
	return index, nil
}

// Query embeds text, searches the active index for k candidates, and
// drops any with a score below minScore. An empty result is a valid
// "no relevant information" outcome. If no index has been built or
// persisted, it returns ErrIndexNotFound.
func (m *Manager) Query(ctx context.Context, text string, k int, minScore float64) ([]Result, error) {
	index := m.activeIndex()
	if index == nil {
		return nil, ErrIndexNotFound
	}
	if index.Len() == 0 {
		return nil, nil
	}

	vector, err := m.embedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	results, err := index.Search(vector, k)
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Score >= minScore {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// Ready reports whether an index is active or loadable.
func (m *Manager) Ready() bool {
	return m.activeIndex() != nil
}

// ActiveStats returns entry count and dimension of the active index.
func (m *Manager) ActiveStats() (entries, dimension int) {
	index := m.activeIndex()
	if index == nil {
		return 0, 0
	}
	return index.Len(), index.Dimension()
}

// activeIndex returns the in-memory index, lazily loading the persisted
// one before the first query after startup. When the on-disk index is
// newer than the in-memory one, such as after a rebuild by the reindex
// worker, the persisted index is reloaded and swapped in.
func (m *Manager) activeIndex() *Index {
	if index := m.active.Load(); index != nil && !m.indexFileNewer() {
		return index
	}
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	index := m.active.Load()
	if index != nil && !m.indexFileNewer() {
		return index
	}
	if m.opts.IndexPath == "" {
		return index
	}
	loaded, err := LoadIndex(m.opts.IndexPath)
	if err != nil {
		if index != nil {
			logger.Warn("failed to reload persisted index, keeping current one", "path", m.opts.IndexPath, "error", err)
			return index
		}
		logger.Debug("no persisted index to load", "path", m.opts.IndexPath, "error", err)
		return nil
	}
	if stat, err := os.Stat(m.opts.IndexPath); err == nil {
		m.fileMtime.Store(stat.ModTime().UnixNano())
	}
	logger.Info("loaded persisted vector index", "path", m.opts.IndexPath, "entries", loaded.Len())
	m.active.Store(loaded)
	return loaded
}

// indexFileNewer reports whether the persisted index has been replaced
// since the active one was loaded or saved.
func (m *Manager) indexFileNewer() bool {
	if m.opts.IndexPath == "" {
		return false
	}
	stat, err := os.Stat(m.opts.IndexPath)
	if err != nil {
		return false
	}
	return stat.ModTime().UnixNano() > m.fileMtime.Load()
}

// embedQuery retries transient embedding failures with exponential
// backoff before surfacing ErrEmbeddingUnavailable.
func (m *Manager) embedQuery(ctx context.Context, text string) ([]float32, error) {
	backoff := m.opts.RetryBackoff
	var lastErr error
	for attempt := 0; attempt < m.opts.QueryRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		vectors, err := m.embedder.EmbedTexts(ctx, []string{text})
		if err == nil && len(vectors) == 1 {
			return vectors[0], nil
		}
		if err == nil {
			err = fmt.Errorf("got %d vectors for one text", len(vectors))
		}
		lastErr = err
		logger.Warn("query embedding attempt failed", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, lastErr)
}

// discoverDocuments walks dir recursively and returns supported document
// paths in a stable order. A missing directory is treated as empty.
func discoverDocuments(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
