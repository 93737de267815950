package database

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tieubaoca/ragdocs-be/types"
)

const indexFileName = "index.json"

// placeholderText seeds a freshly created index. The underlying structure
// must hold at least one vector before it is queryable; the placeholder is
// excluded from every search result.
const placeholderText = "placeholder"

type indexEntry struct {
	Vector   []float32           `json:"vector"`
	Content  string              `json:"content"`
	Metadata types.ChunkMetadata `json:"metadata"`
}

type indexFile struct {
	Dimension int          `json:"dimension"`
	Entries   []indexEntry `json:"entries"`
}

// VectorIndex is a flat cosine-similarity index persisted as a single JSON
// file under its directory. Every mutation rewrites the whole file, so the
// on-disk state is always consistent with the last completed Add.
//
// One instance serves the whole process. The mutex serializes the
// load-modify-save cycle; without it concurrent Adds could overwrite each
// other's persisted entries.
type VectorIndex struct {
	mu       sync.Mutex
	dir      string
	embedder Embedder
	topK     int
	loaded   bool
	data     indexFile
}

func NewVectorIndex(dir string, embedder Embedder, topK int) *VectorIndex {
	if topK <= 0 {
		topK = 5
	}
	return &VectorIndex{
		dir:      dir,
		embedder: embedder,
		topK:     topK,
	}
}

// LoadOrCreate loads the persisted index if one exists, otherwise creates a
// new index seeded with the placeholder entry and persists it immediately.
// Safe to call more than once; only the first call does work.
func (idx *VectorIndex) LoadOrCreate(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.loadOrCreateLocked(ctx)
}

func (idx *VectorIndex) loadOrCreateLocked(ctx context.Context) error {
	if idx.loaded {
		return nil
	}
	path := filepath.Join(idx.dir, indexFileName)
	raw, err := os.ReadFile(path)
	if err == nil {
		var data indexFile
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("failed to parse index file %s: %w", path, err)
		}
		idx.data = data
		idx.loaded = true
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read index file: %w", err)
	}

	vec, err := idx.embedder.Embed(ctx, placeholderText)
	if err != nil {
		return fmt.Errorf("failed to embed placeholder: %w", err)
	}
	idx.data = indexFile{
		Dimension: len(vec),
		Entries: []indexEntry{{
			Vector:   vec,
			Content:  placeholderText,
			Metadata: types.ChunkMetadata{Placeholder: true},
		}},
	}
	idx.loaded = true
	return idx.saveLocked()
}

// Add embeds the chunk texts and inserts one entry per chunk. The whole
// index is persisted before Add returns, so added entries are durable and
// visible to any process that reloads the index. Empty input is a no-op.
func (idx *VectorIndex) Add(ctx context.Context, chunks []types.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadOrCreateLocked(ctx); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i, v := range vectors {
		if idx.data.Dimension == 0 {
			idx.data.Dimension = len(v)
		}
		if len(v) != idx.data.Dimension {
			return fmt.Errorf("vector dimension mismatch: got %d, index has %d", len(v), idx.data.Dimension)
		}
		idx.data.Entries = append(idx.data.Entries, indexEntry{
			Vector:   v,
			Content:  chunks[i].Content,
			Metadata: chunks[i].Metadata,
		})
	}
	return idx.saveLocked()
}

// Search embeds the query and returns the k nearest entries best-first.
// Placeholder entries never appear and never count toward k. k <= 0 falls
// back to the configured top-k.
func (idx *VectorIndex) Search(ctx context.Context, query string, k int, filter types.MetadataFilter) ([]types.SearchResult, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadOrCreateLocked(ctx); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = idx.topK
	}

	queryVec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]types.SearchResult, 0, k)
	for _, entry := range idx.data.Entries {
		if entry.Metadata.Placeholder {
			continue
		}
		if !filter.Matches(entry.Metadata) {
			continue
		}
		results = append(results, types.SearchResult{
			Content:  entry.Content,
			Metadata: entry.Metadata,
			Score:    cosineSimilarity(queryVec, entry.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteByDocID removes every entry belonging to the given document and
// persists the index. Returns the number of removed entries.
func (idx *VectorIndex) DeleteByDocID(docID string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.loaded {
		if err := idx.loadOrCreateLocked(context.Background()); err != nil {
			return 0, err
		}
	}
	kept := idx.data.Entries[:0]
	removed := 0
	for _, entry := range idx.data.Entries {
		if entry.Metadata.DocID == docID && !entry.Metadata.Placeholder {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	idx.data.Entries = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, idx.saveLocked()
}

// Save persists the full index to its directory, fully overwriting the
// prior persisted state.
func (idx *VectorIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.saveLocked()
}

// saveLocked writes to a temp file and renames it over the index file so a
// crash mid-write never leaves a partial index on disk.
func (idx *VectorIndex) saveLocked() error {
	if err := os.MkdirAll(idx.dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	raw, err := json.Marshal(idx.data)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	path := filepath.Join(idx.dir, indexFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace index file: %w", err)
	}
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
