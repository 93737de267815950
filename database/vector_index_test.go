package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/ragdocs-be/types"
)

// mapEmbedder returns a fixed vector per known text and a constant vector
// otherwise, so similarity ordering in tests is fully controlled.
type mapEmbedder struct {
	vectors map[string][]float32
}

func (e *mapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 1, 1}, nil
}

func (e *mapEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newTestIndex(t *testing.T, embedder Embedder) (*VectorIndex, string) {
	t.Helper()
	dir := t.TempDir()
	idx := NewVectorIndex(dir, embedder, 5)
	require.NoError(t, idx.LoadOrCreate(context.Background()))
	return idx, dir
}

func TestLoadOrCreatePersistsPlaceholder(t *testing.T) {
	_, dir := newTestIndex(t, &mapEmbedder{})

	_, err := os.Stat(filepath.Join(dir, indexFileName))
	assert.NoError(t, err)
}

func TestSearchFreshIndexIsEmpty(t *testing.T) {
	idx, _ := newTestIndex(t, &mapEmbedder{})

	for _, k := range []int{0, 1, 100} {
		results, err := idx.Search(context.Background(), "anything", k, types.MetadataFilter{})
		require.NoError(t, err)
		assert.Empty(t, results, "placeholder leaked into results for k=%d", k)
	}
}

func TestAddThenSearchRanksBySimilarity(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"apples are red":    {1, 0, 0},
		"bananas are long":  {0, 1, 0},
		"tell me of apples": {0.9, 0.1, 0},
	}}
	idx, _ := newTestIndex(t, embedder)

	require.NoError(t, idx.Add(context.Background(), []types.DocumentChunk{
		{Content: "apples are red", Metadata: types.ChunkMetadata{DocID: "d1", Tag: "Public Document"}},
		{Content: "bananas are long", Metadata: types.ChunkMetadata{DocID: "d2", Tag: "Finance Document"}},
	}))

	results, err := idx.Search(context.Background(), "tell me of apples", 0, types.MetadataFilter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "apples are red", results[0].Content)
	assert.Greater(t, results[0].Score, results[1].Score)

	results, err = idx.Search(context.Background(), "tell me of apples", 1, types.MetadataFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].Metadata.DocID)
}

func TestSearchAppliesMetadataFilter(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {0, 1, 0},
	}}
	idx, _ := newTestIndex(t, embedder)

	require.NoError(t, idx.Add(context.Background(), []types.DocumentChunk{
		{Content: "a", Metadata: types.ChunkMetadata{DocID: "d1", Tag: "Finance Document"}},
		{Content: "b", Metadata: types.ChunkMetadata{DocID: "d2", Tag: "Public Document"}},
	}))

	results, err := idx.Search(context.Background(), "q", 0, types.MetadataFilter{Tag: "Finance Document"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].Metadata.DocID)

	results, err = idx.Search(context.Background(), "q", 0, types.MetadataFilter{DocID: "d2", Tag: "Finance Document"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAddEmptyIsNoOp(t *testing.T) {
	idx, _ := newTestIndex(t, &mapEmbedder{})
	assert.NoError(t, idx.Add(context.Background(), nil))
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"short": {1, 0},
	}}
	idx, _ := newTestIndex(t, embedder)

	err := idx.Add(context.Background(), []types.DocumentChunk{
		{Content: "short", Metadata: types.ChunkMetadata{DocID: "d1"}},
	})
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestIndexSurvivesReload(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"persisted chunk": {1, 0, 0},
	}}
	idx, dir := newTestIndex(t, embedder)
	require.NoError(t, idx.Add(context.Background(), []types.DocumentChunk{
		{Content: "persisted chunk", Metadata: types.ChunkMetadata{DocID: "d1"}},
	}))

	reloaded := NewVectorIndex(dir, embedder, 5)
	require.NoError(t, reloaded.LoadOrCreate(context.Background()))

	results, err := reloaded.Search(context.Background(), "persisted chunk", 0, types.MetadataFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted chunk", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestDeleteByDocID(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {0, 1, 0},
		"c": {0, 0, 1},
	}}
	idx, dir := newTestIndex(t, embedder)

	require.NoError(t, idx.Add(context.Background(), []types.DocumentChunk{
		{Content: "a", Metadata: types.ChunkMetadata{DocID: "doomed", ChunkIdx: 0}},
		{Content: "b", Metadata: types.ChunkMetadata{DocID: "doomed", ChunkIdx: 1}},
		{Content: "c", Metadata: types.ChunkMetadata{DocID: "kept"}},
	}))

	removed, err := idx.DeleteByDocID("doomed")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = idx.DeleteByDocID("doomed")
	require.NoError(t, err)
	assert.Zero(t, removed)

	// Deletion is persisted.
	reloaded := NewVectorIndex(dir, embedder, 5)
	require.NoError(t, reloaded.LoadOrCreate(context.Background()))
	results, err := reloaded.Search(context.Background(), "anything", 100, types.MetadataFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kept", results[0].Metadata.DocID)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
