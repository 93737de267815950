package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/ragdocs-be/repository"
	"github.com/tieubaoca/ragdocs-be/types"
)

func newTestFileService(t *testing.T) (*FileService, repository.DocumentRepo, *fakeIndex, string) {
	t.Helper()
	dir := t.TempDir()
	docs, err := repository.NewDocumentRepo(filepath.Join(dir, "metadata.json"))
	require.NoError(t, err)
	index := &fakeIndex{}
	// Queue is never started: jobs stay buffered so tests can assert on
	// the upload behavior alone.
	ingest := NewIngestService(NewExtractService(), NewChunkerService(1000, 200, ""), index, docs, 16)
	rawDir := filepath.Join(dir, "raw")
	return NewFileService(rawDir, docs, index, ingest), docs, index, rawDir
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc, _, _, _ := newTestFileService(t)

	_, err := svc.Upload("notes.txt", strings.NewReader("x"), "", false)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestUploadRejectsUnknownTag(t *testing.T) {
	svc, _, _, _ := newTestFileService(t)

	_, err := svc.Upload("doc.pdf", strings.NewReader("x"), "Secret Document", false)
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestUploadDefaultsTag(t *testing.T) {
	svc, _, _, rawDir := newTestFileService(t)

	result, err := svc.Upload("doc.pdf", strings.NewReader("content"), "", false)
	require.NoError(t, err)
	assert.Equal(t, DefaultDocumentTag, result.Tag)
	assert.Equal(t, "processing", result.Message)
	assert.NotEmpty(t, result.DocumentID)

	// The backing file is named by document id, not by the upload name.
	raw, err := os.ReadFile(filepath.Join(rawDir, result.DocumentID+".pdf"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(raw))
}

func TestUploadDuplicateFilenameReturnsExisting(t *testing.T) {
	svc, docs, _, _ := newTestFileService(t)
	require.NoError(t, docs.Add(types.DocumentRecord{
		ID:       "existing-id",
		Filename: "doc.pdf",
		Status:   types.StatusCompleted,
	}))

	result, err := svc.Upload("doc.pdf", strings.NewReader("new content"), "", false)
	require.NoError(t, err)
	assert.Equal(t, "exists", result.Message)
	assert.Equal(t, "existing-id", result.DocumentID)
}

func TestUploadForceReplacesExisting(t *testing.T) {
	svc, docs, index, rawDir := newTestFileService(t)

	oldPath := filepath.Join(rawDir, "old-id.pdf")
	require.NoError(t, os.MkdirAll(rawDir, 0755))
	require.NoError(t, os.WriteFile(oldPath, []byte("old"), 0644))
	require.NoError(t, docs.Add(types.DocumentRecord{
		ID:       "old-id",
		Filename: "doc.pdf",
		FilePath: oldPath,
		Status:   types.StatusCompleted,
	}))
	index.chunks = []types.DocumentChunk{
		{Content: "stale", Metadata: types.ChunkMetadata{DocID: "old-id"}},
		{Content: "other", Metadata: types.ChunkMetadata{DocID: "unrelated"}},
	}

	result, err := svc.Upload("doc.pdf", strings.NewReader("new"), "", true)
	require.NoError(t, err)
	assert.Equal(t, "processing", result.Message)
	assert.NotEqual(t, "old-id", result.DocumentID)

	// Old record, backing file and index entries are gone.
	old, err := docs.Get("old-id")
	require.NoError(t, err)
	assert.Nil(t, old)
	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	require.Len(t, index.chunks, 1)
	assert.Equal(t, "unrelated", index.chunks[0].Metadata.DocID)
}

func TestDeleteDocument(t *testing.T) {
	svc, docs, index, rawDir := newTestFileService(t)

	path := filepath.Join(rawDir, "del-id.pdf")
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0644))
	require.NoError(t, docs.Add(types.DocumentRecord{
		ID:       "del-id",
		Filename: "gone.pdf",
		FilePath: path,
		Status:   types.StatusCompleted,
	}))
	index.chunks = []types.DocumentChunk{
		{Content: "c", Metadata: types.ChunkMetadata{DocID: "del-id"}},
	}

	require.NoError(t, svc.DeleteDocument("del-id"))

	record, err := docs.Get("del-id")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Empty(t, index.chunks)

	// Deleting an unknown id is a no-op.
	assert.NoError(t, svc.DeleteDocument("no-such-id"))
}
