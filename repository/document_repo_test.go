package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/ragdocs-be/types"
)

func newDocumentRepo(t *testing.T) (DocumentRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.json")
	repo, err := NewDocumentRepo(path)
	require.NoError(t, err)
	return repo, path
}

func TestNewDocumentRepoCreatesEmptyCollection(t *testing.T) {
	_, path := newDocumentRepo(t)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var data map[string][]types.DocumentRecord
	require.NoError(t, json.Unmarshal(raw, &data))
	docs, ok := data["documents"]
	assert.True(t, ok)
	assert.Empty(t, docs)
}

func TestDocumentRepoAddAndGet(t *testing.T) {
	repo, _ := newDocumentRepo(t)

	require.NoError(t, repo.Add(types.DocumentRecord{
		ID:       "id-1",
		Filename: "report.pdf",
		FileType: "pdf",
		Tag:      "Finance Document",
		Status:   types.StatusCompleted,
	}))

	record, err := repo.Get("id-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "report.pdf", record.Filename)
	assert.False(t, record.CreatedAt.IsZero())

	record, err = repo.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestDocumentRepoGetByFilename(t *testing.T) {
	repo, _ := newDocumentRepo(t)
	require.NoError(t, repo.Add(types.DocumentRecord{ID: "id-1", Filename: "a.pdf"}))
	require.NoError(t, repo.Add(types.DocumentRecord{ID: "id-2", Filename: "b.docx"}))

	record, err := repo.GetByFilename("b.docx")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "id-2", record.ID)

	record, err = repo.GetByFilename("c.pdf")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestDocumentRepoDelete(t *testing.T) {
	repo, _ := newDocumentRepo(t)
	require.NoError(t, repo.Add(types.DocumentRecord{ID: "id-1", Filename: "a.pdf"}))
	require.NoError(t, repo.Add(types.DocumentRecord{ID: "id-2", Filename: "b.pdf"}))

	require.NoError(t, repo.Delete("id-1"))

	all, err := repo.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "id-2", all[0].ID)

	// Deleting an unknown id leaves the collection unchanged.
	require.NoError(t, repo.Delete("missing"))
	all, err = repo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDocumentRepoSurvivesReopen(t *testing.T) {
	repo, path := newDocumentRepo(t)
	require.NoError(t, repo.Add(types.DocumentRecord{ID: "id-1", Filename: "a.pdf"}))

	reopened, err := NewDocumentRepo(path)
	require.NoError(t, err)
	record, err := reopened.Get("id-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "a.pdf", record.Filename)
}
