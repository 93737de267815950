package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tieubaoca/ragdocs-be/types"
)

// DocumentRepo is the durable registry of uploaded documents. Lookups by id
// and by filename; at most one record per filename is the caller's invariant
// (enforced by the upload dedup check).
type DocumentRepo interface {
	Add(record types.DocumentRecord) error
	Get(id string) (*types.DocumentRecord, error)
	GetByFilename(filename string) (*types.DocumentRecord, error)
	ListAll() ([]types.DocumentRecord, error)
	Delete(id string) error
}

type documentCollection struct {
	Documents []types.DocumentRecord `json:"documents"`
}

type documentRepo struct {
	mu   sync.Mutex
	path string
}

// NewDocumentRepo opens the JSON collection at path, creating an empty one
// if it does not exist.
func NewDocumentRepo(path string) (DocumentRepo, error) {
	repo := &documentRepo{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := repo.write(documentCollection{Documents: []types.DocumentRecord{}}); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *documentRepo) Add(record types.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.read()
	if err != nil {
		return err
	}
	record.CreatedAt = time.Now().UTC()
	data.Documents = append(data.Documents, record)
	return r.write(data)
}

func (r *documentRepo) Get(id string) (*types.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.read()
	if err != nil {
		return nil, err
	}
	for i := range data.Documents {
		if data.Documents[i].ID == id {
			return &data.Documents[i], nil
		}
	}
	return nil, nil
}

func (r *documentRepo) GetByFilename(filename string) (*types.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.read()
	if err != nil {
		return nil, err
	}
	for i := range data.Documents {
		if data.Documents[i].Filename == filename {
			return &data.Documents[i], nil
		}
	}
	return nil, nil
}

func (r *documentRepo) ListAll() ([]types.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.read()
	if err != nil {
		return nil, err
	}
	return data.Documents, nil
}

// Delete removes the record only. Removing the backing file is the caller's
// responsibility.
func (r *documentRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.read()
	if err != nil {
		return err
	}
	kept := data.Documents[:0]
	for _, d := range data.Documents {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	data.Documents = kept
	return r.write(data)
}

func (r *documentRepo) read() (documentCollection, error) {
	var data documentCollection
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return data, fmt.Errorf("failed to read document registry: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("failed to parse document registry: %w", err)
	}
	return data, nil
}

func (r *documentRepo) write(data documentCollection) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document registry: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write document registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace document registry: %w", err)
	}
	return nil
}
