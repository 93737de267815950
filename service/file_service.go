package service

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tieubaoca/ragdocs-be/database"
	"github.com/tieubaoca/ragdocs-be/repository"
	"github.com/tieubaoca/ragdocs-be/types"
	"github.com/tieubaoca/ragdocs-be/utils"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidTag          = errors.New("invalid document tag")
)

// DocumentTags is the fixed set of classification labels a document may
// carry. Chunks inherit the tag and it is usable as a retrieval filter.
var DocumentTags = []string{"Finance Document", "Business Document", "Public Document"}

const DefaultDocumentTag = "Public Document"

func IsValidTag(tag string) bool {
	for _, t := range DocumentTags {
		if t == tag {
			return true
		}
	}
	return false
}

// FileService owns the upload path: validation, filename deduplication,
// writing the backing file and handing the job to the ingestion pool. It is
// the sole writer of files under the raw directory.
type FileService struct {
	rawDir string
	docs   repository.DocumentRepo
	index  database.VectorDatabase
	ingest *IngestService
}

func NewFileService(
	rawDir string,
	docs repository.DocumentRepo,
	index database.VectorDatabase,
	ingest *IngestService,
) *FileService {
	if err := os.MkdirAll(rawDir, 0755); err != nil {
		panic(err)
	}
	return &FileService{
		rawDir: rawDir,
		docs:   docs,
		index:  index,
		ingest: ingest,
	}
}

// Upload validates the file, applies the dedup policy and enqueues an
// ingestion job. A filename that already has a registry record is rejected
// (the existing id is returned) unless force is set, in which case the old
// record, its backing file and its index entries are removed first.
func (s *FileService) Upload(filename string, content io.Reader, tag string, force bool) (*types.UploadResponse, error) {
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !IsSupportedFileType(fileType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileType)
	}
	if tag == "" {
		tag = DefaultDocumentTag
	}
	if !IsValidTag(tag) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTag, tag)
	}

	existing, err := s.docs.GetByFilename(filename)
	if err != nil {
		return nil, err
	}
	if existing != nil && !force {
		return &types.UploadResponse{
			DocumentID: existing.ID,
			Filename:   filename,
			Message:    "exists",
		}, nil
	}
	if existing != nil && force {
		if err := s.replaceExisting(existing); err != nil {
			return nil, err
		}
	}

	docID := uuid.New().String()
	path := filepath.Join(s.rawDir, fmt.Sprintf("%s.%s", docID, fileType))
	if err := utils.WriteFileFrom(path, content); err != nil {
		return nil, err
	}

	s.ingest.Enqueue(IngestJob{
		DocID:    docID,
		FilePath: path,
		Filename: filename,
		FileType: fileType,
		Tag:      tag,
	})

	return &types.UploadResponse{
		DocumentID: docID,
		Filename:   filename,
		Tag:        tag,
		Message:    "processing",
	}, nil
}

// replaceExisting clears out a superseded document: registry record,
// backing file and its vector index entries.
func (s *FileService) replaceExisting(existing *types.DocumentRecord) error {
	if err := s.docs.Delete(existing.ID); err != nil {
		return err
	}
	if existing.FilePath != "" {
		if err := os.Remove(existing.FilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove backing file: %w", err)
		}
	}
	removed, err := s.index.DeleteByDocID(existing.ID)
	if err != nil {
		return fmt.Errorf("failed to remove stale index entries: %w", err)
	}
	if removed > 0 {
		log.Printf("Removed %d stale index entries for %s", removed, existing.Filename)
	}
	return nil
}

// DeleteDocument removes a document's registry record, backing file and
// index entries.
func (s *FileService) DeleteDocument(id string) error {
	doc, err := s.docs.Get(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	return s.replaceExisting(doc)
}
