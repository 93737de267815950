package types

import "time"

// Document ingestion status values. A record is only ever written with a
// terminal status; "pending" exists for API responses before the job lands.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DocumentRecord is one row of the document registry.
type DocumentRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	FilePath   string    `json:"file_path"`
	Tag        string    `json:"tag"`
	ChunkCount int       `json:"chunk_count"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExtractedSegment is one unit of text produced by the extractors, typically
// a page for PDF or the whole body for DOCX.
type ExtractedSegment struct {
	Text string
	Page int // 1-based page number, 0 when the format has no pages
}

// ChunkMetadata travels with every chunk into the vector index and back out
// with search results.
type ChunkMetadata struct {
	DocID       string `json:"doc_id"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type"`
	Tag         string `json:"tag"`
	ChunkIdx    int    `json:"chunk_idx"`
	Page        int    `json:"page,omitempty"`
	Placeholder bool   `json:"is_placeholder,omitempty"`
}

// DocumentChunk is a bounded text segment derived from a source document,
// the unit stored in the vector index.
type DocumentChunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// SearchResult is one vector index hit, ordered best-first by similarity.
type SearchResult struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
	Score    float64       `json:"score"`
}

// MetadataFilter restricts search candidates to entries whose metadata
// matches every non-empty field exactly. The zero value matches everything.
type MetadataFilter struct {
	DocID    string `json:"doc_id,omitempty"`
	Filename string `json:"filename,omitempty"`
	FileType string `json:"file_type,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

func (f MetadataFilter) IsZero() bool {
	return f.DocID == "" && f.Filename == "" && f.FileType == "" && f.Tag == ""
}

func (f MetadataFilter) Matches(m ChunkMetadata) bool {
	if f.DocID != "" && f.DocID != m.DocID {
		return false
	}
	if f.Filename != "" && f.Filename != m.Filename {
		return false
	}
	if f.FileType != "" && f.FileType != m.FileType {
		return false
	}
	if f.Tag != "" && f.Tag != m.Tag {
		return false
	}
	return true
}
