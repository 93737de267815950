package service

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tieubaoca/ragdocs-be/types"
)

// ChunkerService splits extracted text into overlapping, size-bounded
// segments. Splitting is fully deterministic: the same text and
// configuration always yield the same chunk sequence, which keeps
// re-ingestion idempotent.
type ChunkerService struct {
	chunkSize    int // Maximum size of each chunk, in runes
	chunkOverlap int // Overlap between consecutive chunks, in runes
	debugDir     string
}

func NewChunkerService(chunkSize, chunkOverlap int, debugDir string) *ChunkerService {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &ChunkerService{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		debugDir:     debugDir,
	}
}

// ChunkText splits text into segments of at most chunkSize runes with
// chunkOverlap runes of overlap, cutting at the best boundary available:
// paragraph break, newline, sentence end, word gap, then a hard cut.
func (s *ChunkerService) ChunkText(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.chunkSize {
		return []string{string(runes)}
	}

	var chunks []string
	pos := 0
	for pos < len(runes) {
		end := pos + s.chunkSize
		if end >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[pos:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findSplitPoint(runes, pos, end)
		if chunk := strings.TrimSpace(string(runes[pos:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - s.chunkOverlap
		if next <= pos {
			next = cut // Ensure we make progress
		}
		pos = next
	}
	return chunks
}

// findSplitPoint looks backwards from end for a natural boundary inside
// (start, end]. Returns end when the window has no boundary at all.
func findSplitPoint(runes []rune, start, end int) int {
	// Paragraph break
	for i := end; i > start+1; i-- {
		if runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	// Line break
	for i := end; i > start; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	// Sentence end
	for i := end; i > start; i-- {
		r := runes[i-1]
		if r == '.' || r == '?' || r == '!' {
			return i
		}
	}
	// Word boundary
	for i := end; i > start; i-- {
		if runes[i-1] == ' ' {
			return i
		}
	}
	// Hard cut
	return end
}

// DumpChunks writes a human-readable dump of a document's chunks for
// inspection. Diagnostic only; failures are logged and ignored.
func (s *ChunkerService) DumpChunks(docID string, chunks []types.DocumentChunk) {
	if s.debugDir == "" || docID == "" {
		return
	}
	if err := os.MkdirAll(s.debugDir, 0755); err != nil {
		log.Printf("Warning: failed to create chunks debug directory: %v", err)
		return
	}
	var b strings.Builder
	for i, chunk := range chunks {
		b.WriteString(strings.Repeat("=", 60) + "\n")
		b.WriteString(fmt.Sprintf("Chunk %d:\n", i+1))
		b.WriteString(fmt.Sprintf("Metadata: %+v\n", chunk.Metadata))
		b.WriteString(strings.Repeat("=", 60) + "\n")
		b.WriteString(chunk.Content)
		b.WriteString("\n\n")
	}
	path := filepath.Join(s.debugDir, docID+"_chunks.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		log.Printf("Warning: failed to write chunks debug file: %v", err)
	}
}
