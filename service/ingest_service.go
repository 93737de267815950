package service

import (
	"context"
	"log"
	"sync"

	"github.com/tieubaoca/ragdocs-be/database"
	"github.com/tieubaoca/ragdocs-be/repository"
	"github.com/tieubaoca/ragdocs-be/types"
)

// IngestJob carries everything a worker needs to process one uploaded
// document.
type IngestJob struct {
	DocID    string
	FilePath string
	Filename string
	FileType string
	Tag      string
}

// IngestService drives a document through extraction, chunking, indexing
// and the terminal registry write. Jobs run on a fixed worker pool so
// uploads never spawn a goroutine per request; with one worker (the
// default) index writes are naturally serialized.
type IngestService struct {
	extract *ExtractService
	chunker *ChunkerService
	index   database.VectorDatabase
	docs    repository.DocumentRepo

	jobs chan IngestJob
	wg   sync.WaitGroup
	once sync.Once
}

func NewIngestService(
	extract *ExtractService,
	chunker *ChunkerService,
	index database.VectorDatabase,
	docs repository.DocumentRepo,
	queueSize int,
) *IngestService {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &IngestService{
		extract: extract,
		chunker: chunker,
		index:   index,
		docs:    docs,
		jobs:    make(chan IngestJob, queueSize),
	}
}

// Start launches the worker pool. Call once during wiring.
func (s *IngestService) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	s.once.Do(func() {
		for i := 0; i < workers; i++ {
			s.wg.Add(1)
			go s.worker()
		}
	})
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (s *IngestService) Stop() {
	close(s.jobs)
	s.wg.Wait()
}

// Enqueue hands a job to the pool without blocking the upload request
// beyond queue backpressure.
func (s *IngestService) Enqueue(job IngestJob) {
	s.jobs <- job
}

func (s *IngestService) worker() {
	defer s.wg.Done()
	for job := range s.jobs {
		s.Process(context.Background(), job)
	}
}

// Process runs one ingestion job to its terminal state. Every failure is
// captured into a failed registry record; nothing escapes the job boundary.
// The registry record is written exactly once, with the terminal status.
func (s *IngestService) Process(ctx context.Context, job IngestJob) {
	log.Printf("Processing: %s (id=%s, tag=%s)", job.Filename, job.DocID, job.Tag)

	segments, err := s.extract.Extract(job.FilePath, job.FileType)
	if err != nil {
		log.Printf("Error extracting %s: %v", job.Filename, err)
		s.recordFailure(job, err)
		return
	}
	log.Printf("Extracted %d segment(s) from %s", len(segments), job.Filename)

	chunks := s.buildChunks(job, segments)
	log.Printf("Created %d chunks for %s", len(chunks), job.Filename)
	s.chunker.DumpChunks(job.DocID, chunks)

	// Durability point: only after Add returns are the chunks searchable.
	if err := s.index.Add(ctx, chunks); err != nil {
		log.Printf("Error indexing %s: %v", job.Filename, err)
		s.recordFailure(job, err)
		return
	}

	if err := s.docs.Add(types.DocumentRecord{
		ID:         job.DocID,
		Filename:   job.Filename,
		FileType:   job.FileType,
		FilePath:   job.FilePath,
		Tag:        job.Tag,
		ChunkCount: len(chunks),
		Status:     types.StatusCompleted,
	}); err != nil {
		log.Printf("Error recording %s: %v", job.Filename, err)
		return
	}
	log.Printf("Done processing: %s", job.Filename)
}

// buildChunks splits every extracted segment and tags the chunks with the
// document metadata. chunk_idx is contiguous from 0 across the whole
// document, assigned after splitting and before embedding.
func (s *IngestService) buildChunks(job IngestJob, segments []types.ExtractedSegment) []types.DocumentChunk {
	var chunks []types.DocumentChunk
	idx := 0
	for _, segment := range segments {
		for _, text := range s.chunker.ChunkText(segment.Text) {
			chunks = append(chunks, types.DocumentChunk{
				Content: text,
				Metadata: types.ChunkMetadata{
					DocID:    job.DocID,
					Filename: job.Filename,
					FileType: job.FileType,
					Tag:      job.Tag,
					ChunkIdx: idx,
					Page:     segment.Page,
				},
			})
			idx++
		}
	}
	return chunks
}

func (s *IngestService) recordFailure(job IngestJob, cause error) {
	if err := s.docs.Add(types.DocumentRecord{
		ID:       job.DocID,
		Filename: job.Filename,
		FileType: job.FileType,
		FilePath: job.FilePath,
		Tag:      job.Tag,
		Status:   types.StatusFailed,
		Error:    cause.Error(),
	}); err != nil {
		log.Printf("Error recording failure for %s: %v", job.Filename, err)
	}
}
