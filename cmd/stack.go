/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"

	"github.com/tieubaoca/ragdocs-be/config"
	"github.com/tieubaoca/ragdocs-be/database"
	"github.com/tieubaoca/ragdocs-be/repository"
	"github.com/tieubaoca/ragdocs-be/service"
)

// ingestStack is the minimal wiring the CLI ingestion commands need:
// no HTTP layer, no generator, a single worker so Stop drains everything
// in order before the process exits.
type ingestStack struct {
	files  *service.FileService
	ingest *service.IngestService
}

func buildIngestStack() *ingestStack {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	embedder := service.NewEmbeddingService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	vectorIndex := database.NewVectorIndex(cfg.IndexDir(), embedder, cfg.TopK)
	if err := vectorIndex.LoadOrCreate(context.Background()); err != nil {
		log.Fatalf("Failed to load vector index: %v", err)
	}

	docRepo, err := repository.NewDocumentRepo(cfg.MetadataFile())
	if err != nil {
		log.Fatalf("Failed to open document registry: %v", err)
	}

	extractService := service.NewExtractService()
	chunkerService := service.NewChunkerService(cfg.ChunkSize, cfg.ChunkOverlap, cfg.ChunksDebugDir())

	ingestService := service.NewIngestService(extractService, chunkerService, vectorIndex, docRepo, cfg.IngestQueue)
	ingestService.Start(1)

	fileService := service.NewFileService(cfg.RawDir(), docRepo, vectorIndex, ingestService)

	return &ingestStack{
		files:  fileService,
		ingest: ingestService,
	}
}
