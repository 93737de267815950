/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/ragdocs-be/config"
	"github.com/tieubaoca/ragdocs-be/database"
	"github.com/tieubaoca/ragdocs-be/handler"
	"github.com/tieubaoca/ragdocs-be/repository"
	"github.com/tieubaoca/ragdocs-be/service"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document QA server",
	Long:  `Starts the HTTP server that handles document uploads, retrieval queries and chat sessions`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		// Embedder and vector index are process-wide singletons: constructed
		// once here and injected everywhere.
		embedder := service.NewEmbeddingService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		vectorIndex := database.NewVectorIndex(cfg.IndexDir(), embedder, cfg.TopK)
		if err := vectorIndex.LoadOrCreate(context.Background()); err != nil {
			log.Fatalf("Failed to load vector index: %v", err)
		}

		docRepo, err := repository.NewDocumentRepo(cfg.MetadataFile())
		if err != nil {
			log.Fatalf("Failed to open document registry: %v", err)
		}
		feedbackRepo, err := repository.NewFeedbackRepo(cfg.FeedbackFile())
		if err != nil {
			log.Fatalf("Failed to open feedback log: %v", err)
		}
		sessionRepo, err := repository.NewSessionRepo(cfg.SessionsDir())
		if err != nil {
			log.Fatalf("Failed to open session store: %v", err)
		}

		extractService := service.NewExtractService()
		chunkerService := service.NewChunkerService(cfg.ChunkSize, cfg.ChunkOverlap, cfg.ChunksDebugDir())

		ingestService := service.NewIngestService(extractService, chunkerService, vectorIndex, docRepo, cfg.IngestQueue)
		ingestService.Start(cfg.IngestWorkers)

		aiService := buildAIService(cfg)
		queryService := service.NewQueryService(vectorIndex, feedbackRepo, aiService)
		fileService := service.NewFileService(cfg.RawDir(), docRepo, vectorIndex, ingestService)
		wsService := service.NewWebSocketService(queryService, sessionRepo)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(fileService)
		documentHandler := handler.NewDocumentHandler(docRepo, fileService)
		sessionHandler := handler.NewSessionHandler(sessionRepo)
		queryHandler := handler.NewQueryHandler(queryService, sessionRepo)
		feedbackHandler := handler.NewFeedbackHandler(feedbackRepo)
		searchHandler := handler.NewSearchHandler(vectorIndex)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{"app": "ragdocs-be"})
		})
		router.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		router.POST("/sessions", sessionHandler.CreateSession)
		router.GET("/sessions", sessionHandler.ListSessions)
		router.GET("/sessions/:id", sessionHandler.GetSession)
		router.DELETE("/sessions/:id", sessionHandler.DeleteSession)

		router.POST("/query", queryHandler.HandleQuery)
		router.POST("/search", searchHandler.HandleSearch)
		router.POST("/feedback", feedbackHandler.SubmitFeedback)

		router.GET("/ingest/tags", uploadHandler.TagsHandler)
		router.POST("/ingest/upload", uploadHandler.UploadDocumentHandler)
		router.GET("/ingest/documents", documentHandler.ListDocuments)
		router.GET("/ingest/documents/:id", documentHandler.GetDocument)
		router.DELETE("/ingest/documents/:id", documentHandler.DeleteDocument)

		router.GET("/ws/chat", func(c *gin.Context) {
			wsService.HandleChat(c.Writer, c.Request)
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func buildAIService(cfg *config.Config) service.AIService {
	switch cfg.AIBackend {
	case "gemini":
		keys := strings.Split(cfg.GeminiAPIKey, ",")
		gemini, err := service.NewGeminiService(keys, cfg.Model)
		if err != nil {
			log.Fatalf("Failed to create Gemini service: %v", err)
		}
		return gemini
	default:
		return service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
	}
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
