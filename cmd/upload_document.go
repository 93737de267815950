/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	services "github.com/tieubaoca/ragdocs-be/service"
)

var (
	uploadFilePath string
	uploadTag      string
	uploadForce    bool
)

// uploadDocumentCmd represents the upload-document command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Ingest a single document from disk",
	Long: `Extracts, chunks and indexes one PDF or DOCX file without going
through the HTTP API. Ingestion runs synchronously; the command exits
after the document is searchable.`,
	Run: func(cmd *cobra.Command, args []string) {
		if uploadFilePath == "" {
			log.Fatal("--file is required")
		}
		stack := buildIngestStack()
		defer stack.ingest.Stop()

		uploadOne(stack, uploadFilePath, uploadTag, uploadForce)
	},
}

func uploadOne(stack *ingestStack, path, tag string, force bool) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	result, err := stack.files.Upload(filepath.Base(path), f, tag, force)
	if err != nil {
		log.Fatalf("Upload failed for %s: %v", path, err)
	}
	if result.Message == "exists" {
		log.Printf("Skipping %s: already ingested as %s (use --force to replace)", path, result.DocumentID)
		return
	}
	log.Printf("Queued %s (id=%s, tag=%s)", path, result.DocumentID, result.Tag)
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringVar(&uploadFilePath, "file", "", "path to the document to ingest")
	uploadDocumentCmd.Flags().StringVar(&uploadTag, "tag", services.DefaultDocumentTag, "document tag")
	uploadDocumentCmd.Flags().BoolVar(&uploadForce, "force", false, "replace an already ingested file with the same name")
}
