/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	services "github.com/tieubaoca/ragdocs-be/service"
)

var (
	batchUploadDir   string
	batchUploadTag   string
	batchUploadForce bool
)

// batchUploadDocumentCmd represents the batch-upload-document command
var batchUploadDocumentCmd = &cobra.Command{
	Use:   "batch-upload-document",
	Short: "Ingest every supported document in a directory",
	Long: `Walks a directory and ingests every PDF and DOCX file found.
Unsupported files are skipped. Ingestion runs synchronously on a single
worker so the command exits only after every document is searchable.`,
	Run: func(cmd *cobra.Command, args []string) {
		if batchUploadDir == "" {
			log.Fatal("--dir is required")
		}
		stack := buildIngestStack()
		defer stack.ingest.Stop()

		count := 0
		err := filepath.WalkDir(batchUploadDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
			if !services.IsSupportedFileType(ext) {
				log.Printf("Skipping unsupported file: %s", path)
				return nil
			}
			uploadOne(stack, path, batchUploadTag, batchUploadForce)
			count++
			return nil
		})
		if err != nil {
			log.Fatalf("Failed to walk %s: %v", batchUploadDir, err)
		}
		log.Printf("Queued %d document(s) from %s", count, batchUploadDir)
	},
}

func init() {
	rootCmd.AddCommand(batchUploadDocumentCmd)

	batchUploadDocumentCmd.Flags().StringVar(&batchUploadDir, "dir", "", "directory to ingest")
	batchUploadDocumentCmd.Flags().StringVar(&batchUploadTag, "tag", services.DefaultDocumentTag, "document tag applied to every file")
	batchUploadDocumentCmd.Flags().BoolVar(&batchUploadForce, "force", false, "replace already ingested files with the same name")
}
