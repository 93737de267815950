package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileFrom streams content into a new file at path, creating parent
// directories as needed.
func WriteFileFrom(path string, content io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %v", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, content); err != nil {
		return fmt.Errorf("failed to copy file: %v", err)
	}
	return nil
}
