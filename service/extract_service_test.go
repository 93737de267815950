package service

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDocx builds a minimal docx container holding the given document.xml
// body content.
func writeDocx(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	doc, err := w.Create("word/document.xml")
	require.NoError(t, err)
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + body + `</w:body>
</w:document>`
	_, err = doc.Write([]byte(xml))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

func TestIsSupportedFileType(t *testing.T) {
	assert.True(t, IsSupportedFileType("pdf"))
	assert.True(t, IsSupportedFileType("docx"))
	assert.False(t, IsSupportedFileType("txt"))
	assert.False(t, IsSupportedFileType(""))
}

func TestExtractRejectsUnknownType(t *testing.T) {
	svc := NewExtractService()
	_, err := svc.Extract("whatever.txt", "txt")
	assert.Error(t, err)
}

func TestExtractDOCXParagraphs(t *testing.T) {
	svc := NewExtractService()
	path := writeDocx(t, t.TempDir(), "doc.docx",
		`<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
<w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>`)

	segments, err := svc.Extract(path, FileTypeDOCX)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 0, segments[0].Page)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", segments[0].Text)
}

func TestExtractDOCXTableAsMarkdown(t *testing.T) {
	svc := NewExtractService()
	path := writeDocx(t, t.TempDir(), "table.docx",
		`<w:p><w:r><w:t>Intro.</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>`)

	segments, err := svc.Extract(path, FileTypeDOCX)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0].Text, "Intro.")
	assert.Contains(t, segments[0].Text, "| Name | Value |")
	assert.Contains(t, segments[0].Text, "| --- | --- |")
	assert.Contains(t, segments[0].Text, "| a | 1 |")
}

func TestExtractDOCXEmptyBody(t *testing.T) {
	svc := NewExtractService()
	path := writeDocx(t, t.TempDir(), "empty.docx", `<w:p></w:p>`)

	segments, err := svc.Extract(path, FileTypeDOCX)
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestExtractDOCXNotAZip(t *testing.T) {
	svc := NewExtractService()
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err := svc.Extract(path, FileTypeDOCX)
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "ab", cleanText("a\u0000b"))
	assert.Equal(t, "ab", cleanText("a\ufffdb"))
	assert.Equal(t, "line one\nline two", cleanText("line one\fline two\r\n"))
	assert.Equal(t, "trimmed", cleanText("  trimmed \n"))
}
