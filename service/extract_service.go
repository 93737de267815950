package service

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tieubaoca/ragdocs-be/types"
)

const (
	FileTypePDF  = "pdf"
	FileTypeDOCX = "docx"
)

// SupportedFileTypes is the upload allow-list. Unsupported types are
// rejected before a job is created.
var SupportedFileTypes = []string{FileTypePDF, FileTypeDOCX}

func IsSupportedFileType(fileType string) bool {
	for _, t := range SupportedFileTypes {
		if t == fileType {
			return true
		}
	}
	return false
}

// ExtractService turns source files into ordered text segments. PDF pages
// go through pdftotext with an OCR fallback; DOCX bodies are read straight
// from the document XML with tables rendered as markdown.
type ExtractService struct{}

func NewExtractService() *ExtractService {
	return &ExtractService{}
}

// Extract returns the extractable text segments of the file, one per PDF
// page or one for the whole DOCX body. An empty slice means the file holds
// no extractable text; that is not an error.
func (s *ExtractService) Extract(filePath, fileType string) ([]types.ExtractedSegment, error) {
	switch fileType {
	case FileTypePDF:
		return s.extractPDF(filePath)
	case FileTypeDOCX:
		return s.extractDOCX(filePath)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
}

func (s *ExtractService) extractPDF(filePath string) ([]types.ExtractedSegment, error) {
	totalPages, err := getNumPages(filePath)
	if err != nil {
		return nil, err
	}

	var segments []types.ExtractedSegment
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := s.extractPageText(filePath, pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			continue // Skip failed pages instead of failing the document
		}
		text = cleanText(text)
		if text == "" {
			continue
		}
		segments = append(segments, types.ExtractedSegment{Text: text, Page: pageNum})
	}
	return segments, nil
}

// extractPageText tries pdftotext first and falls back to OCR for pages
// with no text layer.
func (s *ExtractService) extractPageText(filePath string, pageNumber int) (string, error) {
	text, err := extractTextWithPdftotext(filePath, pageNumber)
	if err != nil || text == "" {
		text, err = extractTextWithTesseract(filePath, pageNumber)
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
	}
	return text, nil
}

// extractTextWithPdftotext extracts a single page. The -layout flag keeps
// column alignment so tabular content survives as readable plain text.
func extractTextWithPdftotext(filePath string, pageNumber int) (string, error) {
	cmd := exec.Command("pdftotext",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-layout", "-enc", "UTF-8", "-nopgbrk",
		filePath, "-")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error executing pdftotext for page %d: %w", pageNumber, err)
	}
	return strings.TrimSpace(out.String()), nil
}

// extractTextWithTesseract rasterizes the page with pdftoppm and runs OCR.
func extractTextWithTesseract(pdfPath string, pageNumber int) (string, error) {
	tempDir, err := os.MkdirTemp("", "ragdocs-ocr-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	convertCmd := exec.Command("pdftoppm",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-png", pdfPath, filepath.Join(tempDir, "page"))
	if err := convertCmd.Run(); err != nil {
		return "", fmt.Errorf("error converting page %d to image: %w", pageNumber, err)
	}

	images, err := filepath.Glob(filepath.Join(tempDir, "page-*.png"))
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("failed to read image files for page %d", pageNumber)
	}

	ocrCmd := exec.Command("tesseract", images[0], "stdout", "--oem", "3", "--psm", "3")
	var ocrOut bytes.Buffer
	ocrCmd.Stdout = &ocrOut
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	text := strings.TrimSpace(ocrOut.String())
	if text == "" {
		return "", fmt.Errorf("got nothing at page %d", pageNumber)
	}
	return text, nil
}

// getNumPages uses pdfinfo to get the total number of pages in a PDF file.
func getNumPages(pdfPath string) (int, error) {
	cmd := exec.Command("pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %w", err)
	}

	scanner := bufio.NewScanner(&out)
	re := regexp.MustCompile(`Pages:\s+(\d+)`)
	for scanner.Scan() {
		if matches := re.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}
	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

func cleanText(text string) string {
	replacements := [][2]string{
		{"\u0000", ""}, // Null character
		{"\ufffd", ""}, // Unicode replacement character
		{"\u001b", ""}, // Escape character
		{"\r", ""},     // Carriage return
		{"\f", "\n"},   // Form feed to newline
	}
	cleaned := text
	for _, r := range replacements {
		cleaned = strings.ReplaceAll(cleaned, r[0], r[1])
	}
	return strings.TrimSpace(cleaned)
}

// DOCX bodies live in word/document.xml inside the zip container. The token
// walk below keeps paragraphs and tables in document order.

func (s *ExtractService) extractDOCX(filePath string) ([]types.ExtractedSegment, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx container: %w", err)
	}
	defer reader.Close()

	var docXML []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open document.xml: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read document.xml: %w", err)
		}
		break
	}
	if docXML == nil {
		return nil, nil
	}

	blocks, err := parseDocumentXML(docXML)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, nil
	}
	return []types.ExtractedSegment{{Text: strings.Join(blocks, "\n\n")}}, nil
}

// parseDocumentXML walks the body and returns one string per paragraph or
// table. Table cells contain paragraphs of their own, so paragraph text is
// only collected at depth zero.
func parseDocumentXML(raw []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var blocks []string
	var paragraph strings.Builder
	var table [][]string
	var cell strings.Builder
	var row []string
	tableDepth := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					table = nil
				}
			case "tr":
				if tableDepth == 1 {
					row = nil
				}
			case "tc":
				if tableDepth == 1 {
					cell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					paragraph.Reset()
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth == 1 {
					if md := tableToMarkdown(table); md != "" {
						blocks = append(blocks, md)
					}
				}
				tableDepth--
			case "tr":
				if tableDepth == 1 {
					table = append(table, row)
				}
			case "tc":
				if tableDepth == 1 {
					row = append(row, strings.TrimSpace(cell.String()))
				}
			case "p":
				if tableDepth == 0 {
					if text := strings.TrimSpace(paragraph.String()); text != "" {
						blocks = append(blocks, text)
					}
				}
			}
		case xml.CharData:
			if tableDepth > 0 {
				cell.Write(t)
			} else {
				paragraph.Write(t)
			}
		}
	}
	return blocks, nil
}

func tableToMarkdown(rows [][]string) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}
	header := rows[0]
	var lines []string
	lines = append(lines, "| "+strings.Join(header, " | ")+" |")
	separators := make([]string, len(header))
	for i := range separators {
		separators[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(separators, " | ")+" |")
	for _, row := range rows[1:] {
		cells := make([]string, len(header))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}
