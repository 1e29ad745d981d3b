package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"business-assistant-backend/internal/logger"

	"github.com/ledongthuc/pdf"
)

// DocumentExtractor turns knowledge-base documents into plain text.
// Plain-text formats are read directly; PDFs go through ledongthuc/pdf.
// Satisfies rag.Extractor.
type DocumentExtractor struct{}

func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

// 50MB cap keeps a single oversized upload from exhausting memory.
const maxDocumentSize = 50 << 20

func (e *DocumentExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat document: %w", err)
	}
	if stat.Size() > maxDocumentSize {
		return "", fmt.Errorf("document too large for in-memory extraction: %d bytes", stat.Size())
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(path)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}

func (e *DocumentExtractor) extractPDF(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF file: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("failed to extract text from page", "path", path, "page", i, "error", err)
			continue
		}

		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n\n")
		}
		textBuilder.WriteString(text)
	}

	extracted := textBuilder.String()
	if len(strings.TrimSpace(extracted)) == 0 {
		return "", fmt.Errorf("no text extracted from %s", path)
	}
	return extracted, nil
}
