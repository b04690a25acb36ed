// Package document loads the local file that will be uploaded for analysis
// and extracts its plain text for previews and offline fallback processing.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPreviewChars bounds the text held in memory for very large documents.
const maxPreviewChars = 400_000

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// Document is a locally loaded file ready for upload.
type Document struct {
	Path        string
	DisplayName string
	// Text is the extracted plain text, whitespace-normalized. Empty when
	// extraction failed (scanned PDFs without a text layer, binary files).
	Text string
	Data []byte
}

// Load reads the file at path. PDFs get their text layer extracted; anything
// else is treated as plain text.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("document %s is empty", path)
	}

	doc := &Document{
		Path:        path,
		DisplayName: filepath.Base(path),
		Data:        data,
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := extractPDFText(path)
		if err != nil {
			// A PDF without an extractable text layer still uploads fine;
			// only local previews and fallback processing degrade.
			doc.Text = ""
			return doc, nil
		}
		doc.Text = text
	} else {
		doc.Text = normalizeWhitespace(string(data))
	}
	if len(doc.Text) > maxPreviewChars {
		doc.Text = doc.Text[:maxPreviewChars]
	}
	return doc, nil
}

func extractPDFText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return normalizeWhitespace(builder.String()), nil
}

func normalizeWhitespace(s string) string {
	return extraneousWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
