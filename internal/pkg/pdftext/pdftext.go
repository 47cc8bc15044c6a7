// Package pdftext pulls plain text out of uploaded PDF documents.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrNotPDF = errors.New("not a PDF document")
	ErrNoText = errors.New("no text found in PDF")
)

// Extractor turns document bytes into text, optionally limited to pages.
type Extractor interface {
	Extract(data []byte, pages PageSet) (string, error)
}

// Reader is the ledongthuc/pdf backed Extractor.
type Reader struct{}

// Extract returns the text of the selected pages (all when pages is nil),
// pages separated by a blank line. Pages that fail to decode are skipped.
func (Reader) Extract(data []byte, pages PageSet) (text string, err error) {
	if !LooksLikePDF(data) {
		return "", ErrNotPDF
	}
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	total := doc.NumPage()
	for i := 1; i <= total; i++ {
		if !pages.Contains(i) {
			continue
		}
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(content)
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", ErrNoText
	}
	return b.String(), nil
}

// LooksLikePDF checks the %PDF- magic bytes.
func LooksLikePDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
