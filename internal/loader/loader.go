// Package loader extracts per-page text from the source book.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"bookrag/internal/domain"
)

// pageBreak separates pages in plain-text exports.
const pageBreak = "\f"

// Load reads path as a PDF, or as form-feed separated text for .txt files.
func Load(path string) ([]domain.Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return LoadText(f)
	default:
		return LoadPDF(path)
	}
}

// LoadPDF returns one Page per PDF page numbered from 1. Pages whose text
// cannot be extracted are kept with empty text so numbering stays aligned.
func LoadPDF(path string) ([]domain.Page, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := reader.NumPage()
	pages := make([]domain.Page, 0, n)
	for i := 1; i <= n; i++ {
		page := domain.Page{Number: i}
		p := reader.Page(i)
		if !p.V.IsNull() {
			if text, err := p.GetPlainText(nil); err == nil {
				page.Text = text
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// LoadText splits r on form feeds, numbering the pieces from 1.
func LoadText(r io.Reader) ([]domain.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	parts := strings.Split(string(data), pageBreak)
	pages := make([]domain.Page, len(parts))
	for i, text := range parts {
		pages[i] = domain.Page{Number: i + 1, Text: text}
	}
	return pages, nil
}
