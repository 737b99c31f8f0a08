// Package pdf provides a text extractor adapter for PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor extracts per-page plain text from PDF bytes.
type Extractor struct{}

// New creates a PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns one Page per PDF page carrying extractable text.
// Corrupt or unsupported input fails with domain.ErrExtraction.
func (e *Extractor) Extract(_ context.Context, filename string, data []byte) (pages []domain.Page, err error) {
	// The pdf library panics on some malformed files; turn that into
	// an extraction error so one bad upload cannot take the process down.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %s: parser panic: %v", domain.ErrExtraction, filename, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
	}

	total := reader.NumPage()
	for num := 1; num <= total; num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page is not fatal to the document.
			logger.Warn("%s: page %d unreadable: %v", filename, num, err)
			continue
		}

		pages = append(pages, domain.Page{
			Source: filename,
			Number: num,
			Text:   text,
		})
	}

	if len(pages) == 0 && total > 0 {
		return nil, fmt.Errorf("%w: %s: no extractable text", domain.ErrExtraction, filename)
	}
	return pages, nil
}
