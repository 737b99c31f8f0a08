// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

// TextExtractor turns a raw document file into a sequence of text pages.
//
// Implementations may include:
//   - PDF extraction (the default source format)
//   - Plain-text passthrough for testing
//
// Extraction failures surface wrapped in domain.ErrExtraction so the
// ingest pipeline can skip the offending document and continue.
type TextExtractor interface {
	// Extract returns the pages of the document in order.
	// filename is recorded as the Source on every returned page.
	Extract(ctx context.Context, filename string, data []byte) ([]domain.Page, error)
}
