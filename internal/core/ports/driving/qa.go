// Package driving provides interfaces for callers of the application core (primary/inbound ports).
package driving

import (
	"context"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

// QAService answers natural-language questions over the ingested corpus.
type QAService interface {
	// Ask retrieves relevant chunks for the question and synthesises a
	// grounded answer. When allowedSources is non-empty, results are
	// restricted to chunks from those filenames.
	//
	// An empty question returns domain.ErrInvalidInput. Calls made
	// before initialisation completes return domain.ErrNotReady.
	Ask(ctx context.Context, question string, allowedSources []string) (domain.Answer, error)
}

// IngestStats summarises a completed ingest run.
type IngestStats struct {
	// Documents is the number of source files successfully extracted.
	Documents int `json:"documents"`

	// Pages is the total number of pages loaded.
	Pages int `json:"pages"`

	// Chunks is the total number of chunks indexed.
	Chunks int `json:"chunks"`
}

// IngestService rebuilds the vector index from the source directory.
type IngestService interface {
	// Ingest enumerates the PDF documents in the source directory,
	// extracts, chunks and embeds their text, and atomically replaces
	// the index the QAService queries. A run that produces zero chunks
	// leaves the existing index untouched.
	//
	// Concurrent calls are serialised: a second call made while one is
	// running returns domain.ErrIngestInProgress.
	Ingest(ctx context.Context) (IngestStats, error)
}
