package mcp

import (
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// QA answers questions over the document corpus.
	QA driving.QAService

	// Ingest triggers re-ingestion of the source directory.
	Ingest driving.IngestService

	// Documents lists the ingested document catalog. Optional.
	Documents driven.DocumentStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.QA == nil {
		return ErrMissingQAService
	}
	// Ingest and Documents are optional
	return nil
}
