package driven

import (
	"context"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

// DocumentStore persists the catalog of ingested documents.
// The catalog is bookkeeping only: retrieval runs against the
// VectorIndex, not the store.
type DocumentStore interface {
	// Upsert inserts or replaces the catalog row for a document,
	// keyed by filename.
	Upsert(ctx context.Context, doc domain.Document) error

	// Get returns the catalog row for a filename.
	// Returns domain.ErrNotFound if the document is not catalogued.
	Get(ctx context.Context, filename string) (*domain.Document, error)

	// List returns all catalogued documents ordered by filename.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes the catalog row for a filename.
	Delete(ctx context.Context, filename string) error

	// Close releases resources.
	Close() error
}
