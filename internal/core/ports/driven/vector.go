package driven

import (
	"context"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

// VectorIndex stores (vector, chunk) pairs and answers nearest-neighbour
// queries by cosine similarity.
//
// The index is rebuilt wholesale on every ingest rather than updated
// incrementally. Implementations must make Rebuild atomic with respect
// to concurrent Query calls: a reader sees either the previous contents
// or the new contents, never a partial build.
type VectorIndex interface {
	// Rebuild replaces the entire index contents with the given entries.
	Rebuild(ctx context.Context, entries []domain.IndexEntry) error

	// Query returns up to k chunks nearest to the query vector, ordered
	// by descending similarity. Fewer than k results (including zero)
	// are returned when the index is smaller than k.
	Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error)

	// Size returns the number of entries currently in the index.
	Size(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
