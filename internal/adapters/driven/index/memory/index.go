// Package memory provides an in-process vector index with exact cosine
// similarity search. It is the default index backend and the one used
// in tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry stores a chunk with its pre-computed vector norm.
type entry struct {
	chunk  domain.Chunk
	vector []float32
	norm   float64
}

// generation is one immutable snapshot of the index contents.
type generation struct {
	entries []entry
	dims    int
}

// Index is an in-memory vector index. Rebuild swaps in a fresh
// immutable snapshot atomically, so concurrent Query calls always see
// either the previous or the new contents, never a partial build.
type Index struct {
	current atomic.Pointer[generation]
}

// New creates an empty index.
func New() *Index {
	idx := &Index{}
	idx.current.Store(&generation{})
	return idx
}

// Rebuild replaces the index contents.
func (i *Index) Rebuild(_ context.Context, idxEntries []domain.IndexEntry) error {
	gen := &generation{entries: make([]entry, 0, len(idxEntries))}

	for _, e := range idxEntries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("%w: empty vector for chunk %s", domain.ErrIndex, e.Chunk.ID)
		}
		if gen.dims == 0 {
			gen.dims = len(e.Vector)
		} else if len(e.Vector) != gen.dims {
			return fmt.Errorf("%w: vector dimension %d does not match index dimension %d",
				domain.ErrConfig, len(e.Vector), gen.dims)
		}
		n := norm(e.Vector)
		if n == 0 {
			return fmt.Errorf("%w: zero vector for chunk %s", domain.ErrIndex, e.Chunk.ID)
		}
		gen.entries = append(gen.entries, entry{
			chunk:  e.Chunk,
			vector: e.Vector,
			norm:   n,
		})
	}

	i.current.Store(gen)
	return nil
}

// Query returns up to k entries nearest to the vector by cosine
// similarity, descending. Ties break by insertion order, which keeps
// results deterministic.
func (i *Index) Query(_ context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	gen := i.current.Load()
	if len(gen.entries) == 0 {
		return nil, nil
	}
	if len(vector) != gen.dims {
		return nil, fmt.Errorf("%w: query dimension %d does not match index dimension %d",
			domain.ErrConfig, len(vector), gen.dims)
	}

	qn := norm(vector)
	if qn == 0 {
		return nil, fmt.Errorf("%w: zero query vector", domain.ErrIndex)
	}

	type scored struct {
		pos   int
		score float64
	}
	hits := make([]scored, len(gen.entries))
	for pos, e := range gen.entries {
		hits[pos] = scored{pos: pos, score: dot(vector, e.vector) / (qn * e.norm)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})

	if k > len(hits) {
		k = len(hits)
	}
	out := make([]domain.ScoredChunk, k)
	for idx := 0; idx < k; idx++ {
		out[idx] = domain.ScoredChunk{
			Chunk: gen.entries[hits[idx].pos].chunk,
			Score: hits[idx].score,
		}
	}
	return out, nil
}

// Size returns the number of entries in the current snapshot.
func (i *Index) Size(_ context.Context) (int, error) {
	return len(i.current.Load().entries), nil
}

// Close releases nothing; the index lives on the heap.
func (i *Index) Close() error {
	return nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for n := range a {
		sum += float64(a[n]) * float64(b[n])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
