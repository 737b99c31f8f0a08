package services

import (
	"context"
	"fmt"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/logger"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 4

// Retriever embeds a question and queries a vector index for the most
// similar chunks. A Retriever is bound to one index handle; the
// coordinator hands out a fresh one after every rebuild.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	topK     int
}

// NewRetriever creates a retriever over the given index.
// topK defaults to DefaultTopK when non-positive.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
	}
}

// Retrieve returns up to topK chunks relevant to the question, ordered
// by descending similarity.
//
// When allowedSources is non-empty the filter is applied after
// retrieval, over the already-ranked window. A chunk from an allowed
// source ranked below the window can therefore be missed; to soften
// this the index is queried with a widened k when a filter is present.
func (r *Retriever) Retrieve(ctx context.Context, question string, allowedSources []string) ([]domain.ScoredChunk, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	k := r.topK
	if len(allowedSources) > 0 {
		// Widened window to compensate for post-filtering.
		k = r.topK * 3
	}
	logger.Debug("Retrieving top-%d for question (%d dims)", k, len(vector))

	hits, err := r.index.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	if len(allowedSources) == 0 {
		return hits, nil
	}

	allowed := make(map[string]struct{}, len(allowedSources))
	for _, s := range allowedSources {
		allowed[s] = struct{}{}
	}

	filtered := make([]domain.ScoredChunk, 0, r.topK)
	for _, hit := range hits {
		if _, ok := allowed[hit.Chunk.Source]; !ok {
			continue
		}
		filtered = append(filtered, hit)
		if len(filtered) == r.topK {
			break
		}
	}
	logger.Debug("Source filter kept %d of %d hits", len(filtered), len(hits))
	return filtered, nil
}
