package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

func entryWith(id string, vector []float32) domain.IndexEntry {
	return domain.IndexEntry{
		Chunk:  domain.Chunk{ID: id, Text: "text-" + id, Source: id + ".pdf"},
		Vector: vector,
	}
}

// TestQuery_Empty tests that an empty index returns no hits
func TestQuery_Empty(t *testing.T) {
	idx := New()
	hits, err := idx.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	size, err := idx.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

// TestQuery_Ranking tests descending cosine similarity ordering
func TestQuery_Ranking(t *testing.T) {
	idx := New()
	err := idx.Rebuild(context.Background(), []domain.IndexEntry{
		entryWith("far", []float32{0, 1}),
		entryWith("near", []float32{1, 0.1}),
		entryWith("exact", []float32{1, 0}),
	})
	require.NoError(t, err)

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "exact", hits[0].Chunk.ID)
	assert.Equal(t, "near", hits[1].Chunk.ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

// TestQuery_FewerThanK tests that k larger than the index is not an error
func TestQuery_FewerThanK(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Rebuild(context.Background(), []domain.IndexEntry{
		entryWith("only", []float32{1, 0}),
	}))

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

// TestQuery_DimensionMismatch tests that a mismatched query vector is a
// configuration error, not a silent miss
func TestQuery_DimensionMismatch(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Rebuild(context.Background(), []domain.IndexEntry{
		entryWith("a", []float32{1, 0, 0}),
	}))

	_, err := idx.Query(context.Background(), []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

// TestRebuild_MixedDimensions tests rejection of inconsistent entries
func TestRebuild_MixedDimensions(t *testing.T) {
	idx := New()
	err := idx.Rebuild(context.Background(), []domain.IndexEntry{
		entryWith("a", []float32{1, 0}),
		entryWith("b", []float32{1, 0, 0}),
	})
	assert.ErrorIs(t, err, domain.ErrConfig)
}

// TestRebuild_Replaces tests that rebuild is a full replacement
func TestRebuild_Replaces(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx, []domain.IndexEntry{
		entryWith("old-1", []float32{1, 0}),
		entryWith("old-2", []float32{0, 1}),
	}))
	require.NoError(t, idx.Rebuild(ctx, []domain.IndexEntry{
		entryWith("new", []float32{1, 1}),
	}))

	size, err := idx.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	hits, err := idx.Query(ctx, []float32{1, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Chunk.ID)
}

// TestConcurrentRebuildAndQuery tests that readers observe either the
// old or the new generation, never a count in between
func TestConcurrentRebuildAndQuery(t *testing.T) {
	idx := New()
	ctx := context.Background()

	oldGen := make([]domain.IndexEntry, 3)
	for i := range oldGen {
		oldGen[i] = entryWith(fmt.Sprintf("old-%d", i), []float32{1, float32(i)})
	}
	newGen := make([]domain.IndexEntry, 7)
	for i := range newGen {
		newGen[i] = entryWith(fmt.Sprintf("new-%d", i), []float32{1, float32(i)})
	}
	require.NoError(t, idx.Rebuild(ctx, oldGen))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			size, err := idx.Size(ctx)
			assert.NoError(t, err)
			assert.Contains(t, []int{3, 7}, size, "observed a partially built index")
		}
	}()

	for range 50 {
		require.NoError(t, idx.Rebuild(ctx, newGen))
		require.NoError(t, idx.Rebuild(ctx, oldGen))
	}
	close(stop)
	wg.Wait()
}
