package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/askdoc/internal/adapters/driven/index/memory"
	"github.com/halcyon-labs/askdoc/internal/chunker"
	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/textproc"
)

// writeSourceDir creates a directory containing the named files with
// placeholder bytes. Extraction is mocked, so content is irrelevant.
func writeSourceDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4 stub"), 0600))
	}
	return dir
}

func newTestIngestor(dir string, extractor driven.TextExtractor, embedder driven.EmbeddingService, store driven.DocumentStore) *Ingestor {
	pipeline := textproc.NewPipeline(textproc.NewSanitizer())
	splitter := chunker.New(chunker.WithChunkSize(40), chunker.WithOverlap(5))
	return NewIngestor(dir, extractor, pipeline, splitter, embedder, store)
}

func memoryFactory() driven.VectorIndex { return memory.New() }

func TestIngestor_Build(t *testing.T) {
	dir := writeSourceDir(t, "one.pdf", "two.pdf", "notes.txt")

	extractor := &mockExtractor{pages: map[string][]domain.Page{
		"one.pdf": {
			{Source: "one.pdf", Number: 1, Text: "The sky is blue."},
			{Source: "one.pdf", Number: 2, Text: "Water is wet."},
		},
		"two.pdf": {
			{Source: "two.pdf", Number: 1, Text: "Grass is green."},
		},
	}}
	embedder := newMockEmbedder(3)
	store := newMockDocStore()

	ing := newTestIngestor(dir, extractor, embedder, store)
	stats, index, err := ing.Build(context.Background(), memoryFactory)

	require.NoError(t, err)
	require.NotNil(t, index)
	assert.Equal(t, 2, stats.Documents, "non-pdf files are ignored")
	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 3, stats.Chunks)
	assert.Equal(t, 2, extractor.calls)

	size, err := index.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	// Catalog rows carry checksums and per-document chunk counts.
	doc, err := store.Get(context.Background(), "one.pdf")
	require.NoError(t, err)
	assert.Len(t, doc.SHA256, 64)
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, 2, doc.Chunks)
	assert.Positive(t, doc.SizeBytes)
	assert.False(t, doc.IngestedAt.IsZero())
}

func TestIngestor_EmptyDirectoryKeepsIndex(t *testing.T) {
	dir := writeSourceDir(t)

	ing := newTestIngestor(dir, &mockExtractor{}, newMockEmbedder(3), nil)
	stats, index, err := ing.Build(context.Background(), memoryFactory)

	require.NoError(t, err)
	assert.Nil(t, index, "zero-chunk pass must not produce a replacement index")
	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Chunks)
}

func TestIngestor_MissingDirectory(t *testing.T) {
	ing := newTestIngestor(filepath.Join(t.TempDir(), "nope"), &mockExtractor{}, newMockEmbedder(3), nil)

	_, _, err := ing.Build(context.Background(), memoryFactory)

	assert.Error(t, err)
}

func TestIngestor_SkipsFailingDocument(t *testing.T) {
	dir := writeSourceDir(t, "bad.pdf", "good.pdf")

	extractor := &mockExtractor{
		pages: map[string][]domain.Page{
			"good.pdf": {{Source: "good.pdf", Number: 1, Text: "Readable content."}},
		},
		errs: map[string]error{
			"bad.pdf": domain.ErrExtraction,
		},
	}

	ing := newTestIngestor(dir, extractor, newMockEmbedder(3), nil)
	stats, index, err := ing.Build(context.Background(), memoryFactory)

	require.NoError(t, err, "one bad document must not sink the pass")
	require.NotNil(t, index)
	assert.Equal(t, 1, stats.Documents)
}

func TestIngestor_EmbedFailureAborts(t *testing.T) {
	dir := writeSourceDir(t, "one.pdf")

	extractor := &mockExtractor{pages: map[string][]domain.Page{
		"one.pdf": {{Source: "one.pdf", Number: 1, Text: "Some content here."}},
	}}
	embedder := newMockEmbedder(3)
	embedder.batchErr = domain.ErrEmbedding

	ing := newTestIngestor(dir, extractor, embedder, nil)
	_, index, err := ing.Build(context.Background(), memoryFactory)

	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Nil(t, index)
}

func TestIngestor_VectorCountMismatch(t *testing.T) {
	dir := writeSourceDir(t, "one.pdf")

	extractor := &mockExtractor{pages: map[string][]domain.Page{
		"one.pdf": {{Source: "one.pdf", Number: 1, Text: "Some content here."}},
	}}
	embedder := newMockEmbedder(3)
	embedder.batchOverride = [][]float32{{1, 0, 0}, {0, 1, 0}} // one chunk, two vectors

	ing := newTestIngestor(dir, extractor, embedder, nil)
	_, _, err := ing.Build(context.Background(), memoryFactory)

	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestIngestor_DimensionMismatch(t *testing.T) {
	dir := writeSourceDir(t, "one.pdf")

	extractor := &mockExtractor{pages: map[string][]domain.Page{
		"one.pdf": {{Source: "one.pdf", Number: 1, Text: "Some content here."}},
	}}
	embedder := newMockEmbedder(3)
	embedder.batchOverride = [][]float32{{1, 0}} // model says 3 dims

	ing := newTestIngestor(dir, extractor, embedder, nil)
	_, _, err := ing.Build(context.Background(), memoryFactory)

	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestIngestor_ConcurrentBuildRejected(t *testing.T) {
	dir := writeSourceDir(t, "one.pdf")

	extractor := &mockExtractor{pages: map[string][]domain.Page{
		"one.pdf": {{Source: "one.pdf", Number: 1, Text: "Some content here."}},
	}}

	ing := newTestIngestor(dir, extractor, newMockEmbedder(3), nil)

	// Hold the lock as a concurrent pass would.
	require.True(t, ing.mu.TryLock())
	_, _, err := ing.Build(context.Background(), memoryFactory)
	ing.mu.Unlock()

	assert.ErrorIs(t, err, domain.ErrIngestInProgress)
}

func TestIngestor_CatalogFailureIsNotFatal(t *testing.T) {
	dir := writeSourceDir(t, "one.pdf")

	extractor := &mockExtractor{pages: map[string][]domain.Page{
		"one.pdf": {{Source: "one.pdf", Number: 1, Text: "Some content here."}},
	}}
	store := newMockDocStore()
	store.upsertErr = errors.New("disk full")

	ing := newTestIngestor(dir, extractor, newMockEmbedder(3), store)
	_, index, err := ing.Build(context.Background(), memoryFactory)

	require.NoError(t, err)
	assert.NotNil(t, index)
}

func TestIngestor_Deterministic(t *testing.T) {
	dir := writeSourceDir(t, "b.pdf", "a.pdf")

	extractor := &mockExtractor{pages: map[string][]domain.Page{
		"a.pdf": {{Source: "a.pdf", Number: 1, Text: "Alpha content."}},
		"b.pdf": {{Source: "b.pdf", Number: 1, Text: "Bravo content."}},
	}}
	embedder := newMockEmbedder(3)
	embedder.vectors["Alpha content."] = []float32{1, 0, 0}
	embedder.vectors["Bravo content."] = []float32{0, 1, 0}

	ing := newTestIngestor(dir, extractor, embedder, nil)

	run := func() []domain.ScoredChunk {
		_, index, err := ing.Build(context.Background(), memoryFactory)
		require.NoError(t, err)
		hits, err := index.Query(context.Background(), []float32{1, 0, 0}, 2)
		require.NoError(t, err)
		return hits
	}

	first := run()
	second := run()

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	// Same ranking and metadata across passes; chunk IDs are fresh.
	for i := range first {
		assert.Equal(t, first[i].Chunk.Source, second[i].Chunk.Source)
		assert.Equal(t, first[i].Chunk.Text, second[i].Chunk.Text)
		assert.Equal(t, first[i].Chunk.Index, second[i].Chunk.Index)
	}
	assert.Equal(t, "a.pdf", first[0].Chunk.Source)
}
