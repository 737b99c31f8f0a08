package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/halcyon-labs/askdoc/internal/chunker"
	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driving"
	"github.com/halcyon-labs/askdoc/internal/logger"
	"github.com/halcyon-labs/askdoc/internal/textproc"
)

// Ingestor runs one full ingest pass: enumerate PDFs in the source
// directory, extract and clean their pages, chunk, embed, and rebuild a
// vector index. The caller (the Coordinator) owns swapping the rebuilt
// index into service.
type Ingestor struct {
	sourceDir string
	extractor driven.TextExtractor
	pipeline  *textproc.Pipeline
	splitter  *chunker.Splitter
	embedder  driven.EmbeddingService

	// docStore is optional catalog bookkeeping; catalog failures are
	// logged, never fatal to the ingest.
	docStore driven.DocumentStore

	mu sync.Mutex
}

// NewIngestor creates an ingestor over the given source directory.
// docStore may be nil.
func NewIngestor(
	sourceDir string,
	extractor driven.TextExtractor,
	pipeline *textproc.Pipeline,
	splitter *chunker.Splitter,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
) *Ingestor {
	return &Ingestor{
		sourceDir: sourceDir,
		extractor: extractor,
		pipeline:  pipeline,
		splitter:  splitter,
		embedder:  embedder,
		docStore:  docStore,
	}
}

// sourceFile tracks per-document bookkeeping across the pass.
type sourceFile struct {
	filename string
	sha256   string
	size     int64
	pages    int
}

// Build runs one ingest pass. newIndex supplies the index instance to
// rebuild into; the returned index is fully built and ready to serve.
//
// A pass that yields zero chunks returns a nil index and no error: the
// live index must not be replaced by an empty rebuild. Extraction
// failure for a single document skips that document; embedding or
// rebuild failure aborts the whole pass.
//
// Only one Build runs at a time; a second concurrent call returns
// domain.ErrIngestInProgress.
func (n *Ingestor) Build(ctx context.Context, newIndex func() driven.VectorIndex) (driving.IngestStats, driven.VectorIndex, error) {
	var stats driving.IngestStats

	if !n.mu.TryLock() {
		return stats, nil, domain.ErrIngestInProgress
	}
	defer n.mu.Unlock()

	logger.Section("Ingest")
	logger.Info("Scanning %s", n.sourceDir)

	entries, err := os.ReadDir(n.sourceDir)
	if err != nil {
		return stats, nil, fmt.Errorf("read source directory: %w", err)
	}

	var allPages []domain.Page
	var files []sourceFile

	// os.ReadDir returns entries sorted by name, which keeps chunk
	// order deterministic across passes.
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		path := filepath.Join(n.sourceDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", entry.Name(), err)
			continue
		}

		pages, err := n.extractor.Extract(ctx, entry.Name(), data)
		if err != nil {
			// Partial-failure tolerance: one bad document must not
			// sink the rest of the corpus.
			logger.Warn("Skipping %s: %v", entry.Name(), err)
			continue
		}

		pages, err = n.pipeline.Run(ctx, pages)
		if err != nil {
			logger.Warn("Skipping %s: %v", entry.Name(), err)
			continue
		}

		sum := sha256.Sum256(data)
		files = append(files, sourceFile{
			filename: entry.Name(),
			sha256:   hex.EncodeToString(sum[:]),
			size:     int64(len(data)),
			pages:    len(pages),
		})
		allPages = append(allPages, pages...)

		stats.Documents++
		stats.Pages += len(pages)
		logger.Debug("Extracted %s: %d pages", entry.Name(), len(pages))
	}

	chunks := n.splitter.Split(allPages)
	stats.Chunks = len(chunks)
	if len(chunks) == 0 {
		logger.Warn("No chunks produced, leaving existing index untouched")
		return stats, nil, nil
	}
	logger.Info("Created %d chunks from %d pages", len(chunks), stats.Pages)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := n.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return stats, nil, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return stats, nil, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			domain.ErrEmbedding, len(vectors), len(chunks))
	}
	if dims := n.embedder.Dimensions(); dims > 0 {
		for _, v := range vectors {
			if len(v) != dims {
				return stats, nil, fmt.Errorf("%w: embedding dimension %d does not match model dimension %d",
					domain.ErrConfig, len(v), dims)
			}
		}
	}

	idxEntries := make([]domain.IndexEntry, len(chunks))
	for i := range chunks {
		idxEntries[i] = domain.IndexEntry{Chunk: chunks[i], Vector: vectors[i]}
	}

	index := newIndex()
	if err := index.Rebuild(ctx, idxEntries); err != nil {
		index.Close() //nolint:errcheck
		return stats, nil, fmt.Errorf("rebuild index: %w", err)
	}
	logger.Info("Index rebuilt with %d entries", len(idxEntries))

	n.updateCatalog(ctx, files, chunks)
	return stats, index, nil
}

// updateCatalog upserts per-document rows. Bookkeeping only: failures
// are logged and the ingest result stands.
func (n *Ingestor) updateCatalog(ctx context.Context, files []sourceFile, chunks []domain.Chunk) {
	if n.docStore == nil {
		return
	}

	perSource := make(map[string]int)
	for _, c := range chunks {
		perSource[c.Source]++
	}

	now := time.Now().UTC()
	for _, f := range files {
		doc := domain.Document{
			Filename:   f.filename,
			SHA256:     f.sha256,
			SizeBytes:  f.size,
			Pages:      f.pages,
			Chunks:     perSource[f.filename],
			IngestedAt: now,
		}
		if err := n.docStore.Upsert(ctx, doc); err != nil {
			logger.Warn("Catalog update for %s failed: %v", f.filename, err)
		}
	}
}
