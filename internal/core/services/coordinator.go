package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driving"
	"github.com/halcyon-labs/askdoc/internal/logger"
)

// Ensure Coordinator implements the driving ports.
var (
	_ driving.QAService     = (*Coordinator)(nil)
	_ driving.IngestService = (*Coordinator)(nil)
)

// Coordinator is the single entry point of the pipeline. It owns the
// live vector index handle behind a read-mostly lock: Ask calls capture
// the current handle, Ingest builds a fresh index and swaps it in under
// the write lock. An in-flight Ask keeps answering against the handle
// it captured, so readers observe the fully-old or fully-new index and
// never a partial rebuild.
type Coordinator struct {
	embedder driven.EmbeddingService
	llm      driven.LLMClient
	synth    *Synthesizer
	ingestor *Ingestor

	// newIndex supplies index instances for rebuilds. An implementation
	// backed by a shared remote collection may return the same handle
	// every time; the swap then degenerates to a no-op.
	newIndex func() driven.VectorIndex

	topK int

	mu    sync.RWMutex
	index driven.VectorIndex
	ready bool
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithAnswerPrompt replaces the default system prompt used for answer
// synthesis. Empty values are ignored.
func WithAnswerPrompt(prompt string) CoordinatorOption {
	return func(c *Coordinator) {
		c.synth = NewSynthesizer(c.llm, WithSystemPrompt(prompt))
	}
}

// NewCoordinator wires the pipeline. All collaborators are required;
// a missing one is a configuration error and the coordinator refuses
// to be constructed.
func NewCoordinator(
	embedder driven.EmbeddingService,
	llm driven.LLMClient,
	ingestor *Ingestor,
	newIndex func() driven.VectorIndex,
	topK int,
	opts ...CoordinatorOption,
) (*Coordinator, error) {
	switch {
	case embedder == nil:
		return nil, fmt.Errorf("%w: embedding service is required", domain.ErrConfig)
	case llm == nil:
		return nil, fmt.Errorf("%w: llm client is required", domain.ErrConfig)
	case ingestor == nil:
		return nil, fmt.Errorf("%w: ingestor is required", domain.ErrConfig)
	case newIndex == nil:
		return nil, fmt.Errorf("%w: index factory is required", domain.ErrConfig)
	}

	if topK <= 0 {
		topK = DefaultTopK
	}

	c := &Coordinator{
		embedder: embedder,
		llm:      llm,
		synth:    NewSynthesizer(llm),
		ingestor: ingestor,
		newIndex: newIndex,
		topK:     topK,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start verifies the collaborators are reachable and binds the initial
// index handle. Ask and Ingest fail with domain.ErrNotReady until Start
// has completed successfully.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.embedder.Ping(ctx); err != nil {
		return fmt.Errorf("%w: embedding service unreachable: %v", domain.ErrConfig, err)
	}
	if err := c.llm.Ping(ctx); err != nil {
		return fmt.Errorf("%w: llm unreachable: %v", domain.ErrConfig, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		c.index = c.newIndex()
	}
	c.ready = true
	logger.Info("Pipeline ready (embedding=%s, llm=%s)", c.embedder.ModelName(), c.llm.ModelName())
	return nil
}

// Ask answers a question over the currently-live index.
func (c *Coordinator) Ask(ctx context.Context, question string, allowedSources []string) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	index, err := c.currentIndex()
	if err != nil {
		return domain.Answer{}, err
	}

	retriever := NewRetriever(c.embedder, index, c.topK)
	hits, err := retriever.Retrieve(ctx, question, allowedSources)
	if err != nil {
		return domain.Answer{}, err
	}

	return c.synth.Synthesize(ctx, question, hits)
}

// Ingest rebuilds the index from the source directory and, when the
// pass produced chunks, swaps the fresh index into service. The swap is
// the reload: once Ingest returns, subsequent Ask calls see the new
// documents.
func (c *Coordinator) Ingest(ctx context.Context) (driving.IngestStats, error) {
	if _, err := c.currentIndex(); err != nil {
		return driving.IngestStats{}, err
	}

	stats, fresh, err := c.ingestor.Build(ctx, c.newIndex)
	if err != nil {
		return stats, err
	}
	if fresh == nil {
		// Zero-chunk pass: the live index stays as it was.
		return stats, nil
	}

	c.mu.Lock()
	old := c.index
	c.index = fresh
	c.mu.Unlock()

	if old != nil && old != fresh {
		if err := old.Close(); err != nil {
			logger.Warn("Closing previous index: %v", err)
		}
	}
	return stats, nil
}

// IndexSize reports the number of entries in the live index.
func (c *Coordinator) IndexSize(ctx context.Context) (int, error) {
	index, err := c.currentIndex()
	if err != nil {
		return 0, err
	}
	return index.Size(ctx)
}

func (c *Coordinator) currentIndex() (driven.VectorIndex, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready || c.index == nil {
		return nil, domain.ErrNotReady
	}
	return c.index, nil
}
