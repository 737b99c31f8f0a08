// Package textproc provides page-level text processing run during ingest.
package textproc

import (
	"context"
	"fmt"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

// Processor transforms extracted pages before chunking.
type Processor interface {
	// Name identifies the processor in error messages.
	Name() string

	// Process returns the transformed pages. A processor may drop pages
	// (e.g. pages left empty after cleaning) but must preserve order.
	Process(ctx context.Context, pages []domain.Page) ([]domain.Page, error)
}

// Pipeline chains processors and runs them in order.
type Pipeline struct {
	processors []Processor
}

// NewPipeline creates a pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run passes the pages through all processors in order.
func (p *Pipeline) Run(ctx context.Context, pages []domain.Page) ([]domain.Page, error) {
	for _, proc := range p.processors {
		var err error
		pages, err = proc.Process(ctx, pages)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", proc.Name(), err)
		}
	}
	return pages, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor Processor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
