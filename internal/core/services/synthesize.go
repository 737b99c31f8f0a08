package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/logger"
)

// FallbackAnswer is returned when retrieval produced no chunks.
// No LLM call is made in that case.
const FallbackAnswer = "I couldn't find anything relevant in the ingested documents."

// DefaultSystemPrompt fixes the model's grounding behaviour. Grounding
// is a prompt-level instruction, not enforced in code.
const DefaultSystemPrompt = `You are a document question-answering assistant.
Answer the question using only the provided context.
If the context covers the question partially, answer the part it covers.
If the context is unrelated to the question, reply exactly: "I don't know based on this document."
Be concise.`

// contextSeparator joins retrieved chunk texts into one context block.
const contextSeparator = "\n\n---\n\n"

// Synthesizer builds a grounded prompt from retrieved chunks and asks
// the LLM for an answer.
type Synthesizer struct {
	llm          driven.LLMClient
	systemPrompt string
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithSystemPrompt replaces the default grounding prompt. Empty values
// are ignored.
func WithSystemPrompt(prompt string) SynthesizerOption {
	return func(s *Synthesizer) {
		if prompt != "" {
			s.systemPrompt = prompt
		}
	}
}

// NewSynthesizer creates a synthesizer over the given LLM client.
func NewSynthesizer(llm driven.LLMClient, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{llm: llm, systemPrompt: DefaultSystemPrompt}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize answers the question from the retrieved chunks. Chunk
// texts enter the context block in ranked order, and the returned
// sources list mirrors that order.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, hits []domain.ScoredChunk) (domain.Answer, error) {
	if len(hits) == 0 {
		logger.Debug("No retrieval hits, returning fallback answer")
		return domain.Answer{Text: FallbackAnswer, Sources: []domain.SourceRef{}}, nil
	}

	blocks := make([]string, len(hits))
	sources := make([]domain.SourceRef, len(hits))
	for i, hit := range hits {
		blocks[i] = hit.Chunk.Text
		sources[i] = hit.Chunk.Ref()
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s",
		strings.Join(blocks, contextSeparator), question)

	logger.Debug("Synthesizing answer from %d chunks (%d prompt chars)", len(hits), len(userPrompt))
	text, err := s.llm.Complete(ctx, s.systemPrompt, userPrompt)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("complete answer: %w", err)
	}

	return domain.Answer{Text: strings.TrimSpace(text), Sources: sources}, nil
}
