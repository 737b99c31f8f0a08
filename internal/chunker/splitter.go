// Package chunker splits extracted page text into overlapping chunks
// sized for embedding and retrieval.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

// DefaultChunkSize is the default maximum chunk length in characters.
const DefaultChunkSize = 900

// DefaultChunkOverlap is the default number of characters repeated
// across consecutive chunk boundaries.
const DefaultChunkOverlap = 150

// separators are tried in priority order: paragraph break, line break,
// sentence end, word boundary, hard cut. The empty string always
// matches and cuts mid-word as a last resort.
var separators = []string{"\n\n", "\n", ".", " ", ""}

// Splitter produces chunks no longer than chunkSize characters,
// preferring to break at the highest-priority separator that keeps a
// chunk within budget. Splitting is deterministic: identical input
// yields identical boundaries.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split chunks the given pages. Pages with empty text yield no chunks.
// Chunk indices are ordinal per source document, in page order.
func (s *Splitter) Split(pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	ordinals := make(map[string]int)

	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}

		for _, piece := range s.splitText(text, separators) {
			idx := ordinals[page.Source]
			chunks = append(chunks, domain.Chunk{
				ID:     uuid.New().String(),
				Text:   piece,
				Source: page.Source,
				Page:   page.Number,
				Index:  idx,
			})
			ordinals[page.Source] = idx + 1
		}
	}

	return chunks
}

// splitText recursively splits text using the first separator from seps
// that occurs in it, then merges the resulting pieces back into chunks
// of at most chunkSize characters. Pieces still too large after a split
// are re-split with the remaining lower-priority separators.
func (s *Splitter) splitText(text string, seps []string) []string {
	sep := ""
	var rest []string
	for i, candidate := range seps {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardCut(text)
	}

	// Keep the separator attached to the preceding piece so no
	// characters are lost when pieces are re-joined.
	pieces := strings.SplitAfter(text, sep)

	var out []string
	var pending []string
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if len([]rune(piece)) <= s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		out = append(out, s.merge(pending)...)
		pending = nil
		out = append(out, s.splitText(piece, rest)...)
	}
	return append(out, s.merge(pending)...)
}

// merge greedily packs pieces into chunks up to chunkSize, carrying the
// trailing pieces that fit within the overlap budget into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0

	emit := func() {
		if text := strings.TrimSpace(strings.Join(current, "")); text != "" {
			chunks = append(chunks, text)
		}
	}

	for _, piece := range pieces {
		n := len([]rune(piece))
		if total+n > s.chunkSize && len(current) > 0 {
			emit()
			// Drop leading pieces until what remains fits the overlap
			// budget and leaves room for the incoming piece.
			for total > s.overlap || (total+n > s.chunkSize && total > 0) {
				total -= len([]rune(current[0]))
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if len(current) > 0 {
		emit()
	}
	return chunks
}

// hardCut windows raw runes when no separator fits: chunks of exactly
// chunkSize advancing by chunkSize-overlap, so consecutive chunks share
// exactly overlap characters.
func (s *Splitter) hardCut(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	var out []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
