package textproc

import (
	"context"
	"strings"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

// Sanitizer strips NUL bytes and non-printing control characters that
// PDF extractors commonly emit, and drops pages left empty afterwards.
type Sanitizer struct{}

// NewSanitizer creates a sanitizer processor.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Name returns the processor name.
func (s *Sanitizer) Name() string {
	return "sanitizer"
}

// Process cleans every page's text, keeping common whitespace.
func (s *Sanitizer) Process(_ context.Context, pages []domain.Page) ([]domain.Page, error) {
	out := make([]domain.Page, 0, len(pages))
	for _, page := range pages {
		page.Text = Clean(page.Text)
		if page.Text == "" {
			continue
		}
		out = append(out, page)
	}
	return out, nil
}

// Clean removes control characters from s, preserving newlines, carriage
// returns and tabs, and trims surrounding whitespace.
func Clean(s string) string {
	if s == "" {
		return s
	}

	s = strings.ReplaceAll(s, "\x00", "")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}
