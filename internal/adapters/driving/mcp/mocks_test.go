package mcp

import (
	"context"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driving"
)

// mockQAService implements driving.QAService for testing.
type mockQAService struct {
	answer       domain.Answer
	err          error
	lastQuestion string
	lastSources  []string
}

func (m *mockQAService) Ask(_ context.Context, question string, sources []string) (domain.Answer, error) {
	m.lastQuestion = question
	m.lastSources = sources
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	return m.answer, nil
}

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	stats driving.IngestStats
	err   error
	calls int
}

func (m *mockIngestService) Ingest(_ context.Context) (driving.IngestStats, error) {
	m.calls++
	if m.err != nil {
		return driving.IngestStats{}, m.err
	}
	return m.stats, nil
}

// mockDocStore implements driven.DocumentStore for testing.
type mockDocStore struct {
	docs []domain.Document
	err  error
}

func (m *mockDocStore) Upsert(context.Context, domain.Document) error { return nil }
func (m *mockDocStore) Get(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}
func (m *mockDocStore) List(context.Context) ([]domain.Document, error) { return m.docs, m.err }
func (m *mockDocStore) Delete(context.Context, string) error            { return nil }
func (m *mockDocStore) Close() error                                    { return nil }
