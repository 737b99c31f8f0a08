package cli

import (
	"context"
	"time"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driving"
)

type mockQAService struct {
	answer domain.Answer
	err    error
	calls  int
}

func (m *mockQAService) Ask(_ context.Context, _ string, _ []string) (domain.Answer, error) {
	m.calls++
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	return m.answer, nil
}

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

type mockDocStore struct {
	docs []domain.Document
	err  error
}

func (m *mockDocStore) Upsert(_ context.Context, _ domain.Document) error { return nil }

func (m *mockDocStore) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocStore) List(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockDocStore) Delete(_ context.Context, _ string) error { return nil }

func (m *mockDocStore) Close() error { return nil }

// setupTestServices wires mock services into the command tree and
// returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldQA := qaService
	oldIngest := ingestService
	oldDocs := documentStore
	oldSizer := indexSizer
	oldStart := startFn
	oldSourceDir := sourceDir
	oldServerAddr := serverAddr

	qaService = &mockQAService{
		answer: domain.Answer{
			Text: "The sky is blue.",
			Sources: []domain.SourceRef{
				{Filename: "facts.pdf", Page: 1, ChunkIndex: 0},
			},
		},
	}
	ingestService = &mockIngestService{
		stats: driving.IngestStats{Documents: 2, Pages: 5, Chunks: 12},
	}
	documentStore = &mockDocStore{
		docs: []domain.Document{
			{
				Filename:   "facts.pdf",
				SHA256:     "abc123",
				SizeBytes:  2048,
				Pages:      3,
				Chunks:     7,
				IngestedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
	startFn = nil

	return func() {
		qaService = oldQA
		ingestService = oldIngest
		documentStore = oldDocs
		indexSizer = oldSizer
		startFn = oldStart
		sourceDir = oldSourceDir
		serverAddr = oldServerAddr
	}
}
