package services

import (
	"context"
	"sync"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

// mockEmbedder returns canned vectors keyed by exact text. Texts with
// no canned vector get the fallback, so paragraph noise never breaks a
// scenario.
type mockEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	fallback   []float32
	dims       int
	embedErr   error
	batchErr   error
	pingErr    error
	embedCalls int
	batchCalls int

	// batchOverride, when set, is returned verbatim from EmbedBatch.
	batchOverride [][]float32
}

func newMockEmbedder(dims int) *mockEmbedder {
	fallback := make([]float32, dims)
	for i := range fallback {
		fallback[i] = 0.1
	}
	return &mockEmbedder{
		vectors:  make(map[string][]float32),
		fallback: fallback,
		dims:     dims,
	}
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return m.fallback
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	if m.batchOverride != nil {
		return m.batchOverride, nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Close() error      { return nil }
func (m *mockEmbedder) Ping(_ context.Context) error {
	return m.pingErr
}

// mockLLM records the prompts it was given and returns a canned reply.
type mockLLM struct {
	mu         sync.Mutex
	reply      string
	err        error
	pingErr    error
	calls      int
	lastSystem string
	lastUser   string
}

func (m *mockLLM) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Close() error      { return nil }
func (m *mockLLM) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockExtractor maps filenames to canned pages, ignoring the raw bytes.
type mockExtractor struct {
	mu    sync.Mutex
	pages map[string][]domain.Page
	errs  map[string]error
	calls int
}

func (m *mockExtractor) Extract(_ context.Context, filename string, _ []byte) ([]domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err, ok := m.errs[filename]; ok {
		return nil, err
	}
	return m.pages[filename], nil
}

// mockDocStore is an in-memory catalog.
type mockDocStore struct {
	mu        sync.Mutex
	docs      map[string]domain.Document
	upsertErr error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{docs: make(map[string]domain.Document)}
}

func (m *mockDocStore) Upsert(_ context.Context, doc domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.docs[doc.Filename] = doc
	return nil
}

func (m *mockDocStore) Get(_ context.Context, filename string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[filename]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockDocStore) List(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDocStore) Delete(_ context.Context, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, filename)
	return nil
}

func (m *mockDocStore) Close() error { return nil }
