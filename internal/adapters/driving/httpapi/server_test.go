package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driving"
)

type stubQA struct {
	answer       domain.Answer
	err          error
	lastQuestion string
	lastSources  []string
}

func (s *stubQA) Ask(_ context.Context, question string, sources []string) (domain.Answer, error) {
	s.lastQuestion = question
	s.lastSources = sources
	if s.err != nil {
		return domain.Answer{}, s.err
	}
	return s.answer, nil
}

type stubIngest struct {
	stats driving.IngestStats
	err   error
	calls int
}

func (s *stubIngest) Ingest(_ context.Context) (driving.IngestStats, error) {
	s.calls++
	if s.err != nil {
		return driving.IngestStats{}, s.err
	}
	return s.stats, nil
}

type stubDocStore struct {
	docs []domain.Document
	err  error
}

func (s *stubDocStore) Upsert(context.Context, domain.Document) error { return nil }
func (s *stubDocStore) Get(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}
func (s *stubDocStore) List(context.Context) ([]domain.Document, error) { return s.docs, s.err }
func (s *stubDocStore) Delete(context.Context, string) error            { return nil }
func (s *stubDocStore) Close() error                                    { return nil }

type stubSizer struct{ size int }

func (s stubSizer) IndexSize(context.Context) (int, error) { return s.size, nil }

func newTestServer(t *testing.T, qa *stubQA, ingest *stubIngest) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	return NewServer(qa, ingest, &stubDocStore{}, stubSizer{size: 7}, dir), dir
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &stubQA{}, &stubIngest{})

	rec := doRequest(t, s, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(7), body["index_size"])
}

func TestHealth_UnknownPath(t *testing.T) {
	s, _ := newTestServer(t, &stubQA{}, &stubIngest{})

	rec := doRequest(t, s, http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAsk(t *testing.T) {
	qa := &stubQA{answer: domain.Answer{
		Text: "The sky is blue.",
		Sources: []domain.SourceRef{
			{Filename: "sky.pdf", Page: 1, ChunkIndex: 0},
		},
	}}
	s, _ := newTestServer(t, qa, &stubIngest{})

	rec := doRequest(t, s, http.MethodPost, "/ask", map[string]any{
		"question": "What color is the sky?",
		"sources":  []string{"sky.pdf"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var answer domain.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, "The sky is blue.", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "sky.pdf", answer.Sources[0].Filename)
	assert.Equal(t, "What color is the sky?", qa.lastQuestion)
	assert.Equal(t, []string{"sky.pdf"}, qa.lastSources)
}

func TestAsk_InvalidJSON(t *testing.T) {
	s, _ := newTestServer(t, &stubQA{}, &stubIngest{})

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, &stubQA{}, &stubIngest{})

	rec := doRequest(t, s, http.MethodGet, "/ask", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"not ready", domain.ErrNotReady, http.StatusServiceUnavailable},
		{"rate limited", fmt.Errorf("%w: %w", domain.ErrLLM, domain.ErrRateLimited), http.StatusTooManyRequests},
		{"llm failure", domain.ErrLLM, http.StatusBadGateway},
		{"embedding failure", domain.ErrEmbedding, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &stubQA{err: tt.err}, &stubIngest{})

			rec := doRequest(t, s, http.MethodPost, "/ask", map[string]any{"question": "q"})

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestIngest(t *testing.T) {
	ingest := &stubIngest{stats: driving.IngestStats{Documents: 2, Pages: 10, Chunks: 40}}
	s, _ := newTestServer(t, &stubQA{}, ingest)

	rec := doRequest(t, s, http.MethodPost, "/ingest", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats driving.IngestStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 40, stats.Chunks)
}

func TestIngest_InProgress(t *testing.T) {
	s, _ := newTestServer(t, &stubQA{}, &stubIngest{err: domain.ErrIngestInProgress})

	rec := doRequest(t, s, http.MethodPost, "/ingest", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListDocuments(t *testing.T) {
	store := &stubDocStore{docs: []domain.Document{
		{Filename: "a.pdf", Pages: 2, Chunks: 8},
		{Filename: "b.pdf", Pages: 1, Chunks: 3},
	}}
	s := NewServer(&stubQA{}, &stubIngest{}, store, nil, t.TempDir())

	rec := doRequest(t, s, http.MethodGet, "/documents", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Documents []domain.Document `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Documents, 2)
	assert.Equal(t, "a.pdf", body.Documents[0].Filename)
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	ingest := &stubIngest{stats: driving.IngestStats{Documents: 1, Pages: 1, Chunks: 2}}
	s, dir := newTestServer(t, &stubQA{}, ingest)

	body, contentType := multipartBody(t, "paper.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ingest.calls, "upload triggers an ingest pass")

	data, err := os.ReadFile(filepath.Join(dir, "paper.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	ingest := &stubIngest{}
	s, dir := newTestServer(t, &stubQA{}, ingest)

	body, contentType := multipartBody(t, "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, ingest.calls)

	_, err := os.Stat(filepath.Join(dir, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestUpload_NoFiles(t *testing.T) {
	s, _ := newTestServer(t, &stubQA{}, &stubIngest{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, &stubQA{}, &stubIngest{})

	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
