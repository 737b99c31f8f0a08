// Package httpapi exposes the question-answering pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driving"
	"github.com/halcyon-labs/askdoc/internal/logger"
)

// maxUploadBytes caps multipart upload memory.
const maxUploadBytes = 128 << 20

// Sizer reports the live index size. Optional; the health endpoint
// omits the field when unavailable.
type Sizer interface {
	IndexSize(ctx context.Context) (int, error)
}

// Server handles the HTTP API.
type Server struct {
	qa        driving.QAService
	ingest    driving.IngestService
	docs      driven.DocumentStore
	sizer     Sizer
	sourceDir string
}

// NewServer creates the API server. docs and sizer may be nil.
func NewServer(qa driving.QAService, ingest driving.IngestService, docs driven.DocumentStore, sizer Sizer, sourceDir string) *Server {
	return &Server{
		qa:        qa,
		ingest:    ingest,
		docs:      docs,
		sizer:     sizer,
		sourceDir: sourceDir,
	}
}

// Routes returns the full handler with CORS applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHealth)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/documents", s.handleDocuments)
	return withCORS(mux)
}

// ListenAndServe runs the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	body := map[string]any{"status": "ok"}
	if s.sizer != nil {
		if size, err := s.sizer.IndexSize(r.Context()); err == nil {
			body["index_size"] = size
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req struct {
		Question string   `json:"question"`
		Sources  []string `json:"sources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}

	answer, err := s.qa.Ask(r.Context(), req.Question, req.Sources)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	stats, err := s.ingest.Ingest(r.Context())
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListDocuments(w, r)
	case http.MethodPost:
		s.handleUpload(w, r)
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		writeJSON(w, http.StatusOK, map[string]any{"documents": []domain.Document{}})
		return
	}

	docs, err := s.docs.List(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleUpload stores uploaded PDFs into the source directory and runs
// an ingest pass over the result.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single, ok := firstSingleFile(r.MultipartForm.File); ok {
			files = append(files, single)
		}
	}
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}

	saved := make([]string, 0, len(files))
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("%s is not a pdf", name))
			return
		}
		if err := s.saveUploadedFile(name, fh); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		saved = append(saved, name)
	}

	stats, err := s.ingest.Ingest(r.Context())
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploaded": saved, "stats": stats})
}

func (s *Server) saveUploadedFile(name string, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.sourceDir, 0700); err != nil {
		return fmt.Errorf("create source directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.sourceDir, "upload-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Rename keeps the ingest scan from seeing a half-written file.
	if err := os.Rename(tmp.Name(), filepath.Join(s.sourceDir, name)); err != nil {
		return fmt.Errorf("move upload: %w", err)
	}
	return nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrIngestInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrLLM), errors.Is(err, domain.ErrEmbedding):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"status":  code,
			"message": msg,
		},
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
