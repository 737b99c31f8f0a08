package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input, such as an
	// empty question or a non-PDF upload. Rejected before any
	// collaborator is touched.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotReady indicates the pipeline was used before startup
	// initialisation completed.
	ErrNotReady = errors.New("service not ready")

	// ErrIngestInProgress indicates an ingest is already running.
	// Concurrent ingests are serialised, never interleaved.
	ErrIngestInProgress = errors.New("ingest in progress")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConfig indicates fatal misconfiguration: missing credentials or
	// an embedding dimension mismatch between ingest and query. The
	// service refuses to serve rather than fail silently.
	ErrConfig = errors.New("configuration error")

	// Collaborator failures. Each external call surfaces at most one of
	// these per invocation; the core never retries on its own.

	// ErrExtraction indicates the text extractor failed on a document.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding indicates the embedding service failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndex indicates the vector index failed.
	ErrIndex = errors.New("vector index failed")

	// ErrLLM indicates the language model call failed.
	ErrLLM = errors.New("llm request failed")

	// ErrRateLimited indicates the LLM API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the LLM API rejected the credentials.
	ErrAuthInvalid = errors.New("authentication invalid")
)
