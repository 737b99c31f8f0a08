package domain

import "time"

// Document represents an uploaded source file tracked by the catalog.
// It is created on upload and immutable thereafter.
type Document struct {
	// Filename is the unique name of the source file (e.g. "handbook.pdf").
	Filename string

	// SHA256 is the hex digest of the raw file content.
	SHA256 string

	// SizeBytes is the raw file size.
	SizeBytes int64

	// Pages is the number of pages extracted during the last ingest.
	Pages int

	// Chunks is the number of chunks produced during the last ingest.
	Chunks int

	// IngestedAt is when the document was last ingested.
	IngestedAt time.Time
}

// Page is one page of text extracted from a source document.
// Pages are produced by the text extractor and consumed by the chunker.
type Page struct {
	// Source is the filename of the document this page came from.
	Source string

	// Number is the 1-based page number.
	Number int

	// Text is the extracted plain text.
	Text string
}

// Chunk is a bounded window of page text. Chunks are the unit of
// embedding, storage and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content.
	Text string

	// Source is the filename of the originating document.
	Source string

	// Page is the page number the chunk starts on.
	Page int

	// Index is the ordinal position of the chunk within its document.
	Index int
}

// Ref returns the provenance reference for the chunk.
func (c Chunk) Ref() SourceRef {
	return SourceRef{Filename: c.Source, Page: c.Page, ChunkIndex: c.Index}
}

// IndexEntry pairs a chunk with its embedding vector.
// Entries are created during ingest and replaced wholesale on rebuild.
type IndexEntry struct {
	Chunk  Chunk
	Vector []float32
}

// ScoredChunk is a retrieval hit: a chunk with its similarity score.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity to the query vector (higher is better).
	Score float64
}

// SourceRef identifies where an answer's supporting chunk came from.
type SourceRef struct {
	Filename   string `json:"filename"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
}

// Answer is the synthesised response with provenance. It is transient
// and never persisted.
type Answer struct {
	// Text is the model's free-text answer, or the fixed fallback when
	// retrieval produced nothing.
	Text string `json:"text"`

	// Sources lists the retrieved chunks' provenance in the order their
	// text appeared in the prompt context. Empty for fallback answers.
	Sources []SourceRef `json:"sources"`
}
