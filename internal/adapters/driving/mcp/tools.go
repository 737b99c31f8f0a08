package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string   `json:"question" jsonschema:"the question to answer from the ingested documents"`
	Sources  []string `json:"sources,omitempty" jsonschema:"optional list of PDF filenames to restrict the answer to"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput identifies one chunk that grounded the answer.
type SourceOutput struct {
	Filename   string `json:"filename"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
}

// IngestInput is the input schema for the ingest tool. It takes no
// arguments; the source directory is fixed by configuration.
type IngestInput struct{}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Documents int `json:"documents"`
	Pages     int `json:"pages"`
	Chunks    int `json:"chunks"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput is one catalogued document.
type DocumentOutput struct {
	Filename   string `json:"filename"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	SHA256     string `json:"sha256"`
	IngestedAt string `json:"ingested_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question answered from the ingested PDF documents, with source references",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Re-scan the source directory and rebuild the document index",
		}, s.handleIngest)
	}

	if s.ports.Documents != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List the ingested documents with page and chunk counts",
		}, s.handleListDocuments)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.QA.Ask(ctx, input.Question, input.Sources)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i, ref := range answer.Sources {
		output.Sources[i] = SourceOutput{
			Filename:   ref.Filename,
			Page:       ref.Page,
			ChunkIndex: ref.ChunkIndex,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errors.New("mcp: ingest service not configured")
	}

	stats, err := s.ports.Ingest.Ingest(ctx)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		Documents: stats.Documents,
		Pages:     stats.Pages,
		Chunks:    stats.Chunks,
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Documents == nil {
		return nil, ListDocumentsOutput{}, errors.New("mcp: document store not configured")
	}

	docs, err := s.ports.Documents.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i, doc := range docs {
		output.Documents[i] = DocumentOutput{
			Filename:   doc.Filename,
			Pages:      doc.Pages,
			Chunks:     doc.Chunks,
			SHA256:     doc.SHA256,
			IngestedAt: doc.IngestedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	return nil, output, nil
}
