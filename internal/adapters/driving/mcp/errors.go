// Package mcp provides an MCP (Model Context Protocol) server adapter
// for the document question-answering pipeline. It enables AI
// assistants like Claude to ask grounded questions over the ingested
// corpus.
package mcp

import "errors"

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("mcp: qa service is required")
