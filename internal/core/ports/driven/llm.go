package driven

import "context"

// LLMClient produces grounded answers from an assembled prompt.
//
// The pipeline makes exactly one non-streaming call per question and
// never retries on its own: a silently retried completion could
// duplicate billing. Retries, if wanted, belong to the caller.
//
// Implementations may include:
//   - Groq (OpenAI-compatible API, llama models)
//   - Ollama (local models)
type LLMClient interface {
	// Complete sends a single chat completion request with a system
	// instruction and a user prompt, requesting a deterministic-leaning
	// (zero temperature) response.
	//
	// Failures surface as domain.ErrLLM, with domain.ErrRateLimited or
	// domain.ErrAuthInvalid additionally matchable where applicable.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to fail fast on bad credentials.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
