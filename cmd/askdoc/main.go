// Command askdoc answers questions about a directory of PDF documents.
// It wires the configured providers into the question-answering
// pipeline and hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/halcyon-labs/askdoc/internal/adapters/driven/config/file"
	ollamaembed "github.com/halcyon-labs/askdoc/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/halcyon-labs/askdoc/internal/adapters/driven/embedding/openai"
	"github.com/halcyon-labs/askdoc/internal/adapters/driven/extractor/pdf"
	"github.com/halcyon-labs/askdoc/internal/adapters/driven/index/memory"
	"github.com/halcyon-labs/askdoc/internal/adapters/driven/index/qdrant"
	"github.com/halcyon-labs/askdoc/internal/adapters/driven/llm/groq"
	ollamallm "github.com/halcyon-labs/askdoc/internal/adapters/driven/llm/ollama"
	openaillm "github.com/halcyon-labs/askdoc/internal/adapters/driven/llm/openai"
	"github.com/halcyon-labs/askdoc/internal/adapters/driven/storage/sqlite"
	"github.com/halcyon-labs/askdoc/internal/adapters/driving/cli"
	"github.com/halcyon-labs/askdoc/internal/chunker"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/core/services"
	"github.com/halcyon-labs/askdoc/internal/logger"
	"github.com/halcyon-labs/askdoc/internal/textproc"
)

func main() {
	// Secrets come from the environment; .env is a convenience for
	// local development and its absence is not an error.
	_ = godotenv.Load()

	cfg, err := file.Load(configPath(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "askdoc: %v\n", err)
		os.Exit(1)
	}

	svcs, cleanup, err := wire(cfg)
	if err != nil {
		// Wiring failures are deferred to the first command that
		// needs the pipeline, so version and help still work.
		svcs = cli.Services{
			Start: func(context.Context) error { return err },
		}
	}
	if cleanup != nil {
		defer cleanup()
	}

	cli.SetServices(svcs)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// wire builds the pipeline from configuration. The returned cleanup
// closes the catalog database.
func wire(cfg file.Config) (cli.Services, func(), error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return cli.Services{}, nil, err
	}

	llm, err := newLLM(cfg)
	if err != nil {
		return cli.Services{}, nil, err
	}

	store, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("opening catalog: %w", err)
	}

	pipeline := textproc.NewPipeline(textproc.NewSanitizer())
	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	ingestor := services.NewIngestor(cfg.Source.Dir, pdf.New(), pipeline, splitter, embedder, store)

	newIndex, err := indexFactory(cfg)
	if err != nil {
		return cli.Services{}, nil, err
	}

	opts := coordinatorOptions()
	coord, err := services.NewCoordinator(embedder, llm, ingestor, newIndex, cfg.Retrieval.TopK, opts...)
	if err != nil {
		return cli.Services{}, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Error("closing catalog: %v", err)
		}
	}

	return cli.Services{
		QA:         coord,
		Ingest:     coord,
		Documents:  store,
		Sizer:      coord,
		Start:      coord.Start,
		SourceDir:  cfg.Source.Dir,
		ServerAddr: cfg.Server.Addr,
	}, cleanup, nil
}

func newEmbedder(cfg file.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case file.ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	default:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	}
}

func newLLM(cfg file.Config) (driven.LLMClient, error) {
	switch cfg.LLM.Provider {
	case file.ProviderOllama:
		return ollamallm.New(ollamallm.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}), nil
	case file.ProviderOpenAI:
		return openaillm.New(openaillm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
	default:
		return groq.New(groq.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
	}
}

// indexFactory returns the constructor the coordinator calls on every
// ingest pass to obtain a fresh index.
func indexFactory(cfg file.Config) (func() driven.VectorIndex, error) {
	switch cfg.Index.Backend {
	case file.IndexQdrant:
		idx, err := qdrant.New(qdrant.Config{
			Host:       cfg.Index.Qdrant.Host,
			Port:       cfg.Index.Qdrant.Port,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Index.Qdrant.Collection,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to qdrant: %w", err)
		}
		// Qdrant rebuilds into a staging collection behind one alias,
		// so the factory hands back the same connection each pass.
		return func() driven.VectorIndex { return idx }, nil
	default:
		return func() driven.VectorIndex { return memory.New() }, nil
	}
}

// coordinatorOptions loads the optional answer prompt override from
// the prompt directory. Prompt store failures fall back to defaults.
func coordinatorOptions() []services.CoordinatorOption {
	prompts, err := file.NewPromptStore("")
	if err != nil {
		logger.Warn("prompt store unavailable: %v", err)
		return nil
	}
	prompt, err := prompts.Load(file.PromptAnswerSystem)
	if err != nil {
		logger.Warn("loading answer prompt: %v", err)
		return nil
	}
	return []services.CoordinatorOption{services.WithAnswerPrompt(prompt)}
}

// configPath extracts the --config flag before cobra parses the
// command line, so configuration is loaded ahead of service wiring.
func configPath(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return os.Getenv("ASKDOC_CONFIG")
}
