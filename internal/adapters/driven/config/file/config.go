package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

// Provider names accepted in the embedding and llm sections.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGroq   = "groq"
)

// Index backend names.
const (
	IndexMemory = "memory"
	IndexQdrant = "qdrant"
)

// Config is the full application configuration, loaded from a TOML file
// with environment variable overrides.
type Config struct {
	Source    SourceConfig    `toml:"source"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Index     IndexConfig     `toml:"index"`
	Storage   StorageConfig   `toml:"storage"`
	Server    ServerConfig    `toml:"server"`
}

// SourceConfig locates the documents to ingest.
type SourceConfig struct {
	// Dir is the directory scanned for PDF files.
	Dir string `toml:"dir"`
}

// ChunkingConfig controls how extracted text is split.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// RetrievalConfig controls answer retrieval.
type RetrievalConfig struct {
	TopK int `toml:"top_k"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	Dimensions int    `toml:"dimensions"`
	APIKey     string `toml:"-"` // from environment only
}

// LLMConfig selects and configures the chat provider.
type LLMConfig struct {
	Provider string        `toml:"provider"`
	Model    string        `toml:"model"`
	BaseURL  string        `toml:"base_url"`
	Timeout  time.Duration `toml:"-"`
	APIKey   string        `toml:"-"` // from environment only
}

// IndexConfig selects the vector index backend.
type IndexConfig struct {
	Backend string       `toml:"backend"`
	Qdrant  QdrantConfig `toml:"qdrant"`
}

// QdrantConfig configures the Qdrant backend.
type QdrantConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Collection string `toml:"collection"`
	APIKey     string `toml:"-"` // from environment only
}

// StorageConfig configures the document catalog.
type StorageConfig struct {
	// DataDir holds the catalog database. Empty means ~/.askdoc/data.
	DataDir string `toml:"data_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns a configuration with all defaults applied.
func Default() Config {
	return Config{
		Source:    SourceConfig{Dir: "./docs"},
		Chunking:  ChunkingConfig{Size: 900, Overlap: 150},
		Retrieval: RetrievalConfig{TopK: 4},
		Embedding: EmbeddingConfig{Provider: ProviderOpenAI},
		LLM:       LLMConfig{Provider: ProviderGroq},
		Index: IndexConfig{
			Backend: IndexMemory,
			Qdrant:  QdrantConfig{Host: "localhost", Port: 6334, Collection: "askdoc_chunks"},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads configuration from the given TOML file, applies environment
// overrides, and validates the result. If path is empty, the default
// location ~/.askdoc/config.toml is used; a missing file is not an error
// and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".askdoc", "config.toml")
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file yet - defaults plus environment apply
	case err != nil:
		return Config{}, fmt.Errorf("%w: reading %s: %v", domain.ErrConfig, path, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfig, path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	setString(&c.Source.Dir, "ASKDOC_SOURCE_DIR")
	setString(&c.Embedding.Provider, "ASKDOC_EMBEDDING_PROVIDER")
	setString(&c.Embedding.Model, "ASKDOC_EMBEDDING_MODEL")
	setString(&c.Embedding.BaseURL, "ASKDOC_EMBEDDING_BASE_URL")
	setString(&c.LLM.Provider, "ASKDOC_LLM_PROVIDER")
	setString(&c.LLM.Model, "ASKDOC_LLM_MODEL")
	setString(&c.LLM.BaseURL, "ASKDOC_LLM_BASE_URL")
	setString(&c.Index.Backend, "ASKDOC_INDEX_BACKEND")
	setString(&c.Storage.DataDir, "ASKDOC_DATA_DIR")
	setString(&c.Server.Addr, "ASKDOC_ADDR")
	setInt(&c.Retrieval.TopK, "ASKDOC_TOP_K")

	// Secrets only come from the environment, never the config file.
	// The chat key follows the selected provider, which is why this
	// runs after the provider overrides above.
	c.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	switch c.LLM.Provider {
	case ProviderOpenAI:
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	case ProviderOllama:
		// Local server, no key.
	default:
		c.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	c.Index.Qdrant.APIKey = os.Getenv("QDRANT_API_KEY")
}

// Validate checks the configuration for contradictions. Credential
// presence is checked by the adapters, not here, so commands that never
// reach a provider still run.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfig, c.Embedding.Provider)
	}

	switch c.LLM.Provider {
	case ProviderGroq, ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown llm provider %q", domain.ErrConfig, c.LLM.Provider)
	}

	switch c.Index.Backend {
	case IndexMemory, IndexQdrant:
	default:
		return fmt.Errorf("%w: unknown index backend %q", domain.ErrConfig, c.Index.Backend)
	}

	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfig, c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must be non-negative, got %d", domain.ErrConfig, c.Chunking.Overlap)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrConfig, c.Retrieval.TopK)
	}
	if c.Source.Dir == "" {
		return fmt.Errorf("%w: source dir is empty", domain.ErrConfig)
	}

	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	v := os.Getenv(env)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
