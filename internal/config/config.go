// Package config implements the typed TOML configuration file: every key
// is fixed and enumerated, so this loads straight into a struct instead
// of a flattened dot-notation map.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/veltra-labs/docvault/internal/chunker"
)

// Chunking holds the chunker's tunable boundary-detection parameters.
type Chunking struct {
	SimilarityThreshold float32  `toml:"similarity_threshold"`
	MinChunkSize        int      `toml:"min_chunk_size"`
	MaxChunkSize        int      `toml:"max_chunk_size"`
	Delimiters          []string `toml:"delimiters"`
}

// Ollama mirrors internal/embedding/ollama.Config's tunables.
type Ollama struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// OpenAI mirrors internal/embedding/openai.Config's tunables. APIKey is
// read only from here: the adapter has no environment fallback and
// refuses to start with an empty key.
type OpenAI struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Config is the full set of run-time configuration keys, plus an
// embedding-provider selector choosing which of the two shipped
// embedding adapters backs a given run.
type Config struct {
	DataPath              string   `toml:"data_path"`
	EmbeddingDimension    int      `toml:"embedding_dimension"`
	DebounceDelayMs       int      `toml:"debounce_delay_ms"`
	LockTimeoutSeconds    int      `toml:"lock_timeout_seconds"`
	MaxRetries            int      `toml:"max_retries"`
	AllowedExtensions     []string `toml:"allowed_extensions,omitempty"`
	ExcludePatterns       []string `toml:"exclude_patterns"`
	EmbeddingSyncInterval int      `toml:"embedding_sync_interval"`
	EmbeddingBatchSize    int      `toml:"embedding_batch_size"`
	Chunking              Chunking `toml:"chunking"`

	EmbeddingProvider string `toml:"embedding_provider"`
	Ollama            Ollama `toml:"ollama"`
	OpenAI            OpenAI `toml:"openai"`
}

// defaultExcludePatterns is applied case-insensitively against any path
// segment.
var defaultExcludePatterns = []string{".git", ".vs", "node_modules", "bin", "obj"}

// Default returns a Config populated with every built-in default.
// AllowedExtensions is left nil, meaning "all extensions allowed".
func Default() Config {
	return Config{
		EmbeddingDimension:    1024,
		DebounceDelayMs:       1000,
		LockTimeoutSeconds:    300,
		MaxRetries:            3,
		AllowedExtensions:     nil,
		ExcludePatterns:       append([]string(nil), defaultExcludePatterns...),
		EmbeddingSyncInterval: 30,
		EmbeddingBatchSize:    50,
		Chunking: Chunking{
			SimilarityThreshold: chunker.DefaultThreshold,
			MinChunkSize:        chunker.DefaultMinChunkSize,
			MaxChunkSize:        chunker.DefaultMaxChunkSize,
			Delimiters:          append([]string(nil), chunker.DefaultDelimiters...),
		},
		EmbeddingProvider: "ollama",
	}
}

// Load reads path as TOML, starting from Default() so any key the file
// omits keeps its spec default. A missing file is not an error: Load
// returns Default() unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to path as TOML, creating the parent directory if
// needed, with restrictive 0600 file permissions. An empty
// AllowedExtensions is omitted from the file, so it loads back as nil
// ("all extensions allowed").
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// DebounceDelay returns DebounceDelayMs as a time.Duration.
func (c Config) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceDelayMs) * time.Millisecond
}

// LockTimeout returns LockTimeoutSeconds as a time.Duration.
func (c Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutSeconds) * time.Second
}

// EmbeddingSyncPeriod returns EmbeddingSyncInterval as a time.Duration.
func (c Config) EmbeddingSyncPeriod() time.Duration {
	return time.Duration(c.EmbeddingSyncInterval) * time.Second
}
