// Package config loads memodex configuration: defaults, an optional
// memodex.toml, and environment variables (via .env when present).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/harukit/memodex/configs"
	memoerrors "github.com/harukit/memodex/internal/errors"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "memodex.toml"

// Config is the full configuration tree.
type Config struct {
	Index     IndexConfig     `toml:"index"`
	Search    SearchConfig    `toml:"search"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Watch     WatchConfig     `toml:"watch"`
}

// IndexConfig locates the corpus and the artifact directory.
type IndexConfig struct {
	Dir    string   `toml:"dir"`
	Inputs []string `toml:"inputs"`
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	Mode string `toml:"mode"`
	TopK int    `toml:"top_k"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	APIKeyEnv string `toml:"api_key_env"`
	BatchSize int    `toml:"batch_size"`
	CacheSize int    `toml:"cache_size"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Dir:    ".rag",
			Inputs: []string{"changelog.md"},
		},
		Search: SearchConfig{
			Mode: "hybrid",
			TopK: 10,
		},
		Embedding: EmbeddingConfig{
			Model:     "openai/text-embedding-3-small",
			BaseURL:   "https://openrouter.ai/api/v1",
			APIKeyEnv: "OPENROUTER_API_KEY",
			BatchSize: 10,
			CacheSize: 1000,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// a malformed file is a hard error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, memoerrors.Wrap(memoerrors.CodeConfigInvalid, memoerrors.CategoryConfig,
			fmt.Sprintf("invalid config file %s", path), err)
	}
	return cfg, nil
}

// LoadEnv reads a .env file into the process environment when one exists.
// Called once at startup before the API key lookup.
func LoadEnv() {
	_ = godotenv.Load()
}

// APIKey resolves the embedding API key from the configured environment
// variable. Empty when unset; callers treat that as "no semantic
// capability", not as an error.
func (c *Config) APIKey() string {
	env := c.Embedding.APIKeyEnv
	if env == "" {
		env = "OPENROUTER_API_KEY"
	}
	return os.Getenv(env)
}

// DebounceWindow returns the watch debounce as a duration.
func (c *Config) DebounceWindow() time.Duration {
	ms := c.Watch.DebounceMs
	if ms <= 0 {
		ms = 500
	}
	return time.Duration(ms) * time.Millisecond
}

// WriteDefault scaffolds the default config file at path. Refuses to
// overwrite unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return memoerrors.New(memoerrors.CodeConfigExists, memoerrors.CategoryConfig,
				fmt.Sprintf("%s already exists", path)).
				WithSuggestion("pass --force to overwrite")
		}
	}
	return os.WriteFile(path, configs.DefaultTOML(), 0o644)
}
