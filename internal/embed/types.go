// Package embed generates vector embeddings for memo text via an
// OpenRouter-compatible embeddings API, with retry, caching, and usage
// accounting. The searcher and builder depend only on the Embedder
// interface so semantic capability stays optional.
package embed

import (
	"context"
	"time"
)

const (
	// DefaultModel is the embedding model requested when none is configured.
	DefaultModel = "openai/text-embedding-3-small"

	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultDimensions is the output dimension of DefaultModel.
	DefaultDimensions = 1536

	// MaxTextChars caps request payload size; longer texts are truncated
	// with a trailing ellipsis before being sent.
	MaxTextChars = 6000

	// DefaultTimeout bounds a single embeddings HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultCacheSize is the LRU capacity of the cached decorator.
	DefaultCacheSize = 1000
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available reports whether the embedder is ready to serve requests.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}
