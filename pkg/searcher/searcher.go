// Package searcher is the public facade for querying a memodex index
// directory.
package searcher

import (
	"context"
	"log/slog"

	"github.com/harukit/memodex/internal/embed"
	"github.com/harukit/memodex/internal/search"
	"github.com/harukit/memodex/internal/store"
	"github.com/harukit/memodex/internal/tokenize"
)

// Re-exported query types so callers need not import internal packages.
type (
	// Mode selects the retrieval path.
	Mode = search.SearchMode
	// Options are per-query knobs.
	Options = search.Options
	// Result is one ranked answer.
	Result = search.SearchResult
)

// Retrieval modes.
const (
	ModeBM25     = search.ModeBM25
	ModeSemantic = search.ModeSemantic
	ModeHybrid   = search.ModeHybrid
)

// ParseMode maps a mode name ("bm25", "semantic", "hybrid") to its Mode.
func ParseMode(s string) (Mode, error) { return search.ParseMode(s) }

// Searcher answers queries over one index directory.
type Searcher struct {
	inner *search.Searcher
}

// Option configures a Searcher.
type Option func(*options)

type options struct {
	tokenizer store.Tokenizer
	embedder  embed.Embedder
	logger    *slog.Logger
}

// WithTokenizer replaces the default tokenizer. It must match the one
// used at build time.
func WithTokenizer(t store.Tokenizer) Option {
	return func(o *options) { o.tokenizer = t }
}

// WithEmbedder enables semantic and hybrid modes.
func WithEmbedder(e embed.Embedder) Option {
	return func(o *options) { o.embedder = e }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open loads the index artifacts from indexDir. Missing artifact files
// load as empty structures.
func Open(indexDir string, opts ...Option) (*Searcher, error) {
	o := &options{
		tokenizer: tokenize.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	innerOpts := []search.SearcherOption{search.WithLogger(o.logger)}
	if o.embedder != nil {
		innerOpts = append(innerOpts, search.WithEmbedder(o.embedder))
	}
	inner, err := search.NewSearcher(indexDir, o.tokenizer, innerOpts...)
	if err != nil {
		return nil, err
	}
	return &Searcher{inner: inner}, nil
}

// Search runs one query.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	return s.inner.Search(ctx, query, opts)
}

// ListTags returns the distinct tags in the corpus, sorted.
func (s *Searcher) ListTags() []string { return s.inner.ListTags() }

// Recent returns up to limit documents by date descending.
func (s *Searcher) Recent(limit int) []store.Document { return s.inner.Recent(limit) }

// HasVectorIndex reports whether semantic search has vectors to rank.
func (s *Searcher) HasVectorIndex() bool { return s.inner.HasVectorIndex() }

// Internal exposes the underlying engine for advanced callers (the MCP
// server reuses it directly).
func (s *Searcher) Internal() *search.Searcher { return s.inner }
