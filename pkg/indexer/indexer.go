// Package indexer is the public facade for building memodex indexes
// programmatically: load corpus files, build artifacts, optionally with
// embeddings, incrementally when possible.
package indexer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/harukit/memodex/internal/build"
	"github.com/harukit/memodex/internal/embed"
	"github.com/harukit/memodex/internal/loader"
	"github.com/harukit/memodex/internal/store"
	"github.com/harukit/memodex/internal/telemetry"
	"github.com/harukit/memodex/internal/tokenize"
)

// ErrNoInputs is returned when a build is requested without corpus files.
var ErrNoInputs = errors.New("indexer: no input files")

// Result summarizes a build.
type Result = build.Result

// Indexer builds index artifacts from corpus files.
type Indexer struct {
	tokenizer store.Tokenizer
	embedder  embed.Embedder
	usage     *telemetry.UsageStats
	logger    *slog.Logger
	progress  build.ProgressFunc
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithTokenizer replaces the default tokenizer.
func WithTokenizer(t store.Tokenizer) Option {
	return func(ix *Indexer) { ix.tokenizer = t }
}

// WithEmbedder enables embedding generation.
func WithEmbedder(e embed.Embedder) Option {
	return func(ix *Indexer) { ix.embedder = e }
}

// WithUsage attaches a usage collector.
func WithUsage(u *telemetry.UsageStats) Option {
	return func(ix *Indexer) { ix.usage = u }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(ix *Indexer) { ix.logger = l }
}

// WithProgress registers a progress callback.
func WithProgress(fn build.ProgressFunc) Option {
	return func(ix *Indexer) { ix.progress = fn }
}

// New creates an Indexer with the default tokenizer.
func New(opts ...Option) *Indexer {
	ix := &Indexer{
		tokenizer: tokenize.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// BuildFromFiles loads every input file and builds the index into
// outDir, incrementally when the previous build's metadata allows it.
func (ix *Indexer) BuildFromFiles(ctx context.Context, inputs []string, outDir string) (*Result, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	docs, err := loader.LoadFiles(inputs)
	if err != nil {
		return nil, err
	}
	return ix.builder().BuildFromDocuments(ctx, docs, outDir)
}

// BuildFromDocuments builds the index for already-loaded documents.
func (ix *Indexer) BuildFromDocuments(ctx context.Context, docs []store.Document, outDir string) (*Result, error) {
	return ix.builder().BuildFromDocuments(ctx, docs, outDir)
}

func (ix *Indexer) builder() *build.IndexBuilder {
	opts := []build.BuilderOption{build.WithLogger(ix.logger)}
	if ix.embedder != nil {
		opts = append(opts, build.WithEmbedder(ix.embedder))
	}
	if ix.usage != nil {
		opts = append(opts, build.WithUsage(ix.usage))
	}
	if ix.progress != nil {
		opts = append(opts, build.WithProgress(ix.progress))
	}
	return build.NewIndexBuilder(ix.tokenizer, opts...)
}
