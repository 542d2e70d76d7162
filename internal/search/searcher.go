package search

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/harukit/memodex/internal/embed"
	"github.com/harukit/memodex/internal/store"
)

// Searcher answers queries over one index directory's artifacts. The
// artifacts are loaded once and treated as read-only, so a single Searcher
// serves arbitrarily many concurrent searches.
//
// Semantic capability is optional: with no embedder configured or no
// vector index on disk, semantic searches return empty results and hybrid
// degrades to the BM25 ranking alone.
type Searcher struct {
	bm25    *store.BM25Index
	vectors *store.VectorIndex
	docs    *store.Docstore
	embedder embed.Embedder
	fusion  *RRFFusion
	logger  *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithEmbedder enables the semantic path.
func WithEmbedder(e embed.Embedder) SearcherOption {
	return func(s *Searcher) { s.embedder = e }
}

// WithFusion overrides the RRF fusion.
func WithFusion(f *RRFFusion) SearcherOption {
	return func(s *Searcher) { s.fusion = f }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) SearcherOption {
	return func(s *Searcher) { s.logger = l }
}

// NewSearcher loads the index artifacts from indexDir. A missing artifact
// file loads as an empty structure; a present-but-corrupt one is a hard
// error. The tokenizer must match the one used at build time for query
// terms to line up with the inverted index.
func NewSearcher(indexDir string, tokenizer store.Tokenizer, opts ...SearcherOption) (*Searcher, error) {
	bm25, err := store.LoadBM25IndexOrEmpty(filepath.Join(indexDir, store.BM25IndexFile), tokenizer)
	if err != nil {
		return nil, fmt.Errorf("load BM25 index: %w", err)
	}
	vectors, err := store.LoadVectorIndexOrEmpty(filepath.Join(indexDir, store.VectorIndexFile))
	if err != nil {
		return nil, fmt.Errorf("load vector index: %w", err)
	}
	docs, err := store.LoadDocstoreOrEmpty(filepath.Join(indexDir, store.DocstoreFile))
	if err != nil {
		return nil, fmt.Errorf("load docstore: %w", err)
	}

	s := &Searcher{
		bm25:    bm25,
		vectors: vectors,
		docs:    docs,
		fusion:  NewRRFFusion(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Debug("searcher_loaded",
		slog.Int("num_docs", bm25.NumDocs),
		slog.Int("num_vectors", vectors.Len()),
		slog.Int("docstore_size", docs.Len()))
	return s, nil
}

// NewSearcherFromIndexes builds a Searcher over already-loaded structures.
// Used by tests and by the watch loop after an in-process rebuild.
func NewSearcherFromIndexes(bm25 *store.BM25Index, vectors *store.VectorIndex, docs *store.Docstore, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		bm25:    bm25,
		vectors: vectors,
		docs:    docs,
		fusion:  NewRRFFusion(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs one query. Mode dispatch is exhaustive over the closed mode
// set. The tag filter applies after ranking and fusion, then the list is
// re-truncated to TopK; no over-fetch compensates for filtered-out
// candidates, so fewer than TopK results can come back even when more
// tagged matches exist deeper in the ranking.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]SearchResult, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	var results []SearchResult
	switch opts.Mode {
	case ModeBM25:
		results = s.searchBM25(query, topK)
	case ModeSemantic:
		results = s.searchSemantic(ctx, query, topK)
	case ModeHybrid:
		results = s.searchHybrid(ctx, query, topK)
	default:
		return nil, fmt.Errorf("unknown search mode %v", opts.Mode)
	}

	if opts.Tag != "" {
		results = s.filterByTag(results, opts.Tag)
	}
	if len(results) > topK {
		results = results[:topK]
	}

	s.logger.Debug("search_completed",
		slog.String("mode", opts.Mode.String()),
		slog.String("query", query),
		slog.Int("result_count", len(results)))
	return results, nil
}

func (s *Searcher) searchBM25(query string, topK int) []SearchResult {
	return s.toResults(s.bm25.Search(query, topK))
}

// searchSemantic embeds the query and ranks by cosine similarity. Every
// degraded condition short-circuits to empty results: empty vector index,
// no embedder, or a failed embedding call. Callers surface the condition
// as a warning, never a failure.
func (s *Searcher) searchSemantic(ctx context.Context, query string, topK int) []SearchResult {
	if s.vectors.IsEmpty() {
		s.logger.Warn("semantic_search_unavailable", slog.String("reason", "vector index is empty"))
		return nil
	}
	if s.embedder == nil {
		s.logger.Warn("semantic_search_unavailable", slog.String("reason", "no embedder configured"))
		return nil
	}
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("semantic_search_failed", slog.String("error", err.Error()))
		return nil
	}
	return s.toResults(s.vectors.Search(queryVec, topK))
}

// SearchSemanticWithVector ranks against a caller-supplied query vector,
// bypassing the embedder. Useful when the caller already holds an
// embedding for the query text.
func (s *Searcher) SearchSemanticWithVector(queryVec []float32, topK int) []SearchResult {
	return s.toResults(s.vectors.Search(queryVec, topK))
}

// searchHybrid runs both retrieval paths concurrently, each over-fetching
// topK*2 candidates so RRF has enough overlap to re-rank, then fuses and
// truncates. With semantic degraded, the fusion input from that side is
// empty and the output reduces to the BM25 ranking.
func (s *Searcher) searchHybrid(ctx context.Context, query string, topK int) []SearchResult {
	fetchK := topK * 2

	var bm25Results, semanticResults []SearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bm25Results = s.searchBM25(query, fetchK)
		return nil
	})
	g.Go(func() error {
		semanticResults = s.searchSemantic(gctx, query, fetchK)
		return nil
	})
	// Both paths degrade internally rather than fail.
	_ = g.Wait()

	fused := s.fusion.Fuse(bm25Results, semanticResults)
	if len(fused) > topK {
		fused = fused[:topK]
	}
	return fused
}

// filterByTag drops results whose document lacks the tag. Results without
// a docstore entry are dropped too; they cannot satisfy any tag filter.
func (s *Searcher) filterByTag(results []SearchResult, tag string) []SearchResult {
	filtered := results[:0]
	for _, r := range results {
		if doc, ok := s.docs.Get(r.DocID); ok && doc.HasTag(tag) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// toResults maps ranked IDs to SearchResults, filling titles from the
// docstore.
func (s *Searcher) toResults(ranked []store.ScoredID) []SearchResult {
	results := make([]SearchResult, 0, len(ranked))
	for _, r := range ranked {
		result := SearchResult{DocID: r.ID, Score: r.Score}
		if doc, ok := s.docs.Get(r.ID); ok {
			result.Title = doc.Metadata.Title
		}
		results = append(results, result)
	}
	return results
}

// ListTags returns the distinct tags in the docstore, sorted.
func (s *Searcher) ListTags() []string {
	return s.docs.AllTags()
}

// TagCounts returns document counts per tag.
func (s *Searcher) TagCounts() map[string]int {
	return s.docs.TagCounts()
}

// Recent returns up to limit documents by date descending.
func (s *Searcher) Recent(limit int) []store.Document {
	return s.docs.Recent(limit)
}

// Document returns the full record for a result.
func (s *Searcher) Document(id string) (store.Document, bool) {
	return s.docs.Get(id)
}

// HasVectorIndex reports whether semantic search has vectors to rank.
func (s *Searcher) HasVectorIndex() bool {
	return !s.vectors.IsEmpty()
}

// DocCount returns the number of indexed documents.
func (s *Searcher) DocCount() int {
	return s.docs.Len()
}
