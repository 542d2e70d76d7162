// Package build orchestrates index construction: full builds, embedding
// generation, and incremental rebuilds driven by the diff engine.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/harukit/memodex/internal/embed"
	memoerrors "github.com/harukit/memodex/internal/errors"
	"github.com/harukit/memodex/internal/store"
	"github.com/harukit/memodex/internal/telemetry"
)

const (
	// DefaultBatchSize is how many texts go into one embeddings request.
	DefaultBatchSize = 10

	// DefaultBatchDelay is the pause between embedding batches, a small
	// courtesy to the provider's rate limiter.
	DefaultBatchDelay = 500 * time.Millisecond
)

// ProgressFunc receives build progress: stage name plus current/total
// within that stage. Total is 0 for stages without a known size.
type ProgressFunc func(stage string, current, total int)

// Result summarizes what a build did.
type Result struct {
	DocCount      int
	EmbeddedCount int
	SkippedCount  int
	RemovedCount  int
	Incremental   bool
	Duration      time.Duration
}

// IndexBuilder builds index artifacts into an index directory. The
// embedder is optional: without one, builds produce an empty vector index
// and search degrades to BM25.
type IndexBuilder struct {
	tokenizer  store.Tokenizer
	embedder   embed.Embedder
	usage      *telemetry.UsageStats
	logger     *slog.Logger
	progress   ProgressFunc
	batchSize  int
	batchDelay time.Duration
}

// BuilderOption configures an IndexBuilder.
type BuilderOption func(*IndexBuilder)

// WithEmbedder enables embedding generation.
func WithEmbedder(e embed.Embedder) BuilderOption {
	return func(b *IndexBuilder) { b.embedder = e }
}

// WithUsage attaches a usage collector for the post-build report.
func WithUsage(u *telemetry.UsageStats) BuilderOption {
	return func(b *IndexBuilder) { b.usage = u }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *IndexBuilder) { b.logger = l }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) BuilderOption {
	return func(b *IndexBuilder) { b.progress = fn }
}

// WithBatchSize overrides the embedding batch size.
func WithBatchSize(n int) BuilderOption {
	return func(b *IndexBuilder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithBatchDelay overrides the inter-batch pause.
func WithBatchDelay(d time.Duration) BuilderOption {
	return func(b *IndexBuilder) { b.batchDelay = d }
}

// NewIndexBuilder creates a builder using the given tokenizer.
func NewIndexBuilder(tokenizer store.Tokenizer, opts ...BuilderOption) *IndexBuilder {
	b := &IndexBuilder{
		tokenizer:  tokenizer,
		logger:     slog.Default(),
		batchSize:  DefaultBatchSize,
		batchDelay: DefaultBatchDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// LoadExistingMetadata returns the previous build's metadata when it
// exists and its hash ledger is trustworthy, nil otherwise. Nil means
// the next build must be a full one.
func (b *IndexBuilder) LoadExistingMetadata(dir string) *store.IndexMetadata {
	meta, err := store.LoadIndexMetadata(filepath.Join(dir, store.MetadataFile))
	if err != nil {
		if !os.IsNotExist(err) {
			b.logger.Warn("metadata_unreadable", slog.String("error", err.Error()))
		}
		return nil
	}
	if meta.NeedsFullRebuild() {
		b.logger.Info("metadata_schema_outdated",
			slog.String("schema_version", meta.SchemaVersion))
		return nil
	}
	return meta
}

// HasIncrementalSupport reports whether dir holds metadata good enough
// for an incremental build.
func (b *IndexBuilder) HasIncrementalSupport(dir string) bool {
	return b.LoadExistingMetadata(dir) != nil
}

// BuildFromDocuments builds the index for docs into dir, incrementally
// when trustworthy metadata from a previous build exists, from scratch
// otherwise.
func (b *IndexBuilder) BuildFromDocuments(ctx context.Context, docs []store.Document, dir string) (*Result, error) {
	if meta := b.LoadExistingMetadata(dir); meta != nil {
		return b.buildIncremental(ctx, docs, dir, meta)
	}
	return b.Build(ctx, docs, dir)
}

// Build performs a full build: BM25 index, docstore, vector index (empty
// without an embedder), and metadata, all written atomically.
func (b *IndexBuilder) Build(ctx context.Context, docs []store.Document, dir string) (*Result, error) {
	start := time.Now()
	lock, err := b.acquireLock(dir)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	b.logger.Info("build_started", slog.Int("doc_count", len(docs)), slog.String("dir", dir))

	b.report("bm25", 0, len(docs))
	bm25 := store.NewBM25Index(b.tokenizer)
	bm25.Build(docs)
	b.report("bm25", len(docs), len(docs))

	docstore := store.NewDocstore()
	docstore.AddBatch(docs)

	vectors := store.NewVectorIndex(0)
	embedded := 0
	if b.embedder != nil {
		vectors = store.NewVectorIndex(b.embedder.Dimensions())
		if err := b.embedInto(ctx, vectors, docs); err != nil {
			return nil, err
		}
		embedded = len(docs)
	}

	meta := b.newMetadata(docs)
	if err := b.saveAll(dir, bm25, vectors, docstore, meta); err != nil {
		return nil, err
	}

	result := &Result{
		DocCount:      len(docs),
		EmbeddedCount: embedded,
		Duration:      time.Since(start),
	}
	b.logger.Info("build_completed",
		slog.Int("doc_count", result.DocCount),
		slog.Int("embedded", result.EmbeddedCount),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// buildIncremental diffs docs against the previous hash ledger, reembeds
// only added and modified documents, drops removed ones from the docstore
// and vector index, and rebuilds the BM25 index wholesale from the new
// corpus. The wholesale BM25 rebuild is deliberate: reconstruction is
// cheap at this corpus scale and avoids stale-posting bookkeeping; only
// the embedding calls are worth skipping.
func (b *IndexBuilder) buildIncremental(ctx context.Context, docs []store.Document, dir string, meta *store.IndexMetadata) (*Result, error) {
	start := time.Now()
	lock, err := b.acquireLock(dir)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	diff := store.ComputeIncrementalDiff(docs, meta.DocHashes)
	b.logger.Info("incremental_diff",
		slog.Int("added", len(diff.Added)),
		slog.Int("modified", len(diff.Modified)),
		slog.Int("removed", len(diff.Removed)),
		slog.Int("unchanged", len(diff.Unchanged)))

	docstore, err := store.LoadDocstoreOrEmpty(filepath.Join(dir, store.DocstoreFile))
	if err != nil {
		return nil, fmt.Errorf("load docstore: %w", err)
	}
	vectors, err := store.LoadVectorIndexOrEmpty(filepath.Join(dir, store.VectorIndexFile))
	if err != nil {
		return nil, fmt.Errorf("load vector index: %w", err)
	}

	// Removed documents leave every structure.
	docstore.RemoveBatch(diff.Removed)
	vectors.RemoveBatch(diff.Removed)
	for _, id := range diff.Removed {
		meta.RemoveHash(id)
	}

	// Modified documents get fresh vectors; drop the stale ones first.
	for _, doc := range diff.Modified {
		vectors.Remove(doc.ID)
	}

	needsEmbedding := diff.NeedsEmbedding()
	if b.embedder != nil && len(needsEmbedding) > 0 {
		if vectors.Dimension == 0 {
			vectors.Dimension = b.embedder.Dimensions()
		}
		if err := b.embedInto(ctx, vectors, needsEmbedding); err != nil {
			return nil, err
		}
	}

	docstore.AddBatch(diff.Added)
	docstore.AddBatch(diff.Modified)
	for _, doc := range needsEmbedding {
		meta.UpdateHash(doc.ID, doc.ContentHash())
	}

	// BM25 statistics are corpus-global, so the keyword index is always
	// reconstructed from the full new document set.
	bm25 := store.NewBM25Index(b.tokenizer)
	bm25.Build(docs)

	meta.DocCount = len(docs)
	meta.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	meta.SchemaVersion = store.CurrentSchemaVersion
	if b.embedder != nil {
		model := b.embedder.ModelName()
		meta.EmbeddingModel = &model
	}

	if err := b.saveAll(dir, bm25, vectors, docstore, meta); err != nil {
		return nil, err
	}

	result := &Result{
		DocCount:      len(docs),
		EmbeddedCount: diff.EmbeddingsNeeded(),
		SkippedCount:  len(diff.Unchanged),
		RemovedCount:  len(diff.Removed),
		Incremental:   true,
		Duration:      time.Since(start),
	}
	b.logger.Info("incremental_build_completed",
		slog.Int("doc_count", result.DocCount),
		slog.Int("embedded", result.EmbeddedCount),
		slog.Int("skipped", result.SkippedCount),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// embedInto embeds docs in batches and appends the vectors to the index.
// Batches run sequentially with a pause in between; the provider's rate
// limiter punishes bursts harder than we gain from parallelism.
func (b *IndexBuilder) embedInto(ctx context.Context, vectors *store.VectorIndex, docs []store.Document) error {
	total := len(docs)
	for batchStart := 0; batchStart < total; batchStart += b.batchSize {
		end := batchStart + b.batchSize
		if end > total {
			end = total
		}
		batch := docs[batchStart:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Metadata.Title + " " + doc.Text
		}

		embeddings, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", batchStart, end, err)
		}
		for i, vec := range embeddings {
			if err := vectors.Add(batch[i].ID, vec); err != nil {
				return fmt.Errorf("add vector for %s: %w", batch[i].ID, err)
			}
		}
		b.report("embed", end, total)

		if end < total && b.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.batchDelay):
			}
		}
	}
	return nil
}

// newMetadata builds a fresh ledger covering every document.
func (b *IndexBuilder) newMetadata(docs []store.Document) *store.IndexMetadata {
	var model *string
	if b.embedder != nil {
		m := b.embedder.ModelName()
		model = &m
	}
	meta := store.NewIndexMetadata(len(docs), model)
	for _, doc := range docs {
		meta.UpdateHash(doc.ID, doc.ContentHash())
	}
	return meta
}

// saveAll persists the four artifacts. Each write is individually atomic.
func (b *IndexBuilder) saveAll(dir string, bm25 *store.BM25Index, vectors *store.VectorIndex, docstore *store.Docstore, meta *store.IndexMetadata) error {
	b.report("save", 0, 4)
	if err := bm25.Save(filepath.Join(dir, store.BM25IndexFile)); err != nil {
		return err
	}
	b.report("save", 1, 4)
	if err := vectors.Save(filepath.Join(dir, store.VectorIndexFile)); err != nil {
		return err
	}
	b.report("save", 2, 4)
	if err := docstore.Save(filepath.Join(dir, store.DocstoreFile)); err != nil {
		return err
	}
	b.report("save", 3, 4)
	if err := meta.Save(filepath.Join(dir, store.MetadataFile)); err != nil {
		return err
	}
	b.report("save", 4, 4)
	return nil
}

func (b *IndexBuilder) acquireLock(dir string) (*BuildLock, error) {
	lock := NewBuildLock(dir)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, memoerrors.New(memoerrors.CodeBuildLocked, memoerrors.CategoryBuild,
			fmt.Sprintf("another build holds the lock on %s", dir)).
			WithSuggestion("wait for the running build to finish")
	}
	return lock, nil
}

func (b *IndexBuilder) report(stage string, current, total int) {
	if b.progress != nil {
		b.progress(stage, current, total)
	}
}
