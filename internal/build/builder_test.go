package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harukit/memodex/internal/store"
)

type wordTokenizer struct{}

func (wordTokenizer) Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// recordingEmbedder tracks which texts were embedded, so incremental
// tests can assert that unchanged documents skip the API.
type recordingEmbedder struct {
	embedded []string
}

func (r *recordingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := r.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (r *recordingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		r.embedded = append(r.embedded, text)
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func (r *recordingEmbedder) Dimensions() int                  { return 2 }
func (r *recordingEmbedder) ModelName() string                { return "recording" }
func (r *recordingEmbedder) Available(_ context.Context) bool { return true }
func (r *recordingEmbedder) Close() error                     { return nil }

func buildDocs(titles ...string) []store.Document {
	docs := make([]store.Document, len(titles))
	for i, title := range titles {
		docs[i] = store.NewDocument(title,
			time.Date(2024, 8, i+1, 0, 0, 0, 0, time.UTC),
			nil, "body of "+title)
	}
	return docs
}

func TestFullBuildWritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	b := NewIndexBuilder(wordTokenizer{})

	result, err := b.Build(context.Background(), buildDocs("alpha", "beta"), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DocCount)
	assert.False(t, result.Incremental)

	for _, name := range []string{
		store.BM25IndexFile, store.VectorIndexFile, store.DocstoreFile, store.MetadataFile,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	meta, err := store.LoadIndexMetadata(filepath.Join(dir, store.MetadataFile))
	require.NoError(t, err)
	assert.Equal(t, 2, meta.DocCount)
	assert.Equal(t, store.CurrentSchemaVersion, meta.SchemaVersion)
	assert.Len(t, meta.DocHashes, 2)
	assert.Nil(t, meta.EmbeddingModel, "no embedder configured")
}

func TestFullBuildWithoutEmbedderLeavesVectorsEmpty(t *testing.T) {
	dir := t.TempDir()
	b := NewIndexBuilder(wordTokenizer{})

	result, err := b.Build(context.Background(), buildDocs("alpha"), dir)
	require.NoError(t, err)
	assert.Zero(t, result.EmbeddedCount)

	vectors, err := store.LoadVectorIndex(filepath.Join(dir, store.VectorIndexFile))
	require.NoError(t, err)
	assert.True(t, vectors.IsEmpty())
}

func TestFullBuildWithEmbedder(t *testing.T) {
	dir := t.TempDir()
	emb := &recordingEmbedder{}
	b := NewIndexBuilder(wordTokenizer{}, WithEmbedder(emb), WithBatchDelay(0))

	result, err := b.Build(context.Background(), buildDocs("alpha", "beta", "gamma"), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, result.EmbeddedCount)
	assert.Len(t, emb.embedded, 3)

	vectors, err := store.LoadVectorIndex(filepath.Join(dir, store.VectorIndexFile))
	require.NoError(t, err)
	assert.Equal(t, 3, vectors.Len())
	assert.Equal(t, 2, vectors.Dimension)

	meta, err := store.LoadIndexMetadata(filepath.Join(dir, store.MetadataFile))
	require.NoError(t, err)
	require.NotNil(t, meta.EmbeddingModel)
	assert.Equal(t, "recording", *meta.EmbeddingModel)
}

func TestIncrementalBuildSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	docs := buildDocs("alpha", "beta")

	first := &recordingEmbedder{}
	b1 := NewIndexBuilder(wordTokenizer{}, WithEmbedder(first), WithBatchDelay(0))
	_, err := b1.Build(context.Background(), docs, dir)
	require.NoError(t, err)

	// Second build over the same corpus plus one new document.
	second := &recordingEmbedder{}
	b2 := NewIndexBuilder(wordTokenizer{}, WithEmbedder(second), WithBatchDelay(0))
	require.True(t, b2.HasIncrementalSupport(dir))

	updated := append(append([]store.Document{}, docs...), buildDocs("gamma")...)
	result, err := b2.BuildFromDocuments(context.Background(), updated, dir)
	require.NoError(t, err)

	assert.True(t, result.Incremental)
	assert.Equal(t, 3, result.DocCount)
	assert.Equal(t, 1, result.EmbeddedCount)
	assert.Equal(t, 2, result.SkippedCount)
	require.Len(t, second.embedded, 1)
	assert.Contains(t, second.embedded[0], "gamma")

	vectors, err := store.LoadVectorIndex(filepath.Join(dir, store.VectorIndexFile))
	require.NoError(t, err)
	assert.Equal(t, 3, vectors.Len())
}

func TestIncrementalBuildRemovesDroppedDocuments(t *testing.T) {
	dir := t.TempDir()
	docs := buildDocs("alpha", "beta")

	b := NewIndexBuilder(wordTokenizer{}, WithEmbedder(&recordingEmbedder{}), WithBatchDelay(0))
	_, err := b.Build(context.Background(), docs, dir)
	require.NoError(t, err)

	result, err := b.BuildFromDocuments(context.Background(), docs[:1], dir)
	require.NoError(t, err)
	assert.True(t, result.Incremental)
	assert.Equal(t, 1, result.RemovedCount)

	ds, err := store.LoadDocstore(filepath.Join(dir, store.DocstoreFile))
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	_, ok := ds.Get(docs[1].ID)
	assert.False(t, ok)

	vectors, err := store.LoadVectorIndex(filepath.Join(dir, store.VectorIndexFile))
	require.NoError(t, err)
	assert.Equal(t, 1, vectors.Len())

	meta, err := store.LoadIndexMetadata(filepath.Join(dir, store.MetadataFile))
	require.NoError(t, err)
	assert.Equal(t, 1, meta.DocCount)
	_, ok = meta.Hash(docs[1].ID)
	assert.False(t, ok)
}

func TestOutdatedSchemaForcesFullBuild(t *testing.T) {
	dir := t.TempDir()
	docs := buildDocs("alpha")

	b := NewIndexBuilder(wordTokenizer{})
	_, err := b.Build(context.Background(), docs, dir)
	require.NoError(t, err)

	// Rewrite the metadata as an old schema version.
	metaPath := filepath.Join(dir, store.MetadataFile)
	meta, err := store.LoadIndexMetadata(metaPath)
	require.NoError(t, err)
	meta.SchemaVersion = "1.0"
	require.NoError(t, meta.Save(metaPath))

	assert.False(t, b.HasIncrementalSupport(dir))

	result, err := b.BuildFromDocuments(context.Background(), docs, dir)
	require.NoError(t, err)
	assert.False(t, result.Incremental, "outdated schema falls back to a full build")
}

func TestBuildRebuildsBM25FromFullCorpus(t *testing.T) {
	dir := t.TempDir()
	b := NewIndexBuilder(wordTokenizer{})

	docs := buildDocs("alpha", "beta")
	_, err := b.Build(context.Background(), docs, dir)
	require.NoError(t, err)

	updated := append(append([]store.Document{}, docs...), buildDocs("gamma")...)
	_, err = b.BuildFromDocuments(context.Background(), updated, dir)
	require.NoError(t, err)

	bm25, err := store.LoadBM25Index(filepath.Join(dir, store.BM25IndexFile), wordTokenizer{})
	require.NoError(t, err)
	assert.Equal(t, 3, bm25.NumDocs)

	results := bm25.Search("gamma", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, updated[2].ID, results[0].ID)
}

func TestBuildProgressReported(t *testing.T) {
	dir := t.TempDir()
	stages := make(map[string]bool)
	b := NewIndexBuilder(wordTokenizer{}, WithProgress(func(stage string, current, total int) {
		stages[stage] = true
	}))

	_, err := b.Build(context.Background(), buildDocs("alpha"), dir)
	require.NoError(t, err)
	assert.True(t, stages["bm25"])
	assert.True(t, stages["save"])
}

func TestBuildLockBlocksConcurrentBuilds(t *testing.T) {
	dir := t.TempDir()

	lock := NewBuildLock(dir)
	acquired, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, acquired)
	defer lock.Unlock()

	// Same-process flocks do not conflict on every platform, so exercise
	// the lock API directly rather than racing two builders.
	assert.Equal(t, filepath.Join(dir, ".build.lock"), lock.Path())
	require.NoError(t, lock.Unlock())
	require.NoError(t, lock.Unlock(), "unlock is idempotent")
}
