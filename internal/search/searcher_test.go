package search

import (
	"context"
	"errors"
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

// fakeEmbedder returns a fixed vector per known word, so semantic
// rankings in tests are fully determined.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int                    { return 3 }
func (f *fakeEmbedder) ModelName() string                  { return "fake" }
func (f *fakeEmbedder) Available(_ context.Context) bool   { return true }
func (f *fakeEmbedder) Close() error                       { return nil }

func testIndexes(t *testing.T) (*store.BM25Index, *store.VectorIndex, *store.Docstore) {
	t.Helper()
	date := func(day int) time.Time {
		return time.Date(2024, 7, day, 0, 0, 0, 0, time.UTC)
	}
	docs := []store.Document{
		{ID: "alpha", Metadata: store.DocumentMetadata{Title: "server work", Date: date(1), Tags: []string{"dev"}}, Text: "built the search server"},
		{ID: "beta", Metadata: store.DocumentMetadata{Title: "gardening", Date: date(2), Tags: []string{"home"}}, Text: "planted tomatoes outside"},
		{ID: "gamma", Metadata: store.DocumentMetadata{Title: "server tuning", Date: date(3), Tags: []string{"dev"}}, Text: "tuned the server latency"},
	}

	bm25 := store.NewBM25Index(wordTokenizer{})
	bm25.Build(docs)

	vectors := store.NewVectorIndex(3)
	require.NoError(t, vectors.Add("alpha", []float32{1, 0, 0}))
	require.NoError(t, vectors.Add("beta", []float32{0, 1, 0}))
	require.NoError(t, vectors.Add("gamma", []float32{0.9, 0.1, 0}))

	ds := store.NewDocstore()
	ds.AddBatch(docs)
	return bm25, vectors, ds
}

func TestSearchModeBM25(t *testing.T) {
	bm25, vectors, ds := testIndexes(t)
	s := NewSearcherFromIndexes(bm25, vectors, ds)

	results, err := s.Search(context.Background(), "server", Options{Mode: ModeBM25, TopK: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, []string{"alpha", "gamma"}, r.DocID)
		assert.NotEmpty(t, r.Title, "titles come from the docstore")
	}
}

func TestSearchModeSemantic(t *testing.T) {
	bm25, vectors, ds := testIndexes(t)
	emb := &fakeEmbedder{vectors: map[string][]float32{"servers": {1, 0, 0}}}
	s := NewSearcherFromIndexes(bm25, vectors, ds, WithEmbedder(emb))

	results, err := s.Search(context.Background(), "servers", Options{Mode: ModeSemantic, TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].DocID)
	assert.Equal(t, "gamma", results[1].DocID)
	assert.Equal(t, 1, emb.calls)
}

func TestSearchSemanticDegrades(t *testing.T) {
	t.Run("no embedder", func(t *testing.T) {
		bm25, vectors, ds := testIndexes(t)
		s := NewSearcherFromIndexes(bm25, vectors, ds)
		results, err := s.Search(context.Background(), "server", Options{Mode: ModeSemantic})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty vector index", func(t *testing.T) {
		bm25, _, ds := testIndexes(t)
		emb := &fakeEmbedder{}
		s := NewSearcherFromIndexes(bm25, store.NewVectorIndex(0), ds, WithEmbedder(emb))
		results, err := s.Search(context.Background(), "server", Options{Mode: ModeSemantic})
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Zero(t, emb.calls, "no embedding call without vectors to rank")
	})

	t.Run("embedding error is not fatal", func(t *testing.T) {
		bm25, vectors, ds := testIndexes(t)
		emb := &fakeEmbedder{err: errors.New("api unreachable")}
		s := NewSearcherFromIndexes(bm25, vectors, ds, WithEmbedder(emb))
		results, err := s.Search(context.Background(), "server", Options{Mode: ModeSemantic})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearchModeHybrid(t *testing.T) {
	bm25, vectors, ds := testIndexes(t)
	emb := &fakeEmbedder{vectors: map[string][]float32{"server": {1, 0, 0}}}
	s := NewSearcherFromIndexes(bm25, vectors, ds, WithEmbedder(emb))

	results, err := s.Search(context.Background(), "server", Options{Mode: ModeHybrid, TopK: 3})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// alpha appears high in both lists, so fusion ranks it first.
	assert.Equal(t, "alpha", results[0].DocID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchHybridDegradesToBM25(t *testing.T) {
	bm25, vectors, ds := testIndexes(t)
	full := NewSearcherFromIndexes(bm25, vectors, ds)
	degraded, err := full.Search(context.Background(), "server", Options{Mode: ModeHybrid, TopK: 5})
	require.NoError(t, err)

	keyword, err := full.Search(context.Background(), "server", Options{Mode: ModeBM25, TopK: 5})
	require.NoError(t, err)

	// Same documents in the same order; only the score scale differs.
	require.Equal(t, len(keyword), len(degraded))
	for i := range keyword {
		assert.Equal(t, keyword[i].DocID, degraded[i].DocID)
	}
}

func TestSearchTagFilter(t *testing.T) {
	bm25, vectors, ds := testIndexes(t)
	s := NewSearcherFromIndexes(bm25, vectors, ds)

	results, err := s.Search(context.Background(), "server", Options{Mode: ModeBM25, TopK: 10, Tag: "dev"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = s.Search(context.Background(), "server", Options{Mode: ModeBM25, TopK: 10, Tag: "home"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchTopKDefault(t *testing.T) {
	bm25, vectors, ds := testIndexes(t)
	s := NewSearcherFromIndexes(bm25, vectors, ds)

	results, err := s.Search(context.Background(), "server", Options{Mode: ModeBM25})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), DefaultTopK)
}

func TestSearcherAccessors(t *testing.T) {
	bm25, vectors, ds := testIndexes(t)
	s := NewSearcherFromIndexes(bm25, vectors, ds)

	assert.Equal(t, []string{"dev", "home"}, s.ListTags())
	assert.Equal(t, map[string]int{"dev": 2, "home": 1}, s.TagCounts())
	assert.Equal(t, 3, s.DocCount())
	assert.True(t, s.HasVectorIndex())

	recent := s.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "gamma", recent[0].ID)

	doc, ok := s.Document("alpha")
	require.True(t, ok)
	assert.Equal(t, "server work", doc.Metadata.Title)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchMode
		wantErr bool
	}{
		{"bm25", ModeBM25, false},
		{"semantic", ModeSemantic, false},
		{"hybrid", ModeHybrid, false},
		{"keyword", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		mode, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, mode)
	}
}
