package store

import (
	"math"
	"os"
	"sort"
	"strings"
)

// BM25 parameters. k1 controls term-frequency saturation, b controls
// document-length normalization.
const (
	BM25K1 = 1.2
	BM25B  = 0.75
)

// Posting is one inverted-index entry: [document index, term frequency].
// Serialized as a two-element JSON array for cross-implementation
// compatibility with the persisted index format.
type Posting [2]int

// DocIndex returns the document's position in DocIDs.
func (p Posting) DocIndex() int { return p[0] }

// TermFreq returns the term's frequency within the document.
func (p Posting) TermFreq() int { return p[1] }

// BM25Index is an inverted index with precomputed corpus statistics for
// BM25 ranking. It is built wholesale from a document set and treated as
// read-only afterwards; there is no incremental update path (incremental
// builds reconstruct it from the full new corpus).
type BM25Index struct {
	DocIDs         []string             `json:"doc_ids"`
	DocTokens      [][]string           `json:"doc_tokens"`
	InvertedIndex  map[string][]Posting `json:"inverted_index"`
	DocLengths     []int                `json:"doc_lengths"`
	AvgDocLength   float64              `json:"avg_doc_length"`
	DocFrequencies map[string]int       `json:"doc_frequencies"`
	NumDocs        int                  `json:"num_docs"`

	tokenizer Tokenizer
}

// legacyBM25File is the older persisted shape: tokenized documents without
// precomputed statistics. Load reconstructs everything derived from it.
type legacyBM25File struct {
	DocIDs []string   `json:"doc_ids"`
	Corpus [][]string `json:"corpus"`
}

// NewBM25Index creates an empty index using the given tokenizer.
func NewBM25Index(tokenizer Tokenizer) *BM25Index {
	return &BM25Index{
		InvertedIndex:  make(map[string][]Posting),
		DocFrequencies: make(map[string]int),
		tokenizer:      tokenizer,
	}
}

// SetTokenizer attaches a tokenizer to an index restored from disk.
func (idx *BM25Index) SetTokenizer(t Tokenizer) { idx.tokenizer = t }

// Build constructs the inverted index and corpus statistics from scratch.
// Each document is tokenized as "title text" so title terms are searchable.
// Insertion order follows the input slice, keeping doc indices stable
// across rebuilds of the same corpus.
func (idx *BM25Index) Build(docs []Document) {
	idx.DocIDs = make([]string, 0, len(docs))
	idx.DocTokens = make([][]string, 0, len(docs))
	for _, doc := range docs {
		idx.DocIDs = append(idx.DocIDs, doc.ID)
		idx.DocTokens = append(idx.DocTokens, idx.tokenize(doc.Metadata.Title+" "+doc.Text))
	}
	idx.rebuildStatistics()
}

// rebuildStatistics recomputes every derived field from DocIDs/DocTokens.
// Shared by Build and by the legacy-format load path.
func (idx *BM25Index) rebuildStatistics() {
	idx.NumDocs = len(idx.DocTokens)
	idx.DocLengths = make([]int, idx.NumDocs)
	idx.InvertedIndex = make(map[string][]Posting)
	idx.DocFrequencies = make(map[string]int)

	total := 0
	for i, tokens := range idx.DocTokens {
		idx.DocLengths[i] = len(tokens)
		total += len(tokens)

		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		for term, tf := range freqs {
			idx.InvertedIndex[term] = append(idx.InvertedIndex[term], Posting{i, tf})
			idx.DocFrequencies[term]++
		}
	}

	// Postings accumulate in map-iteration order; sort by doc index so the
	// persisted artifact is reproducible.
	for term := range idx.InvertedIndex {
		postings := idx.InvertedIndex[term]
		sort.Slice(postings, func(a, b int) bool { return postings[a][0] < postings[b][0] })
	}

	if idx.NumDocs > 0 {
		idx.AvgDocLength = float64(total) / float64(idx.NumDocs)
	} else {
		idx.AvgDocLength = 0
	}
}

// Search ranks documents against the query with BM25 and returns up to
// topK results sorted by descending score. Documents with no query-term
// overlap are excluded. Empty query or empty corpus yields an empty list.
// Ties break by ascending document ID so repeated searches are
// deterministic.
func (idx *BM25Index) Search(query string, topK int) []ScoredID {
	if idx.NumDocs == 0 || topK <= 0 {
		return nil
	}
	queryTokens := idx.tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	scores := make(map[int]float64)
	for _, term := range queryTokens {
		postings, ok := idx.InvertedIndex[term]
		if !ok {
			continue
		}
		idf := idx.idf(term)
		for _, p := range postings {
			docIdx, tf := p.DocIndex(), float64(p.TermFreq())
			lengthNorm := 1 - BM25B + BM25B*float64(idx.DocLengths[docIdx])/idx.AvgDocLength
			scores[docIdx] += idf * tf * (BM25K1 + 1) / (tf + BM25K1*lengthNorm)
		}
	}

	ranked := make([]ScoredID, 0, len(scores))
	for docIdx, score := range scores {
		if score > 0 {
			ranked = append(ranked, ScoredID{ID: idx.DocIDs[docIdx], Score: score})
		}
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}
		return ranked[a].ID < ranked[b].ID
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// idf computes ln((N - df + 0.5) / (df + 0.5) + 1). The +1 keeps the
// value positive even when a term appears in more than half the corpus.
func (idx *BM25Index) idf(term string) float64 {
	df := float64(idx.DocFrequencies[term])
	n := float64(idx.NumDocs)
	return math.Log((n-df+0.5)/(df+0.5) + 1)
}

func (idx *BM25Index) tokenize(text string) []string {
	if idx.tokenizer == nil {
		// Degenerate fallback so a restored index without a tokenizer still
		// answers queries, albeit with naive whitespace splitting.
		return strings.Fields(strings.ToLower(text))
	}
	return idx.tokenizer.Tokenize(text)
}

// Save persists the index atomically to path.
func (idx *BM25Index) Save(path string) error {
	return saveJSON(path, idx)
}

// LoadBM25Index reads an index from path and attaches the tokenizer.
// Both the full persisted shape and the legacy {doc_ids, corpus} shape are
// accepted; derived statistics are reconstructed for the latter. A missing
// file surfaces as the os.ReadFile error so callers can map it to an
// empty index.
func LoadBM25Index(path string, tokenizer Tokenizer) (*BM25Index, error) {
	var probe map[string]any
	if err := loadJSON(path, &probe); err != nil {
		return nil, err
	}

	if _, isLegacy := probe["corpus"]; isLegacy {
		var legacy legacyBM25File
		if err := loadJSON(path, &legacy); err != nil {
			return nil, err
		}
		idx := NewBM25Index(tokenizer)
		idx.DocIDs = legacy.DocIDs
		idx.DocTokens = legacy.Corpus
		idx.rebuildStatistics()
		return idx, nil
	}

	idx := NewBM25Index(tokenizer)
	if err := loadJSON(path, idx); err != nil {
		return nil, err
	}
	if idx.InvertedIndex == nil {
		idx.InvertedIndex = make(map[string][]Posting)
	}
	if idx.DocFrequencies == nil {
		idx.DocFrequencies = make(map[string]int)
	}
	idx.tokenizer = tokenizer
	return idx, nil
}

// LoadBM25IndexOrEmpty is LoadBM25Index with missing-file forgiveness:
// a file that does not exist yields a fresh empty index.
func LoadBM25IndexOrEmpty(path string, tokenizer Tokenizer) (*BM25Index, error) {
	idx, err := LoadBM25Index(path, tokenizer)
	if os.IsNotExist(err) {
		return NewBM25Index(tokenizer), nil
	}
	return idx, err
}
