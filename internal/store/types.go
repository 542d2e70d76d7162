// Package store contains the index data structures for memodex: the
// document store, the BM25 inverted index, the vector index, the index
// metadata ledger, and the incremental diff engine that decides which
// documents need reprocessing between builds.
package store

import (
	"errors"
	"time"
)

// Artifact file names inside an index directory.
const (
	BM25IndexFile  = "bm25_index.json"
	VectorIndexFile = "faiss_index.json"
	DocstoreFile   = "docstore.json"
	MetadataFile   = "metadata.json"
)

// ErrDimensionMismatch is returned when a vector's dimension does not match
// the index's declared dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// DocumentMetadata carries the display metadata of a memo entry.
// Tags and date never participate in document identity.
type DocumentMetadata struct {
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Tags  []string  `json:"tags"`
}

// Document is a single memo/changelog entry.
// ID is content-derived (see ComputeContentHash) unless the document was
// created in legacy mode with a random ID.
type Document struct {
	ID       string           `json:"id"`
	Metadata DocumentMetadata `json:"metadata"`
	Text     string           `json:"text"`
}

// ScoredID is a ranked document reference produced by the index search
// methods. The score scale is algorithm-specific: raw BM25 for the keyword
// index, cosine similarity in [-1, 1] for the vector index.
type ScoredID struct {
	ID    string
	Score float64
}

// Tokenizer converts raw text into an ordered list of normalized tokens.
// Implementations must be deterministic for a given input.
type Tokenizer interface {
	Tokenize(text string) []string
}
