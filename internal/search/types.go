// Package search orchestrates query execution over the index artifacts:
// mode dispatch, RRF fusion of keyword and semantic rankings, and tag
// post-filtering.
package search

import "fmt"

// SearchMode selects the retrieval path. The set is closed; dispatch is
// an exhaustive switch.
type SearchMode int

const (
	// ModeBM25 ranks with the keyword index only.
	ModeBM25 SearchMode = iota
	// ModeSemantic ranks with cosine similarity over embeddings only.
	ModeSemantic
	// ModeHybrid runs both and fuses the rankings with RRF.
	ModeHybrid
)

// String returns the wire/CLI name of the mode.
func (m SearchMode) String() string {
	switch m {
	case ModeBM25:
		return "bm25"
	case ModeSemantic:
		return "semantic"
	case ModeHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("SearchMode(%d)", int(m))
	}
}

// ParseMode maps a mode name to its SearchMode.
func ParseMode(s string) (SearchMode, error) {
	switch s {
	case "bm25":
		return ModeBM25, nil
	case "semantic":
		return ModeSemantic, nil
	case "hybrid":
		return ModeHybrid, nil
	default:
		return ModeBM25, fmt.Errorf("unknown search mode %q (want bm25, semantic, or hybrid)", s)
	}
}

// SearchResult is one ranked answer. Score scale depends on the mode:
// raw BM25, cosine similarity, or RRF. Title and Snippet are display
// fields populated by orchestration, never by the ranking algorithms.
type SearchResult struct {
	DocID   string  `json:"doc_id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title,omitempty"`
	Snippet string  `json:"snippet,omitempty"`
}

// Options are per-query knobs.
type Options struct {
	Mode SearchMode
	TopK int
	Tag  string
}

// DefaultTopK is used when Options.TopK is unset.
const DefaultTopK = 10

// DefaultOptions returns hybrid search with the default result count.
func DefaultOptions() Options {
	return Options{Mode: ModeHybrid, TopK: DefaultTopK}
}
