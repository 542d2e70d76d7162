package search

import "sort"

// DefaultRRFK is the standard RRF dampening constant.
const DefaultRRFK = 60.0

// RRFFusion merges two ranked lists with Reciprocal Rank Fusion. Each
// result contributes 1/(k + rank) per list it appears in, rank 1-based,
// and contributions are summed. Fusion is rank-based, so the differing
// score scales of BM25 and cosine similarity never leak into the merge.
type RRFFusion struct {
	k float64
}

// FusionOption configures the fusion.
type FusionOption func(*RRFFusion)

// WithK overrides the dampening constant.
func WithK(k float64) FusionOption {
	return func(f *RRFFusion) { f.k = k }
}

// NewRRFFusion creates a fusion with k=60 unless overridden.
func NewRRFFusion(opts ...FusionOption) *RRFFusion {
	f := &RRFFusion{k: DefaultRRFK}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fuse merges the two lists. Output contains every distinct document seen
// in either input, sorted by descending RRF score with ascending doc-ID
// tie-break. Title and snippet propagate first-seen.
func (f *RRFFusion) Fuse(listA, listB []SearchResult) []SearchResult {
	merged := make(map[string]*SearchResult)

	accumulate := func(list []SearchResult) {
		for rank, r := range list {
			contribution := 1.0 / (f.k + float64(rank+1))
			if existing, ok := merged[r.DocID]; ok {
				existing.Score += contribution
				if existing.Title == "" {
					existing.Title = r.Title
				}
				if existing.Snippet == "" {
					existing.Snippet = r.Snippet
				}
			} else {
				merged[r.DocID] = &SearchResult{
					DocID:   r.DocID,
					Score:   contribution,
					Title:   r.Title,
					Snippet: r.Snippet,
				}
			}
		}
	}
	accumulate(listA)
	accumulate(listB)

	fused := make([]SearchResult, 0, len(merged))
	for _, r := range merged {
		fused = append(fused, *r)
	}
	sort.Slice(fused, func(a, b int) bool {
		if fused[a].Score != fused[b].Score {
			return fused[a].Score > fused[b].Score
		}
		return fused[a].DocID < fused[b].DocID
	})
	return fused
}
