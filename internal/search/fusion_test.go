package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRRFFusion(t *testing.T) {
	f := NewRRFFusion()

	t.Run("document in both lists sums contributions", func(t *testing.T) {
		listA := []SearchResult{{DocID: "d1", Score: 12.5}}
		listB := []SearchResult{{DocID: "d2", Score: 0.9}, {DocID: "d1", Score: 0.8}}

		fused := f.Fuse(listA, listB)
		require.Len(t, fused, 2)

		// d1: rank 1 in A, rank 2 in B.
		assert.Equal(t, "d1", fused[0].DocID)
		assert.InDelta(t, 1.0/61.0+1.0/62.0, fused[0].Score, 1e-12)

		// d2: rank 1 in B only.
		assert.Equal(t, "d2", fused[1].DocID)
		assert.InDelta(t, 1.0/61.0, fused[1].Score, 1e-12)
	})

	t.Run("raw scores never leak into fusion", func(t *testing.T) {
		// Same ranks, wildly different raw scores: identical output.
		a := f.Fuse([]SearchResult{{DocID: "x", Score: 1000}}, nil)
		b := f.Fuse([]SearchResult{{DocID: "x", Score: 0.0001}}, nil)
		assert.Equal(t, a[0].Score, b[0].Score)
	})

	t.Run("both lists empty", func(t *testing.T) {
		assert.Empty(t, f.Fuse(nil, nil))
	})

	t.Run("title and snippet propagate first seen", func(t *testing.T) {
		listA := []SearchResult{{DocID: "d1", Title: "keyword title"}}
		listB := []SearchResult{{DocID: "d1", Title: "semantic title", Snippet: "semantic snippet"}}

		fused := f.Fuse(listA, listB)
		require.Len(t, fused, 1)
		assert.Equal(t, "keyword title", fused[0].Title)
		assert.Equal(t, "semantic snippet", fused[0].Snippet)
	})

	t.Run("equal scores break ties by ascending doc ID", func(t *testing.T) {
		listA := []SearchResult{{DocID: "zeta"}}
		listB := []SearchResult{{DocID: "alpha"}}

		fused := f.Fuse(listA, listB)
		require.Len(t, fused, 2)
		assert.Equal(t, "alpha", fused[0].DocID)
		assert.Equal(t, "zeta", fused[1].DocID)
	})

	t.Run("custom k", func(t *testing.T) {
		small := NewRRFFusion(WithK(1))
		fused := small.Fuse([]SearchResult{{DocID: "d1"}}, nil)
		assert.InDelta(t, 0.5, fused[0].Score, 1e-12)
	})
}
