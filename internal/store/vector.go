package store

import (
	"math"
	"os"
	"sort"
)

// VectorIndex is a brute-force cosine-similarity index: parallel slices of
// document IDs and embedding vectors plus a declared dimension. Dimension 0
// means "no vectors yet"; the first Add infers it. The index is read-only
// after a build completes.
type VectorIndex struct {
	DocIDs    []string    `json:"doc_ids"`
	Vectors   [][]float32 `json:"vectors"`
	Dimension int         `json:"dimension"`
}

// NewVectorIndex creates an index with the given dimension (0 to infer
// from the first added vector).
func NewVectorIndex(dimension int) *VectorIndex {
	return &VectorIndex{
		DocIDs:    []string{},
		Vectors:   [][]float32{},
		Dimension: dimension,
	}
}

// Len returns the number of stored vectors.
func (v *VectorIndex) Len() int { return len(v.DocIDs) }

// IsEmpty reports whether the index holds no vectors.
func (v *VectorIndex) IsEmpty() bool { return len(v.DocIDs) == 0 }

// Add appends an embedding for docID. The first vector fixes the
// dimension when none was declared; later vectors must match it.
func (v *VectorIndex) Add(docID string, vector []float32) error {
	if v.Dimension == 0 {
		v.Dimension = len(vector)
	} else if len(vector) != v.Dimension {
		return ErrDimensionMismatch
	}
	v.DocIDs = append(v.DocIDs, docID)
	v.Vectors = append(v.Vectors, vector)
	return nil
}

// Search computes cosine similarity between the query vector and every
// stored vector, drops non-positive similarities, and returns up to topK
// results by descending score (ties break by ascending document ID).
// An empty index or empty query vector yields an empty list.
func (v *VectorIndex) Search(query []float32, topK int) []ScoredID {
	if v.IsEmpty() || len(query) == 0 || topK <= 0 {
		return nil
	}

	ranked := make([]ScoredID, 0, len(v.Vectors))
	for i, vec := range v.Vectors {
		score := CosineSimilarity(query, vec)
		if score > 0 {
			ranked = append(ranked, ScoredID{ID: v.DocIDs[i], Score: score})
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

// Remove deletes docID's vector, keeping DocIDs and Vectors in lock-step.
// A missing ID is a silent no-op.
func (v *VectorIndex) Remove(docID string) {
	for i, id := range v.DocIDs {
		if id == docID {
			v.DocIDs = append(v.DocIDs[:i], v.DocIDs[i+1:]...)
			v.Vectors = append(v.Vectors[:i], v.Vectors[i+1:]...)
			return
		}
	}
}

// RemoveBatch removes every listed ID.
func (v *VectorIndex) RemoveBatch(docIDs []string) {
	for _, id := range docIDs {
		v.Remove(id)
	}
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|). Mismatched lengths,
// empty operands, and zero-norm vectors all yield 0 rather than an error:
// the ranking core is a total function over degenerate inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Save persists the index atomically to path.
func (v *VectorIndex) Save(path string) error {
	return saveJSON(path, v)
}

// LoadVectorIndex reads a vector index from path.
func LoadVectorIndex(path string) (*VectorIndex, error) {
	idx := NewVectorIndex(0)
	if err := loadJSON(path, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// LoadVectorIndexOrEmpty maps a missing file to an empty index.
func LoadVectorIndexOrEmpty(path string) (*VectorIndex, error) {
	idx, err := LoadVectorIndex(path)
	if os.IsNotExist(err) {
		return NewVectorIndex(0), nil
	}
	return idx, err
}
