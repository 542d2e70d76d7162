package store

// IncrementalDiff classifies a new document batch against the hash ledger
// of the previous build. Every ID in the union of (new documents, existing
// ledger keys) lands in exactly one bucket.
type IncrementalDiff struct {
	Added     []Document
	Modified  []Document
	Unchanged []Document
	Removed   []string
}

// ComputeIncrementalDiff compares newDocs against existingHashes
// (document ID -> content hash, from the previous build's metadata).
// A document whose ID is unknown is added; a known ID with an equal
// current content hash is unchanged; a known ID with a differing hash is
// modified. Ledger IDs never seen among newDocs are removed. Single pass
// over newDocs plus one pass over the ledger; 16-hex-char hashes are
// assumed collision-free at the target corpus scale.
func ComputeIncrementalDiff(newDocs []Document, existingHashes map[string]string) *IncrementalDiff {
	diff := &IncrementalDiff{}
	seen := make(map[string]struct{}, len(newDocs))

	for _, doc := range newDocs {
		seen[doc.ID] = struct{}{}
		stored, exists := existingHashes[doc.ID]
		switch {
		case !exists:
			diff.Added = append(diff.Added, doc)
		case stored == doc.ContentHash():
			diff.Unchanged = append(diff.Unchanged, doc)
		default:
			diff.Modified = append(diff.Modified, doc)
		}
	}

	for id := range existingHashes {
		if _, ok := seen[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}
	return diff
}

// EmbeddingsNeeded returns how many documents require fresh embeddings:
// only added and modified ones.
func (d *IncrementalDiff) EmbeddingsNeeded() int {
	return len(d.Added) + len(d.Modified)
}

// NeedsEmbedding returns the documents requiring fresh embeddings, added
// first, then modified.
func (d *IncrementalDiff) NeedsEmbedding() []Document {
	docs := make([]Document, 0, d.EmbeddingsNeeded())
	docs = append(docs, d.Added...)
	docs = append(docs, d.Modified...)
	return docs
}

// HasChanges reports whether anything needs reprocessing.
func (d *IncrementalDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Modified) > 0 || len(d.Removed) > 0
}
