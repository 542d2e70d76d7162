package store

import (
	"os"
	"sort"
	"sync"
)

// Docstore is the authoritative map of document ID to full document
// record. It is read-mostly after a build; the mutex covers the
// incremental-rebuild mutations and lets arbitrarily many searches read
// concurrently.
type Docstore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// docstoreFile is the persisted snapshot shape.
type docstoreFile struct {
	Documents map[string]Document `json:"documents"`
}

// NewDocstore creates an empty document store.
func NewDocstore() *Docstore {
	return &Docstore{docs: make(map[string]Document)}
}

// Add inserts or replaces a document.
func (s *Docstore) Add(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
}

// AddBatch inserts or replaces every document.
func (s *Docstore) AddBatch(docs []Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		s.docs[doc.ID] = doc
	}
}

// Get returns the document with the given ID.
func (s *Docstore) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Remove deletes a document; missing IDs are a no-op.
func (s *Docstore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

// RemoveBatch deletes every listed ID.
func (s *Docstore) RemoveBatch(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.docs, id)
	}
}

// Len returns the number of stored documents.
func (s *Docstore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// All returns every document in unspecified order.
func (s *Docstore) All() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	return docs
}

// GetByTag returns every document carrying the tag, in unspecified order.
func (s *Docstore) GetByTag(tag string) []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []Document
	for _, doc := range s.docs {
		if doc.HasTag(tag) {
			docs = append(docs, doc)
		}
	}
	return docs
}

// AllTags returns the distinct tags across all documents, sorted.
func (s *Docstore) AllTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, doc := range s.docs {
		for _, tag := range doc.Metadata.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TagCounts returns the number of documents per tag.
func (s *Docstore) TagCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, doc := range s.docs {
		for _, tag := range doc.Metadata.Tags {
			counts[tag]++
		}
	}
	return counts
}

// Recent returns up to limit documents sorted by date descending. Equal
// dates break by ascending ID for deterministic output.
func (s *Docstore) Recent(limit int) []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(a, b int) bool {
		if !docs[a].Metadata.Date.Equal(docs[b].Metadata.Date) {
			return docs[a].Metadata.Date.After(docs[b].Metadata.Date)
		}
		return docs[a].ID < docs[b].ID
	})
	if limit >= 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}

// Save persists the store atomically to path.
func (s *Docstore) Save(path string) error {
	s.mu.RLock()
	snapshot := docstoreFile{Documents: make(map[string]Document, len(s.docs))}
	for id, doc := range s.docs {
		snapshot.Documents[id] = doc
	}
	s.mu.RUnlock()
	return saveJSON(path, snapshot)
}

// LoadDocstore reads a store from path.
func LoadDocstore(path string) (*Docstore, error) {
	var file docstoreFile
	if err := loadJSON(path, &file); err != nil {
		return nil, err
	}
	s := NewDocstore()
	if file.Documents != nil {
		s.docs = file.Documents
	}
	return s, nil
}

// LoadDocstoreOrEmpty maps a missing file to an empty store.
func LoadDocstoreOrEmpty(path string) (*Docstore, error) {
	s, err := LoadDocstore(path)
	if os.IsNotExist(err) {
		return NewDocstore(), nil
	}
	return s, err
}
