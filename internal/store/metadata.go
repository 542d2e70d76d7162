package store

import (
	"os"
	"strconv"
	"time"
)

// CurrentSchemaVersion is written by every build. Metadata with version
// >= 2.0 carries the doc_hashes ledger required for incremental builds.
const CurrentSchemaVersion = "2.0"

// IndexMetadata records what a build produced: counts, the embedding model
// (nil when embeddings were skipped), and the document-ID-to-content-hash
// ledger the diff engine trusts on the next incremental run.
type IndexMetadata struct {
	DocCount       int               `json:"doc_count"`
	CreatedAt      string            `json:"created_at"`
	EmbeddingModel *string           `json:"embedding_model"`
	SchemaVersion  string            `json:"schema_version"`
	DocHashes      map[string]string `json:"doc_hashes"`
}

// NewIndexMetadata creates metadata for a fresh build at the current
// schema version, stamped with the current UTC time.
func NewIndexMetadata(docCount int, embeddingModel *string) *IndexMetadata {
	return &IndexMetadata{
		DocCount:       docCount,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		EmbeddingModel: embeddingModel,
		SchemaVersion:  CurrentSchemaVersion,
		DocHashes:      make(map[string]string),
	}
}

// NeedsFullRebuild reports whether the hash ledger cannot be trusted:
// the schema version is empty, unparsable, or predates 2.0. Orchestrators
// must check this before diffing, regardless of any incremental request.
func (m *IndexMetadata) NeedsFullRebuild() bool {
	if m.SchemaVersion == "" {
		return true
	}
	v, err := strconv.ParseFloat(m.SchemaVersion, 64)
	if err != nil {
		return true
	}
	return v < 2.0
}

// UpdateHash records (or replaces) a document's content hash.
func (m *IndexMetadata) UpdateHash(id, hash string) {
	if m.DocHashes == nil {
		m.DocHashes = make(map[string]string)
	}
	m.DocHashes[id] = hash
}

// RemoveHash drops a document from the ledger.
func (m *IndexMetadata) RemoveHash(id string) {
	delete(m.DocHashes, id)
}

// Hash returns the recorded content hash for a document.
func (m *IndexMetadata) Hash(id string) (string, bool) {
	hash, ok := m.DocHashes[id]
	return hash, ok
}

// Save persists the metadata atomically to path.
func (m *IndexMetadata) Save(path string) error {
	return saveJSON(path, m)
}

// LoadIndexMetadata reads metadata from path. Missing files surface the
// os.ReadFile error; callers decide whether that forces a full rebuild.
func LoadIndexMetadata(path string) (*IndexMetadata, error) {
	var m IndexMetadata
	if err := loadJSON(path, &m); err != nil {
		return nil, err
	}
	if m.DocHashes == nil {
		m.DocHashes = make(map[string]string)
	}
	return &m, nil
}

// MetadataExists reports whether a metadata artifact is present.
func MetadataExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
