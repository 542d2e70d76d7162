package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ComputeContentHash derives a document's identity fingerprint from its
// title and body text: the first 16 hex characters of SHA-256 over
// title || 0x00 || text. The NUL separator keeps ("ab","c") and ("a","bc")
// distinct. Metadata (tags, date) never feeds the hash, so metadata edits
// do not change identity and do not trigger re-embedding.
func ComputeContentHash(title, text string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// NewDocument creates a document with a content-derived ID, so rebuilding
// an unchanged corpus reproduces the same IDs.
func NewDocument(title string, date time.Time, tags []string, text string) Document {
	return Document{
		ID: ComputeContentHash(title, text),
		Metadata: DocumentMetadata{
			Title: title,
			Date:  date,
			Tags:  tags,
		},
		Text: text,
	}
}

// NewDocumentWithRandomID creates a document with a random 16-hex-char ID.
// Legacy mode: such IDs are stable only within a single build.
func NewDocumentWithRandomID(title string, date time.Time, tags []string, text string) Document {
	doc := NewDocument(title, date, tags, text)
	doc.ID = randomID()
	return doc
}

func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ContentHash returns the document's current content fingerprint.
// For content-ID documents this equals the ID; the diff engine relies on
// recomputing it rather than trusting the ID, so legacy random-ID
// documents are diffed correctly too.
func (d Document) ContentHash() string {
	return ComputeContentHash(d.Metadata.Title, d.Text)
}

// HasTag reports whether the document carries the given tag.
func (d Document) HasTag(tag string) bool {
	for _, t := range d.Metadata.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Category returns the part of the title before " / ", or the whole title
// when no separator is present.
func (d Document) Category() string {
	if i := strings.Index(d.Metadata.Title, " / "); i >= 0 {
		return d.Metadata.Title[:i]
	}
	return d.Metadata.Title
}

// Subcategory returns the part of the title after the first " / ", or ""
// when no separator is present.
func (d Document) Subcategory() string {
	if i := strings.Index(d.Metadata.Title, " / "); i >= 0 {
		return d.Metadata.Title[i+len(" / "):]
	}
	return ""
}
