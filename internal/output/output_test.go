package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harukit/memodex/internal/search"
	"github.com/harukit/memodex/internal/store"
)

func TestSearchResultsRendering(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)

	doc := store.Document{
		ID: "d1",
		Metadata: store.DocumentMetadata{
			Title: "server notes",
			Date:  time.Date(2024, 9, 1, 10, 30, 0, 0, time.UTC),
			Tags:  []string{"dev", "infra"},
		},
		Text: "line one\nline two",
	}
	results := []search.SearchResult{
		{DocID: "d1", Score: 1.2345, Title: "server notes"},
		{DocID: "ghost", Score: 0.5},
	}

	w.SearchResults(results, func(id string) (store.Document, bool) {
		if id == "d1" {
			return doc, true
		}
		return store.Document{}, false
	})

	out := buf.String()
	assert.Contains(t, out, " 1. server notes (1.2345)")
	assert.Contains(t, out, "2024-09-01 10:30")
	assert.Contains(t, out, "[dev] [infra]")
	assert.Contains(t, out, "line one line two", "snippet flattens newlines")
	// A result missing from the docstore falls back to its ID.
	assert.Contains(t, out, " 2. ghost (0.5000)")
}

func TestSearchResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPlain(&buf).SearchResults(nil, nil)
	assert.Equal(t, "No results.\n", buf.String())
}

func TestTagsRendering(t *testing.T) {
	var buf bytes.Buffer
	NewPlain(&buf).Tags([]string{"dev", "home"}, map[string]int{"dev": 3, "home": 1})
	assert.Equal(t, "dev (3)\nhome (1)\n", buf.String())

	buf.Reset()
	NewPlain(&buf).Tags(nil, nil)
	assert.Equal(t, "No tags.\n", buf.String())
}

func TestRecentDocsRendering(t *testing.T) {
	var buf bytes.Buffer
	NewPlain(&buf).RecentDocs([]store.Document{
		{Metadata: store.DocumentMetadata{
			Title: "latest entry",
			Date:  time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC),
		}},
	})
	assert.Equal(t, "2024-09-02 08:00  latest entry\n", buf.String())
}

func TestMakeSnippetTruncates(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := makeSnippet(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, []rune(got), snippetLength+3)
}
