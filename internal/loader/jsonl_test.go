package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONL(t *testing.T) {
	input := `# comment line
{"id":"d1","metadata":{"title":"one","date":"2024-03-01T00:00:00Z","tags":["a"]},"text":"first"}

{"id":"d2","metadata":{"title":"two","date":"2024-03-02T00:00:00Z"},"text":"second"}
`
	docs, err := ParseJSONL(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "d1", docs[0].ID)
	assert.Equal(t, "one", docs[0].Metadata.Title)
	assert.Equal(t, []string{"a"}, docs[0].Metadata.Tags)
	assert.Equal(t, "second", docs[1].Text)
}

func TestParseJSONLBadLine(t *testing.T) {
	input := `{"id":"ok","metadata":{"title":"t","date":"2024-03-01T00:00:00Z"},"text":"x"}
{not json}
`
	_, err := ParseJSONL(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadFileDispatch(t *testing.T) {
	dir := t.TempDir()

	jsonlPath := filepath.Join(dir, "docs.jsonl")
	require.NoError(t, os.WriteFile(jsonlPath,
		[]byte(`{"id":"j1","metadata":{"title":"j","date":"2024-03-01T00:00:00Z"},"text":"jsonl doc"}`+"\n"), 0o644))

	mdPath := filepath.Join(dir, "changelog.md")
	require.NoError(t, os.WriteFile(mdPath,
		[]byte("* Entry 2024-03-02 10:00:00\nbody text\n"), 0o644))

	fromJSONL, err := LoadFile(jsonlPath)
	require.NoError(t, err)
	require.Len(t, fromJSONL, 1)
	assert.Equal(t, "j1", fromJSONL[0].ID)

	fromMD, err := LoadFile(mdPath)
	require.NoError(t, err)
	require.Len(t, fromMD, 1)
	assert.Equal(t, "Entry", fromMD[0].Metadata.Title)

	all, err := LoadFiles([]string{jsonlPath, mdPath})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLoadFilesMissingInput(t *testing.T) {
	_, err := LoadFiles([]string{filepath.Join(t.TempDir(), "absent.md")})
	assert.Error(t, err)
}
