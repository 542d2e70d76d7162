package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harukit/memodex/internal/store"
)

// LoadJSONL reads one JSON-encoded document per line. Blank lines and
// lines starting with '#' are skipped. Parse errors carry the line number.
func LoadJSONL(path string) ([]store.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jsonl: %w", err)
	}
	defer f.Close()
	docs, err := ParseJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return docs, nil
}

// ParseJSONL reads documents from r.
func ParseJSONL(r io.Reader) ([]store.Document, error) {
	var docs []store.Document
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var doc store.Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	return docs, nil
}

// LoadFile dispatches on the file extension: .jsonl is parsed as JSONL,
// everything else as a Markdown changelog.
func LoadFile(path string) ([]store.Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return LoadJSONL(path)
	}
	return LoadChangelog(path)
}

// LoadFiles loads every input and concatenates the documents in input
// order.
func LoadFiles(paths []string) ([]store.Document, error) {
	var docs []store.Document
	for _, path := range paths {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}
