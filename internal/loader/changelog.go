// Package loader reads memo corpora from disk: Markdown changelogs and
// JSONL document dumps. Both produce store.Document values with
// content-derived IDs so repeated loads of unchanged files reproduce the
// same identities.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/harukit/memodex/internal/store"
)

// entryPattern matches a changelog entry header:
//
//	* Some Title 2024-01-15 10:30:00 optional first body text
var entryPattern = regexp.MustCompile(`^\* (.+?) (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\s*(.*)$`)

// tagPattern extracts "[tag]:" markers from entry bodies.
var tagPattern = regexp.MustCompile(`\[([^\]]+)\]:`)

const changelogDateLayout = "2006-01-02 15:04:05"

// LoadChangelog parses a Markdown changelog file.
func LoadChangelog(path string) ([]store.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open changelog: %w", err)
	}
	defer f.Close()
	docs, err := ParseChangelog(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return docs, nil
}

// ParseChangelog reads changelog entries from r. Lines outside any entry
// (file headers, blank separators before the first entry) are skipped.
// Body lines between entry headers are joined with newlines and trimmed;
// tags are collected from "[tag]:" markers within the body.
func ParseChangelog(r io.Reader) ([]store.Document, error) {
	var docs []store.Document
	var title string
	var date time.Time
	var bodyLines []string
	inEntry := false

	flush := func() {
		if !inEntry {
			return
		}
		body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
		docs = append(docs, store.NewDocument(title, date, extractTags(body), body))
		bodyLines = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if m := entryPattern.FindStringSubmatch(line); m != nil {
			flush()
			parsed, err := time.ParseInLocation(changelogDateLayout, m[2], time.UTC)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid date %q: %w", lineNo, m[2], err)
			}
			title = m[1]
			date = parsed
			inEntry = true
			if rest := strings.TrimSpace(m[3]); rest != "" {
				bodyLines = append(bodyLines, rest)
			}
			continue
		}
		if inEntry {
			bodyLines = append(bodyLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read changelog: %w", err)
	}
	flush()
	return docs, nil
}

// extractTags returns the distinct "[tag]:" markers in body, first-seen
// order.
func extractTags(body string) []string {
	matches := tagPattern.FindAllStringSubmatch(body, -1)
	var tags []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		tag := m[1]
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
