// Package tokenize provides the tokenizer collaborator consumed by the
// BM25 index. It wraps bleve's analysis chain (unicode segmentation, CJK
// width normalization, CJK bigrams, lowercasing) and augments it with
// uppercased English token extraction so acronym queries like "MCP" match
// mixed Japanese/English memo text.
package tokenize

import (
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	tokenizerunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"

	"github.com/harukit/memodex/internal/store"
)

// englishPattern extracts latin-letter runs for the uppercased token set.
var englishPattern = regexp.MustCompile(`[A-Za-z]+`)

// BleveTokenizer implements store.Tokenizer on top of bleve's analysis
// packages. It is stateless and safe for concurrent use.
type BleveTokenizer struct {
	tokenizer analysis.Tokenizer
	filters   []analysis.TokenFilter
}

var _ store.Tokenizer = (*BleveTokenizer)(nil)

// New creates the default tokenizer chain.
func New() *BleveTokenizer {
	return &BleveTokenizer{
		tokenizer: tokenizerunicode.NewUnicodeTokenizer(),
		filters: []analysis.TokenFilter{
			cjk.NewCJKWidthFilter(),
			cjk.NewCJKBigramFilter(true),
			lowercase.NewLowerCaseFilter(),
		},
	}
}

// Tokenize returns the analysis-chain tokens followed by the uppercased
// English tokens, deduplicated over the combined list in first-seen
// order. Deterministic for a given input.
func (t *BleveTokenizer) Tokenize(text string) []string {
	stream := t.tokenizer.Tokenize([]byte(text))
	for _, filter := range t.filters {
		stream = filter.Filter(stream)
	}

	tokens := make([]string, 0, len(stream)+4)
	for _, tok := range stream {
		if term := string(tok.Term); term != "" {
			tokens = append(tokens, term)
		}
	}
	tokens = append(tokens, ExtractEnglishTokens(text)...)
	return dedupe(tokens)
}

// ExtractEnglishTokens returns the uppercased latin-letter runs in text,
// deduplicated in first-seen order. "MCPサーバーの実装" yields ["MCP"].
func ExtractEnglishTokens(text string) []string {
	matches := englishPattern.FindAllString(text, -1)
	upper := make([]string, 0, len(matches))
	for _, m := range matches {
		upper = append(upper, strings.ToUpper(m))
	}
	return dedupe(upper)
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
