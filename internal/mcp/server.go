// Package mcp exposes the searcher to AI clients over the Model Context
// Protocol. Three tools are served: query_memos, list_tags, and
// get_recent_memos.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harukit/memodex/internal/search"
	"github.com/harukit/memodex/pkg/version"
)

// SnippetLength is the maximum snippet size, in runes, returned by tools.
const SnippetLength = 150

// Server bridges MCP clients with the search engine.
type Server struct {
	mcp      *mcp.Server
	searcher *search.Searcher
	logger   *slog.Logger
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates an MCP server over the given searcher.
func NewServer(searcher *search.Searcher, opts ...ServerOption) (*Server, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	s := &Server{
		searcher: searcher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "memodex",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// QueryMemosInput is the input schema for the query_memos tool.
type QueryMemosInput struct {
	Query     string `json:"query" jsonschema:"the search query to execute"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"maximum number of results, default 10"`
	TagFilter string `json:"tag_filter,omitempty" jsonschema:"only return memos carrying this tag"`
	Mode      string `json:"mode,omitempty" jsonschema:"search mode: bm25, semantic, or hybrid (default bm25)"`
}

// MemoResult is one ranked memo in a query_memos response.
type MemoResult struct {
	DocID   string   `json:"doc_id" jsonschema:"content-derived document identifier"`
	Title   string   `json:"title" jsonschema:"memo title"`
	Score   float64  `json:"score" jsonschema:"relevance score (scale depends on mode)"`
	Date    string   `json:"date,omitempty" jsonschema:"publication timestamp, RFC3339"`
	Tags    []string `json:"tags,omitempty" jsonschema:"memo tags"`
	Snippet string   `json:"snippet,omitempty" jsonschema:"leading body text, truncated"`
}

// QueryMemosOutput is the output schema for the query_memos tool.
type QueryMemosOutput struct {
	Results []MemoResult `json:"results" jsonschema:"ranked memo results"`
	Warning string       `json:"warning,omitempty" jsonschema:"set when a degraded mode was served"`
}

// ListTagsInput is the (empty) input schema for the list_tags tool.
type ListTagsInput struct{}

// TagCount is one tag with its document count.
type TagCount struct {
	Name  string `json:"name" jsonschema:"tag name"`
	Count int    `json:"count" jsonschema:"number of memos carrying the tag"`
}

// ListTagsOutput is the output schema for the list_tags tool.
type ListTagsOutput struct {
	Tags []TagCount `json:"tags" jsonschema:"all tags with document counts, sorted by name"`
}

// RecentMemosInput is the input schema for the get_recent_memos tool.
type RecentMemosInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of memos, default 10"`
}

// RecentMemosOutput is the output schema for the get_recent_memos tool.
type RecentMemosOutput struct {
	Memos []MemoResult `json:"memos" jsonschema:"memos sorted by date descending"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_memos",
		Description: "Search the memo corpus. Modes: bm25 (keyword), semantic (embedding similarity), hybrid (both, fused). Returns ranked memos with titles, tags, and snippets.",
	}, s.handleQueryMemos)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_tags",
		Description: "List every tag in the memo corpus with its document count.",
	}, s.handleListTags)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_recent_memos",
		Description: "Return the most recent memos by publication date.",
	}, s.handleRecentMemos)

	s.logger.Debug("mcp_tools_registered", slog.Int("count", 3))
}

func (s *Server) handleQueryMemos(ctx context.Context, _ *mcp.CallToolRequest, input QueryMemosInput) (
	*mcp.CallToolResult,
	QueryMemosOutput,
	error,
) {
	start := time.Now()
	if input.Query == "" {
		return nil, QueryMemosOutput{}, errors.New("query parameter is required")
	}

	modeName := input.Mode
	if modeName == "" {
		modeName = "bm25"
	}
	mode, err := search.ParseMode(modeName)
	if err != nil {
		return nil, QueryMemosOutput{}, err
	}

	opts := search.Options{Mode: mode, TopK: search.DefaultTopK, Tag: input.TagFilter}
	if input.TopK > 0 {
		opts.TopK = input.TopK
	}

	results, err := s.searcher.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, QueryMemosOutput{}, err
	}

	output := QueryMemosOutput{Results: make([]MemoResult, 0, len(results))}
	for _, r := range results {
		output.Results = append(output.Results, s.toMemoResult(r))
	}
	if mode != search.ModeBM25 && !s.searcher.HasVectorIndex() {
		output.Warning = fmt.Sprintf("no vector index available; %s results are keyword-only", modeName)
	}

	s.logger.Info("query_memos",
		slog.String("query", input.Query),
		slog.String("mode", modeName),
		slog.Int("result_count", len(output.Results)),
		slog.Duration("duration", time.Since(start)))
	return nil, output, nil
}

func (s *Server) handleListTags(_ context.Context, _ *mcp.CallToolRequest, _ ListTagsInput) (
	*mcp.CallToolResult,
	ListTagsOutput,
	error,
) {
	counts := s.searcher.TagCounts()
	output := ListTagsOutput{Tags: make([]TagCount, 0, len(counts))}
	for name, count := range counts {
		output.Tags = append(output.Tags, TagCount{Name: name, Count: count})
	}
	sort.Slice(output.Tags, func(a, b int) bool {
		return output.Tags[a].Name < output.Tags[b].Name
	})
	return nil, output, nil
}

func (s *Server) handleRecentMemos(_ context.Context, _ *mcp.CallToolRequest, input RecentMemosInput) (
	*mcp.CallToolResult,
	RecentMemosOutput,
	error,
) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	docs := s.searcher.Recent(limit)
	output := RecentMemosOutput{Memos: make([]MemoResult, 0, len(docs))}
	for _, doc := range docs {
		output.Memos = append(output.Memos, MemoResult{
			DocID:   doc.ID,
			Title:   doc.Metadata.Title,
			Date:    doc.Metadata.Date.Format(time.RFC3339),
			Tags:    doc.Metadata.Tags,
			Snippet: Snippet(doc.Text),
		})
	}
	return nil, output, nil
}

// toMemoResult enriches a search result with docstore metadata.
func (s *Server) toMemoResult(r search.SearchResult) MemoResult {
	result := MemoResult{
		DocID: r.DocID,
		Title: r.Title,
		Score: r.Score,
	}
	if doc, ok := s.searcher.Document(r.DocID); ok {
		result.Date = doc.Metadata.Date.Format(time.RFC3339)
		result.Tags = doc.Metadata.Tags
		result.Snippet = Snippet(doc.Text)
	}
	return result
}

// Snippet truncates text to SnippetLength runes with a trailing ellipsis.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLength {
		return text
	}
	return string(runes[:SnippetLength]) + "..."
}

// Serve runs the server over stdio until the context is cancelled.
// Nothing may write to stdout while serving: the transport owns it for
// JSON-RPC framing.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp_server_starting", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("mcp_server_stopped_gracefully")
	return nil
}
