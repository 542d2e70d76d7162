// Package output renders CLI results. Styling is applied only when
// writing to a terminal; pipes and NO_COLOR get plain text.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/harukit/memodex/internal/search"
	"github.com/harukit/memodex/internal/store"
)

// snippetLength caps the body preview in search results, in runes.
const snippetLength = 150

// Writer renders formatted output to a stream.
type Writer struct {
	out      io.Writer
	useColor bool

	titleStyle lipgloss.Style
	scoreStyle lipgloss.Style
	tagStyle   lipgloss.Style
	dimStyle   lipgloss.Style
	warnStyle  lipgloss.Style
}

// New creates a Writer, enabling color when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer) *Writer {
	useColor := false
	if f, ok := out.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if os.Getenv("NO_COLOR") != "" {
		useColor = false
	}
	return newWriter(out, useColor)
}

// NewPlain creates a Writer with styling disabled, regardless of the
// destination. Used in tests and for machine-readable output.
func NewPlain(out io.Writer) *Writer {
	return newWriter(out, false)
}

func newWriter(out io.Writer, useColor bool) *Writer {
	w := &Writer{out: out, useColor: useColor}
	if useColor {
		w.titleStyle = lipgloss.NewStyle().Bold(true)
		w.scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
		w.tagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
		w.dimStyle = lipgloss.NewStyle().Faint(true)
		w.warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	}
	return w
}

func (w *Writer) render(style lipgloss.Style, s string) string {
	if !w.useColor {
		return s
	}
	return style.Render(s)
}

// Printf writes formatted plain text.
func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}

// Success prints a completed-action line.
func (w *Writer) Success(msg string) {
	_, _ = fmt.Fprintf(w.out, "✓ %s\n", msg)
}

// Successf prints a formatted completed-action line.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func (w *Writer) Warning(msg string) {
	_, _ = fmt.Fprintf(w.out, "%s\n", w.render(w.warnStyle, "! "+msg))
}

// Warningf prints a formatted warning line.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error line.
func (w *Writer) Error(msg string) {
	_, _ = fmt.Fprintf(w.out, "✗ %s\n", msg)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// SearchResults renders ranked results with titles, scores, dates, tags,
// and a truncated body snippet. lookup resolves a doc ID to its full
// record; it may return false for IDs missing from the docstore.
func (w *Writer) SearchResults(results []search.SearchResult, lookup func(string) (store.Document, bool)) {
	if len(results) == 0 {
		w.Printf("No results.\n")
		return
	}
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.DocID
		}
		w.Printf("%2d. %s %s\n", i+1,
			w.render(w.titleStyle, title),
			w.render(w.scoreStyle, fmt.Sprintf("(%.4f)", r.Score)))

		if doc, ok := lookup(r.DocID); ok {
			meta := doc.Metadata.Date.Format("2006-01-02 15:04")
			if len(doc.Metadata.Tags) > 0 {
				meta += "  " + w.render(w.tagStyle, "["+strings.Join(doc.Metadata.Tags, "] [")+"]")
			}
			w.Printf("    %s\n", w.render(w.dimStyle, meta))
			if snippet := makeSnippet(doc.Text); snippet != "" {
				w.Printf("    %s\n", snippet)
			}
		}
	}
}

// Tags renders tag names with document counts.
func (w *Writer) Tags(tags []string, counts map[string]int) {
	if len(tags) == 0 {
		w.Printf("No tags.\n")
		return
	}
	for _, tag := range tags {
		w.Printf("%s %s\n",
			w.render(w.tagStyle, tag),
			w.render(w.dimStyle, fmt.Sprintf("(%d)", counts[tag])))
	}
}

// RecentDocs renders documents date-first.
func (w *Writer) RecentDocs(docs []store.Document) {
	if len(docs) == 0 {
		w.Printf("No documents.\n")
		return
	}
	for _, doc := range docs {
		w.Printf("%s  %s\n",
			w.render(w.dimStyle, doc.Metadata.Date.Format("2006-01-02 15:04")),
			w.render(w.titleStyle, doc.Metadata.Title))
	}
}

// makeSnippet flattens newlines and truncates to snippetLength runes.
func makeSnippet(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= snippetLength {
		return flat
	}
	return string(runes[:snippetLength]) + "..."
}
