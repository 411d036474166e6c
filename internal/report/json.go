package report

import (
	"encoding/json"
	"io"

	"github.com/mkosuda/linkmap/internal/model"
)

// JSONWriter outputs the crawl's two JSON artifacts: a pretty-printed
// array of all visited URLs and a pretty-printed object mapping each
// visited page to its discovered links.
//
// Design decision: We use standard encoding/json rather than a
// third-party JSON library because it's part of the standard library,
// it's sufficient for our needs, and it provides consistent behavior
// across Go versions.
type JSONWriter struct {
	baseWriter

	// indentString is the indentation string. Empty means compact output.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets the indentation string for pretty-printed output.
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
// This is a convenience wrapper for WithIndent("  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs both artifacts in sequence: the all-links array followed
// by the links-by-page object.
func (w *JSONWriter) Write(report *model.CrawlReport) (int, error) {
	n, err := w.WriteAllLinks(report)
	if err != nil {
		return n, err
	}

	m, err := w.WriteLinksByPage(report)
	return n + m, err
}

// WriteAllLinks outputs the JSON array of all visited canonical URLs.
func (w *JSONWriter) WriteAllLinks(report *model.CrawlReport) (int, error) {
	return w.writeJSON(report.AllLinks)
}

// WriteLinksByPage outputs the JSON object mapping each visited page URL
// to its array of discovered links.
func (w *JSONWriter) WriteLinksByPage(report *model.CrawlReport) (int, error) {
	return w.writeJSON(report.LinksByPage)
}

// writeJSON marshals the given value and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indentString != "" {
		data, err = json.MarshalIndent(v, "", w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output.
	data = append(data, '\n')

	return w.output.Write(data)
}
