package report

import (
	"encoding/json"
	"io"

	"github.com/leakspider/leakspider/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because it is sufficient for a write-only report and keeps
// behavior consistent across Go versions.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool

	// version is stamped into the output when non-empty.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables indented JSON output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// WithVersion stamps the tool version into the report wrapper.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
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

// jsonReport wraps the crawl report with output metadata.
//
// Design decision: We wrap rather than modify CrawlReport so that
// output-specific fields do not pollute the core data structure.
type jsonReport struct {
	// Version is the leakspider version that generated this report.
	Version string `json:"version,omitempty"`

	// Report is the full crawl report.
	Report *model.CrawlReport `json:"report"`
}

// Write outputs the report as JSON.
func (w *JSONWriter) Write(report *model.CrawlReport) (int, error) {
	wrapped := jsonReport{Version: w.version, Report: report}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(wrapped, "", "  ")
	} else {
		data, err = json.Marshal(wrapped)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output.
	data = append(data, '\n')
	return w.output.Write(data)
}
