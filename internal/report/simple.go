package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leakspider/leakspider/internal/model"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to
// files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose adds the per-page fetch listing to the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-page listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report as formatted text.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString("Leakspider Crawl Report\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&sb, "Seed:          %s\n", report.Seed)
	fmt.Fprintf(&sb, "Started:       %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Duration:      %s\n", report.Duration().Round(time.Second))
	fmt.Fprintf(&sb, "Pages crawled: %d\n", report.PagesCrawled)
	fmt.Fprintf(&sb, "Pages failed:  %d\n", report.PagesFailed)
	fmt.Fprintf(&sb, "Credentials:   %d\n", len(report.Credentials))
	fmt.Fprintf(&sb, "Alerts sent:   %d (failed: %d)\n\n", report.AlertsSent, report.AlertsFailed)

	if len(report.Credentials) > 0 {
		sb.WriteString("Discovered Credentials\n")
		sb.WriteString(strings.Repeat("-", 60) + "\n")
		titler := cases.Title(language.English)
		for _, cred := range report.Credentials {
			fmt.Fprintf(&sb, "  %s\n", cred.Identifier)
			fmt.Fprintf(&sb, "    Hash:    %s\n", cred.SecretHash)
			fmt.Fprintf(&sb, "    Source:  %s\n", cred.SourceURL)
			fmt.Fprintf(&sb, "    Matcher: %s\n", titler.String(strings.ReplaceAll(cred.Matcher, "-", " ")))
		}
		sb.WriteString("\n")
	}

	if w.verbose && len(report.Pages) > 0 {
		sb.WriteString("Fetched Pages\n")
		sb.WriteString(strings.Repeat("-", 60) + "\n")
		for _, page := range report.Pages {
			fmt.Fprintf(&sb, "  [%d] %s\n", page.StatusCode, page.URL)
		}
		sb.WriteString("\n")
	}

	if len(report.Errors) > 0 {
		sb.WriteString("Non-Fatal Errors\n")
		sb.WriteString(strings.Repeat("-", 60) + "\n")
		for _, msg := range report.Errors {
			fmt.Fprintf(&sb, "  - %s\n", msg)
		}
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}
