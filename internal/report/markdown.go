package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/leakspider/leakspider/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent,
// type-safe markdown generation with table support.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Leakspider Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + report.Seed + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().String()},
			{"Pages crawled", strconv.Itoa(report.PagesCrawled)},
			{"Pages failed", strconv.Itoa(report.PagesFailed)},
			{"Credentials found", strconv.Itoa(len(report.Credentials))},
			{"Alerts sent", strconv.Itoa(report.AlertsSent)},
			{"Alerts failed", strconv.Itoa(report.AlertsFailed)},
		},
	})
	md.PlainText("")

	w.writeCredentials(md, report)
	w.writeErrors(md, report)

	md.HorizontalRule()
	md.PlainText("Secrets are stored as one-way hashes; no plaintext is retained.")

	return len(md.String()), md.Build()
}

// writeCredentials renders the discovered credentials table.
func (w *MarkdownWriter) writeCredentials(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Discovered Credentials")
	md.PlainText("")

	if len(report.Credentials) == 0 {
		md.PlainText("No leaked credentials were found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Credentials))
	for _, cred := range report.Credentials {
		rows = append(rows, []string{
			"`" + cred.Identifier + "`",
			"`" + cred.SecretHash + "`",
			cred.SourceURL,
			cred.Matcher,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Identifier", "Secret Hash", "Source", "Matcher"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrors renders the non-fatal error list, if any.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Errors) == 0 {
		return
	}

	md.H2("Non-Fatal Errors")
	md.PlainText("")
	md.BulletList(report.Errors...)
	md.PlainText("")
}
