package report

import (
	"io"

	"github.com/leakspider/leakspider/internal/model"
)

// Writer renders a finished crawl report to some destination. The three
// implementations in this package cover the terminal summary, machine-readable
// JSON, and Markdown for pasting into incident notes.
type Writer interface {
	// Write renders the report and returns the number of bytes written.
	Write(report *model.CrawlReport) (int, error)
}

// MultiWriter fans one report out to several Writers, typically the terminal
// plus a file. It is not io.MultiWriter because the unit here is a report,
// not a byte stream.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that renders through every given Writer.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report through each Writer in order. The byte count is
// the sum over all destinations; the first failure stops the fan-out.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the destination shared by the concrete writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
