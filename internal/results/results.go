// Package results writes discovered credentials to the append-only
// results file.
//
// The file is the tool's primary output: one tab-delimited line per
// discovery, only ever appended to, so repeated runs accumulate a history
// and an external tail -f can watch discoveries live. Secrets appear only
// as one-way hashes.
package results

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/leakspider/leakspider/internal/model"
)

// Writer appends credential records to the results file.
//
// Design decision: Plain os file handling instead of a storage library.
// The format is a flat append-only text file; O_APPEND gives us the
// atomic line appends we need and anything more would be indirection.
type Writer struct {
	file *os.File
}

// NewWriter opens the results file for appending, creating it with mode
// 0600 if it does not exist. Records may contain account identifiers, so
// the file is not group or world readable.
func NewWriter(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	return &Writer{file: file}, nil
}

// Append writes one credential record as a single tab-delimited line:
// timestamp, identifier, secret hash, source URL, matcher name.
func (w *Writer) Append(cred *model.Credential) error {
	line := strings.Join([]string{
		cred.FoundAt.UTC().Format(time.RFC3339),
		sanitizeField(cred.Identifier),
		sanitizeField(cred.SecretHash),
		sanitizeField(cred.SourceURL),
		sanitizeField(cred.Matcher),
	}, "\t") + "\n"

	if _, err := w.file.WriteString(line); err != nil {
		return fmt.Errorf("failed to append result: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.file.Close()
}

// sanitizeField keeps the one-record-per-line format intact even when a
// scraped value contains control characters.
func sanitizeField(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)
}
