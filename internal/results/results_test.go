package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leakspider/leakspider/internal/model"
)

func testCredential(identifier string) *model.Credential {
	return &model.Credential{
		Identifier: identifier,
		SecretHash: "0123456789abcdef",
		SourceURL:  "http://example.onion/dump",
		Service:    "example.onion",
		Matcher:    "email-credential",
		FoundAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestWriter tests append-only result persistence.
func TestWriter(t *testing.T) {
	t.Parallel()

	t.Run("appends tab-delimited records", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.txt")
		writer, err := NewWriter(path)
		if err != nil {
			t.Fatalf("failed to create writer: %v", err)
		}

		if err := writer.Append(testCredential("a@example.com")); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		if err := writer.Append(testCredential("b@example.com")); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("failed to close: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read results file: %v", err)
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}

		fields := strings.Split(lines[0], "\t")
		if len(fields) != 5 {
			t.Fatalf("expected 5 fields, got %d: %q", len(fields), lines[0])
		}
		if fields[0] != "2026-08-01T12:00:00Z" {
			t.Errorf("unexpected timestamp: %q", fields[0])
		}
		if fields[1] != "a@example.com" {
			t.Errorf("unexpected identifier: %q", fields[1])
		}
		if fields[2] != "0123456789abcdef" {
			t.Errorf("unexpected hash: %q", fields[2])
		}
		if fields[3] != "http://example.onion/dump" {
			t.Errorf("unexpected source: %q", fields[3])
		}
	})

	t.Run("reopening appends instead of truncating", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.txt")
		for range 2 {
			writer, err := NewWriter(path)
			if err != nil {
				t.Fatalf("failed to create writer: %v", err)
			}
			if err := writer.Append(testCredential("user@example.com")); err != nil {
				t.Fatalf("failed to append: %v", err)
			}
			if err := writer.Close(); err != nil {
				t.Fatalf("failed to close: %v", err)
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read results file: %v", err)
		}
		if got := strings.Count(string(data), "\n"); got != 2 {
			t.Errorf("expected 2 lines across runs, got %d", got)
		}
	})

	t.Run("creates file with restrictive permissions", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.txt")
		writer, err := NewWriter(path)
		if err != nil {
			t.Fatalf("failed to create writer: %v", err)
		}
		t.Cleanup(func() { _ = writer.Close() })

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected mode 0600, got %o", perm)
		}
	})

	t.Run("sanitizes control characters in fields", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.txt")
		writer, err := NewWriter(path)
		if err != nil {
			t.Fatalf("failed to create writer: %v", err)
		}

		cred := testCredential("user@example.com")
		cred.SourceURL = "http://example.onion/a\tb\nc"
		if err := writer.Append(cred); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("failed to close: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read results file: %v", err)
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(lines))
		}
		if fields := strings.Split(lines[0], "\t"); len(fields) != 5 {
			t.Errorf("expected 5 fields after sanitizing, got %d", len(fields))
		}
	})
}
