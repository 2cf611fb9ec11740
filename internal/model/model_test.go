package model

import (
	"testing"
	"time"
)

// TestPageIsText tests content type classification.
func TestPageIsText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		want        bool
	}{
		{"html", "text/html", true},
		{"html with charset", "text/html; charset=utf-8", true},
		{"plain text", "text/plain", true},
		{"xhtml", "application/xhtml+xml", true},
		{"json", "application/json", true},
		{"png image", "image/png", false},
		{"pdf", "application/pdf", false},
		{"octet stream", "application/octet-stream", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &Page{ContentType: tt.contentType}
			if got := p.IsText(); got != tt.want {
				t.Errorf("IsText() with %q = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

// TestPageComputeHash tests raw body hashing.
func TestPageComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("same content produces same hash", func(t *testing.T) {
		t.Parallel()

		p1 := &Page{}
		p2 := &Page{}
		p1.ComputeHash([]byte("hello"))
		p2.ComputeHash([]byte("hello"))

		if p1.Hash == "" {
			t.Fatal("expected non-empty hash")
		}
		if p1.Hash != p2.Hash {
			t.Errorf("expected identical hashes, got %q and %q", p1.Hash, p2.Hash)
		}
	})

	t.Run("empty content produces empty hash", func(t *testing.T) {
		t.Parallel()

		p := &Page{}
		p.ComputeHash(nil)
		if p.Hash != "" {
			t.Errorf("expected empty hash, got %q", p.Hash)
		}
	})
}

// TestPageTruncateSnapshot tests the snapshot size limit.
func TestPageTruncateSnapshot(t *testing.T) {
	t.Parallel()

	p := &Page{Snapshot: string(make([]byte, MaxSnapshotSize+100))}
	p.TruncateSnapshot()
	if len(p.Snapshot) != MaxSnapshotSize {
		t.Errorf("expected snapshot truncated to %d bytes, got %d", MaxSnapshotSize, len(p.Snapshot))
	}
}

// TestCredentialKey tests the deduplication key.
func TestCredentialKey(t *testing.T) {
	t.Parallel()

	a := Credential{Identifier: "user@example.com", SecretHash: "abc", SourceURL: "http://x.onion/"}
	b := Credential{Identifier: "user@example.com", SecretHash: "abc", SourceURL: "http://x.onion/"}
	c := Credential{Identifier: "user@example.com", SecretHash: "abc", SourceURL: "http://x.onion/other"}

	if a.Key() != b.Key() {
		t.Error("identical credentials should share a key")
	}
	if a.Key() == c.Key() {
		t.Error("credentials from different pages should have distinct keys")
	}
}

// TestCrawlReport tests report accumulation helpers.
func TestCrawlReport(t *testing.T) {
	t.Parallel()

	r := NewCrawlReport("exampleonion.onion")
	if r.Seed != "exampleonion.onion" {
		t.Errorf("unexpected seed: %q", r.Seed)
	}
	if r.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}

	r.AddError("fetch failed")
	r.AddError("alert failed")
	if len(r.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(r.Errors))
	}

	r.FinishedAt = r.StartedAt.Add(5 * time.Second)
	if r.Duration() != 5*time.Second {
		t.Errorf("expected 5s duration, got %s", r.Duration())
	}
}
