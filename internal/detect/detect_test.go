package detect

import (
	"strings"
	"testing"

	"github.com/leakspider/leakspider/internal/model"
)

// TestEmailCredentialMatcher tests the email:password matcher.
func TestEmailCredentialMatcher(t *testing.T) {
	t.Parallel()

	matcher := NewEmailCredentialMatcher()

	if matcher.Name() != "email-credential" {
		t.Errorf("unexpected name: %q", matcher.Name())
	}

	t.Run("finds a single pair", func(t *testing.T) {
		t.Parallel()

		candidates := matcher.Match("dumped today: user@example.com:Sup3rSecret! enjoy")
		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		if candidates[0].Identifier != "user@example.com" {
			t.Errorf("unexpected identifier: %q", candidates[0].Identifier)
		}
		if candidates[0].Secret != "Sup3rSecret!" {
			t.Errorf("unexpected secret: %q", candidates[0].Secret)
		}
	})

	t.Run("finds multiple pairs", func(t *testing.T) {
		t.Parallel()

		text := "a@example.com:one\nb@example.com:two\nc@example.com:three"
		candidates := matcher.Match(text)
		if len(candidates) != 3 {
			t.Fatalf("expected 3 candidates, got %d", len(candidates))
		}
	})

	t.Run("lowercases identifiers", func(t *testing.T) {
		t.Parallel()

		candidates := matcher.Match("Admin@Example.COM:hunter2")
		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		if candidates[0].Identifier != "admin@example.com" {
			t.Errorf("expected lowercased identifier, got %q", candidates[0].Identifier)
		}
	})

	t.Run("no match yields nothing", func(t *testing.T) {
		t.Parallel()

		tests := []string{
			"",
			"nothing to see here",
			"plain@example.com without a secret",
			"timestamp 12:30:45 in a log line",
		}
		for _, text := range tests {
			if got := matcher.Match(text); len(got) != 0 {
				t.Errorf("Match(%q) = %v, want none", text, got)
			}
		}
	})
}

// TestHashSecret tests the one-way secret hashing.
func TestHashSecret(t *testing.T) {
	t.Parallel()

	const secret = "Sup3rSecret!"
	hash := HashSecret(secret)

	if hash == secret {
		t.Error("hash must not equal the plaintext")
	}
	if strings.Contains(hash, secret) {
		t.Error("hash must not contain the plaintext")
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(hash))
	}
	if hash != HashSecret(secret) {
		t.Error("hashing must be deterministic")
	}
	if hash == HashSecret("other") {
		t.Error("different secrets must hash differently")
	}
}

// TestScannerScan tests matcher orchestration over a page.
func TestScannerScan(t *testing.T) {
	t.Parallel()

	t.Run("produces hashed records", func(t *testing.T) {
		t.Parallel()

		scanner := NewScanner()
		page := &model.Page{
			URL:      "http://example.onion/dump",
			Snapshot: "user@example.com:Sup3rSecret!",
		}

		creds := scanner.Scan(page)
		if len(creds) != 1 {
			t.Fatalf("expected 1 credential, got %d", len(creds))
		}
		cred := creds[0]
		if cred.Identifier != "user@example.com" {
			t.Errorf("unexpected identifier: %q", cred.Identifier)
		}
		if cred.SecretHash != HashSecret("Sup3rSecret!") {
			t.Error("unexpected secret hash")
		}
		if cred.SecretHash == "Sup3rSecret!" {
			t.Error("plaintext secret leaked into the record")
		}
		if cred.SourceURL != page.URL {
			t.Errorf("unexpected source URL: %q", cred.SourceURL)
		}
		if cred.Service != "example.onion" {
			t.Errorf("unexpected service: %q", cred.Service)
		}
		if cred.Matcher != "email-credential" {
			t.Errorf("unexpected matcher name: %q", cred.Matcher)
		}
		if cred.FoundAt.IsZero() {
			t.Error("expected FoundAt to be set")
		}
	})

	t.Run("dedupes repeats within a page", func(t *testing.T) {
		t.Parallel()

		scanner := NewScanner()
		page := &model.Page{
			URL:      "http://example.onion/dump",
			Snapshot: "user@example.com:pw user@example.com:pw",
		}
		if creds := scanner.Scan(page); len(creds) != 1 {
			t.Errorf("expected 1 credential after dedupe, got %d", len(creds))
		}
	})

	t.Run("empty snapshot yields nothing", func(t *testing.T) {
		t.Parallel()

		scanner := NewScanner()
		if creds := scanner.Scan(&model.Page{URL: "http://example.onion/"}); creds != nil {
			t.Errorf("expected nil, got %v", creds)
		}
	})

	t.Run("custom matcher is used", func(t *testing.T) {
		t.Parallel()

		scanner := NewScanner(staticMatcher{})
		page := &model.Page{URL: "http://example.onion/", Snapshot: "anything"}
		creds := scanner.Scan(page)
		if len(creds) != 1 {
			t.Fatalf("expected 1 credential, got %d", len(creds))
		}
		if creds[0].Matcher != "static" {
			t.Errorf("unexpected matcher name: %q", creds[0].Matcher)
		}
	})
}

// staticMatcher always reports one fixed candidate.
type staticMatcher struct{}

func (staticMatcher) Name() string { return "static" }

func (staticMatcher) Match(string) []Candidate {
	return []Candidate{{Identifier: "fixed@example.com", Secret: "s"}}
}
