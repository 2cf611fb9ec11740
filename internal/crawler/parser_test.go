package crawler

import (
	"strings"
	"testing"
)

// TestParser tests link and text extraction from HTML.
func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts title, links and text", func(t *testing.T) {
		t.Parallel()

		const page = `<html><head><title> Market Login </title></head><body>
			<a href="/about">About</a>
			<a href="http://example.onion/contact">Contact</a>
			<a href="http://other.onion/">Elsewhere</a>
			<a href="https://example.com/">Clearnet</a>
			<p>dumped: admin@example.com:hunter2</p>
			<!-- staging creds: dev@example.com:letmein -->
		</body></html>`

		parser, err := NewParser("http://example.onion/index.html")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		result, err := parser.Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Title != "Market Login" {
			t.Errorf("unexpected title: %q", result.Title)
		}
		if len(result.Links) != 4 {
			t.Fatalf("expected 4 links, got %d: %v", len(result.Links), result.Links)
		}
		wantInternal := []string{
			"http://example.onion/about",
			"http://example.onion/contact",
		}
		if len(result.InternalLinks) != len(wantInternal) {
			t.Fatalf("expected %d internal links, got %v", len(wantInternal), result.InternalLinks)
		}
		for i, want := range wantInternal {
			if result.InternalLinks[i] != want {
				t.Errorf("internal link %d: expected %q, got %q", i, want, result.InternalLinks[i])
			}
		}
		if len(result.ExternalLinks) != 2 {
			t.Errorf("expected 2 external links, got %v", result.ExternalLinks)
		}

		if !strings.Contains(result.Text, "admin@example.com:hunter2") {
			t.Error("expected body text in extracted text")
		}
		if !strings.Contains(result.Text, "dev@example.com:letmein") {
			t.Error("expected HTML comment in extracted text")
		}
	})

	t.Run("skips non-navigable schemes", func(t *testing.T) {
		t.Parallel()

		const page = `<html><body>
			<a href="javascript:void(0)">x</a>
			<a href="mailto:a@b.onion">x</a>
			<a href="tel:+1234">x</a>
			<a href="#section">x</a>
			<a href="">x</a>
		</body></html>`

		parser, err := NewParser("http://example.onion/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		result, err := parser.Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(result.Links) != 0 {
			t.Errorf("expected no links, got %v", result.Links)
		}
	})

	t.Run("tolerates malformed html", func(t *testing.T) {
		t.Parallel()

		const page = `<html><body><a href="/a">unclosed<p>text`

		parser, err := NewParser("http://example.onion/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		result, err := parser.Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if len(result.InternalLinks) != 1 {
			t.Errorf("expected 1 internal link, got %v", result.InternalLinks)
		}
	})
}
