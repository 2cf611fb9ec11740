package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MaxSnapshotSize is the maximum size of the text snapshot in bytes.
// Matching runs over the snapshot, so this bounds matcher work per page.
const MaxSnapshotSize = 512 * 1024 // 512 KB

// Page represents a single fetched page.
//
// Design decision: We keep both the raw body and a text snapshot because:
//  1. The snapshot is what matchers scan (bounded, text only)
//  2. The raw hash allows change detection across runs
//  3. Headers are needed to decide whether a response is scannable text
type Page struct {
	// URL is the full URL of the page including the .onion address.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers.
	Headers map[string][]string `json:"headers,omitempty"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type"`

	// Title is the page title from the <title> tag, empty for non-HTML.
	Title string `json:"title,omitempty"`

	// Snapshot is the text content of the page, truncated to MaxSnapshotSize.
	// Credential matchers scan this field.
	Snapshot string `json:"-"`

	// Hash is the SHA-256 hash of the raw response body.
	Hash string `json:"hash,omitempty"`
}

// ComputeHash calculates and sets the SHA-256 hash of the raw body.
func (p *Page) ComputeHash(raw []byte) {
	if len(raw) == 0 {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256(raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// TruncateSnapshot enforces the snapshot size limit.
// Call this after setting Snapshot.
func (p *Page) TruncateSnapshot() {
	if len(p.Snapshot) > MaxSnapshotSize {
		p.Snapshot = p.Snapshot[:MaxSnapshotSize]
	}
}

// IsText reports whether the content type indicates scannable text.
// Non-text responses are fetched but never scanned for credentials.
func (p *Page) IsText() bool {
	ct := strings.ToLower(p.ContentType)
	return strings.HasPrefix(ct, "text/") ||
		strings.HasPrefix(ct, "application/xhtml+xml") ||
		strings.HasPrefix(ct, "application/xml") ||
		strings.HasPrefix(ct, "application/json")
}

// GetHeader returns the first value of the specified header,
// or an empty string if the header is not present.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}
