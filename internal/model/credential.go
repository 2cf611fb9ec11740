package model

import "time"

// Credential is a single credential-leak finding: an identifier paired with
// the one-way hash of the secret that accompanied it.
//
// Invariant: SecretHash is always a hash, never the matched secret itself.
// Nothing downstream of the matcher (storage, alerting, logging, reports)
// ever sees the plaintext secret.
type Credential struct {
	// Identifier is the email-like token exactly as discovered,
	// lowercased for deduplication.
	Identifier string `json:"identifier"`

	// SecretHash is the hex-encoded SHA3-256 hash of the matched secret.
	SecretHash string `json:"secret_hash"`

	// SourceURL is the page the credential was found on.
	SourceURL string `json:"source_url"`

	// Service is the onion address hosting the source page.
	Service string `json:"service"`

	// Matcher is the name of the matcher that produced this record.
	Matcher string `json:"matcher"`

	// FoundAt is when the credential was discovered.
	FoundAt time.Time `json:"found_at"`
}

// Key returns a deduplication key for the credential.
// Two findings of the same identifier/secret pair on the same page
// are the same discovery.
func (c Credential) Key() string {
	return c.Identifier + "\x00" + c.SecretHash + "\x00" + c.SourceURL
}
