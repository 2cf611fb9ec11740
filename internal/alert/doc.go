// Package alert delivers notifications for discovered credentials.
//
// The default channel is SMTP email. Delivery failures are reported to the
// caller but must never abort a crawl; the crawl loop logs them and moves
// on. Alert bodies carry the identifier and the secret hash, never the
// plaintext secret.
package alert
