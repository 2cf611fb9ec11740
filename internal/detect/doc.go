// Package detect finds leaked credentials in crawled page text.
//
// Matchers are pluggable: each one scans a text snapshot and reports
// candidate (identifier, secret) pairs. The secret leaves this package only
// as a one-way hash; the plaintext is never stored, logged, or transmitted.
package detect
