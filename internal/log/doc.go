// Package log provides secure logging with automatic masking of secrets,
// built on top of the standard slog package.
//
// The tool's core promise is that a plaintext secret never survives past
// detection. Logging is the easiest place to break that promise by
// accident, so every logger in the application goes through SecureHandler,
// which masks:
//   - Attribute values under secret-bearing keys (password, cookie, token)
//   - Values that look like credential pairs (email:secret), so a raw
//     page excerpt cannot smuggle a plaintext leak into the log
//   - Bearer/Basic auth values, JWTs, private key material
//   - Tor v3 onion service secret key markers
//
// One-way secret hashes are the designed safe representation and are
// exempt; they log under the secret_hash key unmasked.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
// The handler wraps any slog.Handler, so the same masking applies to
// text and JSON output, and to libraries that accept a *slog.Logger
// (including tornago).
package log
