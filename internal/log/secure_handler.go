package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces any attribute value judged sensitive.
const MaskValue = "***REDACTED***"

// sensitiveKeys are attribute keys whose values are masked unconditionally.
// Lowercased for the lookup in maskAttr.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Authentication
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_token":  true,
	"refresh_token": true,
	"private_key":   true,
	"smtp_password": true,

	// Session
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,

	// Credentials
	"credential":  true,
	"credentials": true,
	"auth":        true,
}

// allowedKeys override the keyword check. A secret hash is the designed
// safe representation of a secret; masking it would make the log alert
// channel useless.
var allowedKeys = map[string]bool{
	"secret_hash": true,
}

// sensitiveKeywords flag any key containing one of these substrings.
// The bare "key" keyword is deliberately absent: it false-positives on
// harmless keys like "primary_key" and "keyboard".
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth",
	"credential", "private",
}

// sensitivePatterns flag values that look like secrets no matter what key
// they arrive under.
var sensitivePatterns = []*regexp.Regexp{
	// Credential pairs in dump format. A page excerpt carrying a
	// plaintext leak must never reach the log verbatim.
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}:[^\s:]+`),

	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),

	// ed25519v1 secret (Tor v3 onion)
	regexp.MustCompile(`== ed25519v1-secret:`),
}

// SecureHandler is an slog.Handler wrapper that masks sensitive attribute
// values before the record reaches the real handler. Wrapping the handler
// rather than the logger means any slog-based library in the process
// (tornago included) inherits the masking, and any sink format works
// underneath.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps the given handler; nil wraps the default one.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the underlying handler accepts the level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rebuilds the record with masked attributes and forwards it.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs masks the pre-bound attributes before delegating.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.maskAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup delegates the group to the underlying handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr decides per attribute, descending into groups.
func (h *SecureHandler) maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			maskedAttrs[i] = h.maskAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if allowedKeys[keyLower] {
		return a
	}
	if sensitiveKeys[keyLower] || keyLooksSensitive(keyLower) {
		return slog.String(a.Key, MaskValue)
	}
	if a.Value.Kind() == slog.KindString && valueLooksSensitive(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

// keyLooksSensitive reports whether the lowercased key contains a
// sensitive keyword.
func keyLooksSensitive(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// valueLooksSensitive reports whether the value matches a secret pattern.
func valueLooksSensitive(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// logLevel maps the verbose flag to a level: Debug when set, Info otherwise.
func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NewSecureLogger creates a text-format slog.Logger with secret masking.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel(verbose)})
	return slog.New(NewSecureHandler(h))
}

// NewSecureJSONLogger creates a JSON-format slog.Logger with secret
// masking, for runs whose logs feed an aggregator.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel(verbose)})
	return slog.New(NewSecureHandler(h))
}
