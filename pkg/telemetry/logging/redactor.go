package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor redacts sensitive values from log attributes. Contract field
// descriptions and backend prompts can embed real PII samples, so anything
// that looks like an identifier is masked before it reaches the log sink.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a redactor with the built-in pattern set.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			{
				name:        "email",
				regex:       regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
				replacement: "***@***",
			},
			{
				name:        "ssn",
				regex:       regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`),
				replacement: "***-**-****",
			},
			{
				name:        "credit_card",
				regex:       regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`),
				replacement: "****-****-****-****",
			},
			{
				name:        "bearer_token",
				regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
				replacement: "Bearer ***",
			},
		},
	}
}

// RedactAttr masks a log attribute. Values under sensitive keys are
// replaced entirely; other string values are pattern-scrubbed.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, "***")
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	}
	return a
}

// RedactString scrubs known PII patterns from a string.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// isSensitiveKey reports whether a key name indicates sensitive data.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{
		"password", "secret", "token", "api_key", "apikey",
		"authorization", "ssn", "credit_card",
	} {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
