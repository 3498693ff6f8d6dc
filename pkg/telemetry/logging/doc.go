// Package logging configures structured logging for the engine.
//
// Loggers are standard log/slog instances; components derive their own
// with logger.With("component", ...). When PII redaction is enabled,
// sensitive keys and recognizable identifiers (emails, SSNs, card
// numbers, bearer tokens) are masked before reaching the sink.
package logging
