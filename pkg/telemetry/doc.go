// Package telemetry provides observability for the validation engine.
//
// Components:
//
//   - logging: structured logging with PII redaction
//   - metrics: Prometheus metrics collection
//
// Contracts under validation describe sensitive data, so log redaction is
// part of the default posture rather than an opt-in extra.
package telemetry
