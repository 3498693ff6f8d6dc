// Package validation defines the shared result model for a validation run:
// Violation, SkippedPolicy, and the merged Result, plus the deterministic
// merge that combines rule-based and semantic outputs into one orderable
// report. Both evaluation paths produce these types; the orchestrator in
// pkg/engine sequences the paths and calls Merge.
package validation
