package validation

import (
	"mercator-hq/gatekeeper/pkg/catalog"
)

// Source identifies which evaluation path produced a violation.
type Source string

const (
	// SourceRule marks violations from the deterministic rule evaluator.
	SourceRule Source = "rule"

	// SourceSemantic marks violations from the reasoning backend.
	SourceSemantic Source = "semantic"
)

// Violation is a recorded instance of a contract failing a specific policy.
type Violation struct {
	// PolicyID is the id of the violated policy.
	PolicyID string `json:"policy_id"`

	// Severity is the violated policy's severity.
	Severity catalog.Severity `json:"severity"`

	// Message describes the specific failure.
	Message string `json:"message"`

	// AffectedFields lists the schema fields involved (possibly empty).
	AffectedFields []string `json:"affected_fields,omitempty"`

	// Remediation is the policy's remediation guidance.
	Remediation string `json:"remediation,omitempty"`

	// Source is the evaluation path that produced this violation.
	Source Source `json:"source"`

	// Confidence is the reported confidence (0-100) for semantic
	// violations; nil for rule-based ones.
	Confidence *float64 `json:"confidence,omitempty"`
}

// SkipReason explains why a semantic policy was not evaluated.
type SkipReason string

const (
	SkipTimeout            SkipReason = "timeout"
	SkipBackendUnavailable SkipReason = "backend-unavailable"
	SkipParseError         SkipReason = "parse-error"
	SkipLowConfidence      SkipReason = "low-confidence"
)

// SkippedPolicy records a policy that was planned but not evaluated.
// Skips are never silently dropped: callers must be able to see what was
// not checked.
type SkippedPolicy struct {
	// PolicyID is the id of the skipped policy.
	PolicyID string `json:"policy_id"`

	// Reason explains why the policy was skipped.
	Reason SkipReason `json:"reason"`
}

// Status is the aggregate outcome of a validation run.
type Status string

const (
	// StatusPassed means no violations were found.
	StatusPassed Status = "passed"

	// StatusWarning means only medium or low severity violations were found.
	StatusWarning Status = "warning"

	// StatusFailed means at least one critical or high severity violation
	// was found.
	StatusFailed Status = "failed"
)

// Result is the merged outcome of one validation run.
type Result struct {
	// Status is the aggregate outcome.
	Status Status `json:"status"`

	// Violations is sorted by severity descending, then policy id ascending.
	Violations []Violation `json:"violations"`

	// PassedCount is the number of evaluated policies with no violations.
	PassedCount int `json:"passed_count"`

	// WarningCount is the number of medium/low severity violations.
	WarningCount int `json:"warning_count"`

	// FailureCount is the number of critical/high severity violations.
	FailureCount int `json:"failure_count"`

	// Skipped lists semantic policies that were planned but not evaluated.
	Skipped []SkippedPolicy `json:"skipped,omitempty"`
}
