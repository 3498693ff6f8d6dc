package evidence

import (
	"context"
	"io"
	"time"
)

// Record is the audit trail for a single validation run. It captures what
// was validated, against which catalog version, and everything the engine
// decided, including the semantic policies it could not evaluate.
type Record struct {
	// Identity
	ID    string `json:"id"`     // UUID v4
	RunID string `json:"run_id"` // Engine run id

	// What was validated
	ContractName   string `json:"contract_name"`
	ContractDigest string `json:"contract_digest"` // SHA-256 of canonical contract
	CatalogVersion string `json:"catalog_version"` // Snapshot content hash
	Mode           string `json:"mode"`            // Validation mode used

	// Risk assessment
	RiskScore   int      `json:"risk_score"`
	RiskLevel   string   `json:"risk_level"`
	RiskFactors []string `json:"risk_factors,omitempty"`

	// Outcome
	Status       string            `json:"status"` // "passed", "warning", "failed"
	Violations   []ViolationRecord `json:"violations,omitempty"`
	Skipped      []SkipRecord      `json:"skipped,omitempty"`
	PassedCount  int               `json:"passed_count"`
	WarningCount int               `json:"warning_count"`
	FailureCount int               `json:"failure_count"`

	// Timing
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	RecordedAt  time.Time `json:"recorded_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// ViolationRecord captures one policy violation within a run.
type ViolationRecord struct {
	PolicyID       string   `json:"policy_id"`
	Severity       string   `json:"severity"`
	Message        string   `json:"message"`
	AffectedFields []string `json:"affected_fields,omitempty"`
	Source         string   `json:"source"` // "rule" or "semantic"
	Confidence     *float64 `json:"confidence,omitempty"`
}

// SkipRecord captures one semantic policy that was planned but not
// evaluated.
type SkipRecord struct {
	PolicyID string `json:"policy_id"`
	Reason   string `json:"reason"`
}

// Query defines filter parameters for querying evidence records.
type Query struct {
	// Time range on CompletedAt, both inclusive.
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`

	// Filters
	ContractName string `json:"contract_name,omitempty"`
	Status       string `json:"status,omitempty"`
	Mode         string `json:"mode,omitempty"`
	RiskLevel    string `json:"risk_level,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder orders by completion time: "asc" or "desc" (default).
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage defines the interface for evidence storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists an evidence record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves evidence records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes records completed before the cutoff and returns
	// the number deleted. Used for retention enforcement.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}

// Exporter writes evidence records to a writer in a specific format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
