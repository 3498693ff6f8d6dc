package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mercator-hq/gatekeeper/pkg/evidence"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10.
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/evidence.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend. It initializes
// the schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "evidence.storage.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return evidence.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		_, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds()))
		if err != nil {
			return evidence.NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists an evidence record.
func (s *SQLiteStorage) Store(ctx context.Context, record *evidence.Record) error {
	riskFactors, _ := json.Marshal(record.RiskFactors)
	violations, _ := json.Marshal(record.Violations)
	skipped, _ := json.Marshal(record.Skipped)

	query := `
		INSERT INTO evidence (
			id, run_id,
			contract_name, contract_digest, catalog_version, mode,
			risk_score, risk_level, risk_factors,
			status, violations, skipped,
			passed_count, warning_count, failure_count,
			started_at, completed_at, recorded_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RunID,
		record.ContractName, record.ContractDigest, record.CatalogVersion, record.Mode,
		record.RiskScore, record.RiskLevel, string(riskFactors),
		record.Status, string(violations), string(skipped),
		record.PassedCount, record.WarningCount, record.FailureCount,
		record.StartedAt, record.CompletedAt, record.RecordedAt, record.DurationMs,
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves evidence records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := `
		SELECT id, run_id,
			contract_name, contract_digest, catalog_version, mode,
			risk_score, risk_level, risk_factors,
			status, violations, skipped,
			passed_count, warning_count, failure_count,
			started_at, completed_at, recorded_at, duration_ms
		FROM evidence`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	order := "DESC"
	if query.SortOrder == "asc" {
		order = "ASC"
	}
	sqlQuery += " ORDER BY completed_at " + order

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*evidence.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM evidence"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteBefore removes records completed before the cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM evidence WHERE completed_at < ?", cutoff)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// buildWhereClause translates query filters into SQL conditions.
func buildWhereClause(query *evidence.Query) (string, []any) {
	conditions := []string{}
	args := []any{}

	if query.Since != nil {
		conditions = append(conditions, "completed_at >= ?")
		args = append(args, *query.Since)
	}
	if query.Until != nil {
		conditions = append(conditions, "completed_at <= ?")
		args = append(args, *query.Until)
	}
	if query.ContractName != "" {
		conditions = append(conditions, "contract_name = ?")
		args = append(args, query.ContractName)
	}
	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, query.Status)
	}
	if query.Mode != "" {
		conditions = append(conditions, "mode = ?")
		args = append(args, query.Mode)
	}
	if query.RiskLevel != "" {
		conditions = append(conditions, "risk_level = ?")
		args = append(args, query.RiskLevel)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRecord scans one row into an evidence record.
func scanRecord(rows *sql.Rows) (*evidence.Record, error) {
	var record evidence.Record
	var riskFactors, violations, skipped string

	err := rows.Scan(
		&record.ID, &record.RunID,
		&record.ContractName, &record.ContractDigest, &record.CatalogVersion, &record.Mode,
		&record.RiskScore, &record.RiskLevel, &riskFactors,
		&record.Status, &violations, &skipped,
		&record.PassedCount, &record.WarningCount, &record.FailureCount,
		&record.StartedAt, &record.CompletedAt, &record.RecordedAt, &record.DurationMs,
	)
	if err != nil {
		return nil, err
	}

	if riskFactors != "" && riskFactors != "null" {
		if err := json.Unmarshal([]byte(riskFactors), &record.RiskFactors); err != nil {
			return nil, fmt.Errorf("unmarshal risk_factors: %w", err)
		}
	}
	if violations != "" && violations != "null" {
		if err := json.Unmarshal([]byte(violations), &record.Violations); err != nil {
			return nil, fmt.Errorf("unmarshal violations: %w", err)
		}
	}
	if skipped != "" && skipped != "null" {
		if err := json.Unmarshal([]byte(skipped), &record.Skipped); err != nil {
			return nil, fmt.Errorf("unmarshal skipped: %w", err)
		}
	}

	return &record, nil
}
