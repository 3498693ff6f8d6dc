package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the evidence database schema.
const Schema = `
-- Validation run evidence
CREATE TABLE IF NOT EXISTS evidence (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,

    -- What was validated
    contract_name TEXT NOT NULL,
    contract_digest TEXT NOT NULL,
    catalog_version TEXT NOT NULL,
    mode TEXT NOT NULL,

    -- Risk assessment
    risk_score INTEGER NOT NULL,
    risk_level TEXT NOT NULL,
    risk_factors TEXT,

    -- Outcome
    status TEXT NOT NULL,
    violations TEXT,
    skipped TEXT,
    passed_count INTEGER NOT NULL,
    warning_count INTEGER NOT NULL,
    failure_count INTEGER NOT NULL,

    -- Timing
    started_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP NOT NULL,
    recorded_at TIMESTAMP NOT NULL,
    duration_ms INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_evidence_completed_at ON evidence(completed_at);
CREATE INDEX IF NOT EXISTS idx_evidence_contract_name ON evidence(contract_name);
CREATE INDEX IF NOT EXISTS idx_evidence_status ON evidence(status);
CREATE INDEX IF NOT EXISTS idx_evidence_mode ON evidence(mode);
CREATE INDEX IF NOT EXISTS idx_evidence_risk_level ON evidence(risk_level);
CREATE INDEX IF NOT EXISTS idx_evidence_run_id ON evidence(run_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
