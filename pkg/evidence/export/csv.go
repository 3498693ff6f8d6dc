package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"mercator-hq/gatekeeper/pkg/evidence"
)

// CSVExporter exports evidence records to CSV format. Nested structures
// are flattened: violations and skips become semicolon-separated
// policy-id lists.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var csvHeader = []string{
	"id", "run_id", "contract_name", "contract_digest", "catalog_version",
	"mode", "risk_score", "risk_level", "status",
	"passed_count", "warning_count", "failure_count",
	"violations", "skipped",
	"started_at", "completed_at", "duration_ms",
}

// Export writes evidence records to the writer in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		select {
		case <-ctx.Done():
			return evidence.NewExportError("csv", len(records), ctx.Err())
		default:
		}

		if err := writer.Write(recordRow(record)); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return evidence.NewExportError("csv", len(records), err)
	}
	return nil
}

// recordRow flattens a record into CSV cells.
func recordRow(record *evidence.Record) []string {
	violations := make([]string, 0, len(record.Violations))
	for _, v := range record.Violations {
		violations = append(violations, v.PolicyID)
	}
	skipped := make([]string, 0, len(record.Skipped))
	for _, s := range record.Skipped {
		skipped = append(skipped, s.PolicyID+":"+s.Reason)
	}

	return []string{
		record.ID,
		record.RunID,
		record.ContractName,
		record.ContractDigest,
		record.CatalogVersion,
		record.Mode,
		strconv.Itoa(record.RiskScore),
		record.RiskLevel,
		record.Status,
		strconv.Itoa(record.PassedCount),
		strconv.Itoa(record.WarningCount),
		strconv.Itoa(record.FailureCount),
		strings.Join(violations, ";"),
		strings.Join(skipped, ";"),
		record.StartedAt.Format(time.RFC3339),
		record.CompletedAt.Format(time.RFC3339),
		strconv.FormatInt(record.DurationMs, 10),
	}
}
