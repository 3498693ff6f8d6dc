// Package export writes evidence records to external formats (JSON, CSV)
// for audits and offline analysis.
package export
