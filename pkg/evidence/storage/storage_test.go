package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/gatekeeper/pkg/evidence"
)

func testRecord(id string, completedAt time.Time) *evidence.Record {
	confidence := 85.0
	return &evidence.Record{
		ID:             id,
		RunID:          "run-" + id,
		ContractName:   "orders",
		ContractDigest: "abc123",
		CatalogVersion: "v1",
		Mode:           "BALANCED",
		RiskScore:      7,
		RiskLevel:      "MEDIUM",
		RiskFactors:    []string{"contract contains PII (+5)"},
		Status:         "failed",
		Violations: []evidence.ViolationRecord{
			{
				PolicyID:       "sec-001",
				Severity:       "critical",
				Message:        "PII field not encrypted",
				AffectedFields: []string{"ssn"},
				Source:         "rule",
			},
			{
				PolicyID:   "sem-002",
				Severity:   "high",
				Message:    "retention exceeds purpose",
				Source:     "semantic",
				Confidence: &confidence,
			},
		},
		Skipped: []evidence.SkipRecord{
			{PolicyID: "sem-001", Reason: "timeout"},
		},
		PassedCount:  10,
		WarningCount: 0,
		FailureCount: 2,
		StartedAt:    completedAt.Add(-time.Second),
		CompletedAt:  completedAt,
		RecordedAt:   completedAt,
		DurationMs:   1000,
	}
}

// storageUnderTest runs the same assertions against both backends.
func storageUnderTest(t *testing.T) map[string]evidence.Storage {
	t.Helper()

	sqlite, err := NewSQLiteStorage(&SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "evidence.db"),
		WALMode:     true,
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}

	return map[string]evidence.Storage{
		"memory": NewMemoryStorage(),
		"sqlite": sqlite,
	}
}

func TestStorage_StoreAndQuery(t *testing.T) {
	for name, store := range storageUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)

			if err := store.Store(ctx, testRecord("a", now)); err != nil {
				t.Fatalf("Store() error = %v", err)
			}

			records, err := store.Query(ctx, &evidence.Query{ContractName: "orders"})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("Query() returned %d records, want 1", len(records))
			}

			got := records[0]
			if got.ID != "a" || got.Status != "failed" || got.RiskLevel != "MEDIUM" {
				t.Errorf("record = %+v", got)
			}
			if len(got.Violations) != 2 {
				t.Fatalf("violations = %d, want 2", len(got.Violations))
			}
			if got.Violations[1].Confidence == nil || *got.Violations[1].Confidence != 85.0 {
				t.Errorf("semantic violation confidence = %v", got.Violations[1].Confidence)
			}
			if len(got.Skipped) != 1 || got.Skipped[0].Reason != "timeout" {
				t.Errorf("skipped = %v", got.Skipped)
			}
		})
	}
}

func TestStorage_QueryFilters(t *testing.T) {
	for name, store := range storageUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)

			passed := testRecord("p", base.Add(-2*time.Hour))
			passed.Status = "passed"
			passed.ContractName = "invoices"
			if err := store.Store(ctx, passed); err != nil {
				t.Fatal(err)
			}
			if err := store.Store(ctx, testRecord("f", base)); err != nil {
				t.Fatal(err)
			}

			records, err := store.Query(ctx, &evidence.Query{Status: "passed"})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(records) != 1 || records[0].ID != "p" {
				t.Errorf("status filter returned %v", records)
			}

			since := base.Add(-time.Hour)
			records, err = store.Query(ctx, &evidence.Query{Since: &since})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(records) != 1 || records[0].ID != "f" {
				t.Errorf("since filter returned %v", records)
			}

			count, err := store.Count(ctx, &evidence.Query{})
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if count != 2 {
				t.Errorf("Count() = %d, want 2", count)
			}
		})
	}
}

func TestStorage_QueryOrderingAndPagination(t *testing.T) {
	for name, store := range storageUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)

			for i := 0; i < 5; i++ {
				r := testRecord(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Minute))
				if err := store.Store(ctx, r); err != nil {
					t.Fatal(err)
				}
			}

			records, err := store.Query(ctx, &evidence.Query{Limit: 2})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("limit ignored: got %d records", len(records))
			}
			// Default order is newest first
			if records[0].ID != "r4" || records[1].ID != "r3" {
				t.Errorf("order = [%s %s], want [r4 r3]", records[0].ID, records[1].ID)
			}

			records, err = store.Query(ctx, &evidence.Query{SortOrder: "asc", Limit: 2, Offset: 1})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(records) != 2 || records[0].ID != "r1" || records[1].ID != "r2" {
				t.Errorf("asc offset page = %v", ids(records))
			}
		})
	}
}

func TestStorage_DeleteBefore(t *testing.T) {
	for name, store := range storageUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)

			if err := store.Store(ctx, testRecord("old", base.Add(-48*time.Hour))); err != nil {
				t.Fatal(err)
			}
			if err := store.Store(ctx, testRecord("new", base)); err != nil {
				t.Fatal(err)
			}

			deleted, err := store.DeleteBefore(ctx, base.Add(-24*time.Hour))
			if err != nil {
				t.Fatalf("DeleteBefore() error = %v", err)
			}
			if deleted != 1 {
				t.Errorf("deleted = %d, want 1", deleted)
			}

			count, err := store.Count(ctx, &evidence.Query{})
			if err != nil {
				t.Fatal(err)
			}
			if count != 1 {
				t.Errorf("remaining = %d, want 1", count)
			}
		})
	}
}

func ids(records []*evidence.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
