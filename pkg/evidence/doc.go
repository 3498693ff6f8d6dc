// Package evidence records validation runs as immutable audit records.
//
// Each record captures what was validated (contract name and digest,
// catalog version, mode), the risk assessment, every violation and skip,
// and timing. Records are written asynchronously so evidence persistence
// never blocks a validation run.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path: "data/evidence.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, nil)
//	defer rec.Close()
//
//	rec.Record(ctx, record) // async, non-blocking
//
// # Querying
//
//	records, err := store.Query(ctx, &evidence.Query{
//	    ContractName: "orders",
//	    Status:       "failed",
//	    Limit:        100,
//	})
//
// # Retention
//
// Old records are pruned on a cron schedule by the retention subpackage.
//
// # Storage Backends
//
// SQLite is the shipped backend; the in-memory backend exists for tests.
// Custom backends implement the Storage interface.
package evidence
