// Package storage provides storage backends for evidence records.
//
// SQLite is the shipped backend: WAL mode for concurrent reads and
// writes, a busy timeout for lock contention, and indexes on the fields
// the query API filters by. The in-memory backend exists for tests.
//
// Custom backends implement the evidence.Storage interface.
package storage
