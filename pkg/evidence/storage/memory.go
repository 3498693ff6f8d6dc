package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/gatekeeper/pkg/evidence"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// Intended for tests and short-lived tooling, not production retention.
type MemoryStorage struct {
	records map[string]*evidence.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*evidence.Record),
	}
}

// Store persists an evidence record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *evidence.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy
	return nil
}

// Query retrieves evidence records matching the query filters, ordered by
// completion time.
func (s *MemoryStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*evidence.Record{}
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	ascending := query.SortOrder == "asc"
	sort.Slice(results, func(i, j int) bool {
		if ascending {
			return results[i].CompletedAt.Before(results[j].CompletedAt)
		}
		return results[i].CompletedAt.After(results[j].CompletedAt)
	})

	start := query.Offset
	if start > len(results) {
		return []*evidence.Record{}, nil
	}
	results = results[start:]
	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results, nil
}

// Count returns the number of records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// DeleteBefore removes records completed before the cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if record.CompletedAt.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*evidence.Record)
	return nil
}

// Size returns the number of records in storage.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *evidence.Record, query *evidence.Query) bool {
	if query.Since != nil && record.CompletedAt.Before(*query.Since) {
		return false
	}
	if query.Until != nil && record.CompletedAt.After(*query.Until) {
		return false
	}
	if query.ContractName != "" && record.ContractName != query.ContractName {
		return false
	}
	if query.Status != "" && record.Status != query.Status {
		return false
	}
	if query.Mode != "" && record.Mode != query.Mode {
		return false
	}
	if query.RiskLevel != "" && record.RiskLevel != query.RiskLevel {
		return false
	}
	return true
}
