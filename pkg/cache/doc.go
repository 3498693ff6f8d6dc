// Package cache provides a concurrent TTL key-value cache with LRU
// eviction, used to share semantic verdicts across validation runs so an
// unchanged contract does not trigger repeat backend calls within the TTL.
// It is a standalone capability rather than state owned by the evaluator,
// so its behavior is testable in isolation.
package cache
