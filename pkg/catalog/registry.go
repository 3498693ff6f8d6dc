package catalog

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Snapshot is an immutable view of the policy catalog at a point in time.
// Validation runs hold the snapshot they started with, so a reload never
// lets an in-flight run observe a mix of old and new definitions.
type Snapshot struct {
	defs    map[string]*PolicyDefinition
	ordered []*PolicyDefinition // sorted by id
	version string
	loaded  time.Time
}

// newSnapshot builds an immutable snapshot from validated definitions.
func newSnapshot(defs []*PolicyDefinition) *Snapshot {
	byID := make(map[string]*PolicyDefinition, len(defs))
	ordered := make([]*PolicyDefinition, len(defs))
	copy(ordered, defs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})
	for _, def := range ordered {
		byID[def.ID] = def
	}

	// Version hash over sorted ids and severities, deterministic per content
	h := sha256.New()
	for _, def := range ordered {
		h.Write([]byte(def.ID))
		h.Write([]byte(def.Severity))
		h.Write([]byte(def.Category))
	}

	return &Snapshot{
		defs:    byID,
		ordered: ordered,
		version: fmt.Sprintf("%x", h.Sum(nil))[:16],
		loaded:  time.Now(),
	}
}

// Get retrieves a policy definition by id.
func (s *Snapshot) Get(id string) (*PolicyDefinition, bool) {
	def, ok := s.defs[id]
	return def, ok
}

// All returns every policy definition, sorted by id. The returned slice is
// a copy; the snapshot itself is never mutated.
func (s *Snapshot) All() []*PolicyDefinition {
	out := make([]*PolicyDefinition, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Count returns the number of policies in the snapshot.
func (s *Snapshot) Count() int {
	return len(s.ordered)
}

// RulePolicyIDs returns the ids of all rule-based policies, sorted.
func (s *Snapshot) RulePolicyIDs() []string {
	ids := make([]string, 0, len(s.ordered))
	for _, def := range s.ordered {
		if !def.Semantic() {
			ids = append(ids, def.ID)
		}
	}
	return ids
}

// SemanticPolicyIDs returns the ids of all semantic policies, sorted.
func (s *Snapshot) SemanticPolicyIDs() []string {
	ids := make([]string, 0, len(s.ordered))
	for _, def := range s.ordered {
		if def.Semantic() {
			ids = append(ids, def.ID)
		}
	}
	return ids
}

// AlwaysRunSemanticIDs returns the ids of semantic policies flagged
// always-run, sorted. This is the BALANCED-mode subset.
func (s *Snapshot) AlwaysRunSemanticIDs() []string {
	ids := make([]string, 0, len(s.ordered))
	for _, def := range s.ordered {
		if def.Semantic() && def.AlwaysRun {
			ids = append(ids, def.ID)
		}
	}
	return ids
}

// Version returns a short content hash identifying this snapshot.
func (s *Snapshot) Version() string {
	return s.version
}

// LoadTime returns when this snapshot was built.
func (s *Snapshot) LoadTime() time.Time {
	return s.loaded
}

// Registry holds the live catalog snapshot and replaces it atomically on
// reload. Many validation runs read concurrently; a reload swaps the
// snapshot pointer under the write lock so no reader observes a partially
// updated catalog.
type Registry struct {
	mu      sync.RWMutex
	current *Snapshot
}

// NewRegistry creates a registry from validated policy definitions.
// It fails with a *ConfigError if the definitions are invalid.
func NewRegistry(defs []*PolicyDefinition) (*Registry, error) {
	if err := ValidateDefinitions(defs); err != nil {
		return nil, err
	}
	return &Registry{current: newSnapshot(defs)}, nil
}

// Snapshot returns the current immutable catalog view. Callers keep using
// the returned snapshot for the duration of a validation run.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Replace validates the new definitions and atomically swaps the live
// snapshot. On validation failure the previous snapshot stays in effect
// and a *ConfigError is returned.
func (r *Registry) Replace(defs []*PolicyDefinition) error {
	if err := ValidateDefinitions(defs); err != nil {
		return err
	}

	snap := newSnapshot(defs)

	r.mu.Lock()
	r.current = snap
	r.mu.Unlock()

	return nil
}
