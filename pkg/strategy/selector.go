package strategy

import (
	"fmt"
	"sort"

	"mercator-hq/gatekeeper/pkg/catalog"
	"mercator-hq/gatekeeper/pkg/risk"
)

// Mode selects how thorough a validation run is.
type Mode string

const (
	// ModeFast runs rule-based policies only.
	ModeFast Mode = "FAST"

	// ModeBalanced adds the always-run semantic subset.
	ModeBalanced Mode = "BALANCED"

	// ModeThorough runs every semantic policy in the catalog.
	ModeThorough Mode = "THOROUGH"

	// ModeAdaptive scales the semantic subset with the assessed risk.
	ModeAdaptive Mode = "ADAPTIVE"
)

// Valid returns true if the mode is one of the known values.
func (m Mode) Valid() bool {
	switch m {
	case ModeFast, ModeBalanced, ModeThorough, ModeAdaptive:
		return true
	}
	return false
}

// ParseMode parses a mode string, case-sensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown validation mode %q", s)
	}
	return m, nil
}

// Plan names the policies one validation run will evaluate.
type Plan struct {
	// RuleEvaluated records that the deterministic path runs. It is true
	// in every mode: rule evaluation is cheap and always worth having.
	RuleEvaluated bool `json:"rule_evaluated"`

	// SemanticPolicyIDs is the (possibly empty) semantic subset, sorted
	// ascending.
	SemanticPolicyIDs []string `json:"semantic_policy_ids,omitempty"`

	// Mode is the mode the plan was produced under.
	Mode Mode `json:"mode"`
}

// Select produces the Validation Plan for one run. It is a pure function
// of (risk level, mode, snapshot).
//
// FAST never includes semantic policies; BALANCED includes the always-run
// subset; THOROUGH includes all of them; ADAPTIVE includes none at LOW
// risk, the always-run subset at MEDIUM, and all semantic policies at HIGH
// or CRITICAL.
func Select(level risk.Level, mode Mode, snap *catalog.Snapshot) (*Plan, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown validation mode %q", mode)
	}

	plan := &Plan{
		RuleEvaluated: true,
		Mode:          mode,
	}

	switch mode {
	case ModeFast:
		// No semantic evaluation.

	case ModeBalanced:
		plan.SemanticPolicyIDs = snap.AlwaysRunSemanticIDs()

	case ModeThorough:
		plan.SemanticPolicyIDs = snap.SemanticPolicyIDs()

	case ModeAdaptive:
		switch level {
		case risk.LevelLow:
			// No semantic evaluation.
		case risk.LevelMedium:
			plan.SemanticPolicyIDs = snap.AlwaysRunSemanticIDs()
		default: // HIGH, CRITICAL
			plan.SemanticPolicyIDs = snap.SemanticPolicyIDs()
		}
	}

	sort.Strings(plan.SemanticPolicyIDs)
	return plan, nil
}
