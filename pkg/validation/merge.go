package validation

import (
	"sort"

	"mercator-hq/gatekeeper/pkg/catalog"
)

// Merge combines violations from both evaluation paths into one Result.
//
// The aggregate status is failed if any violation is critical or high,
// warning if any violation exists at all, and passed otherwise. Violations
// are sorted by severity descending then policy id ascending so repeated
// runs over identical inputs produce byte-identical reports.
// evaluatedCount is the number of policies that actually ran (rule plus
// completed semantic); it drives PassedCount.
func Merge(violations []Violation, skipped []SkippedPolicy, evaluatedCount int) *Result {
	sorted := make([]Violation, len(violations))
	copy(sorted, violations)
	SortViolations(sorted)

	result := &Result{
		Status:     StatusPassed,
		Violations: sorted,
		Skipped:    sortedSkips(skipped),
	}

	violatedPolicies := make(map[string]bool)
	for _, v := range sorted {
		violatedPolicies[v.PolicyID] = true
		switch v.Severity {
		case catalog.SeverityCritical, catalog.SeverityHigh:
			result.FailureCount++
		default:
			result.WarningCount++
		}
	}

	result.PassedCount = evaluatedCount - len(violatedPolicies)
	if result.PassedCount < 0 {
		result.PassedCount = 0
	}

	switch {
	case result.FailureCount > 0:
		result.Status = StatusFailed
	case len(sorted) > 0:
		result.Status = StatusWarning
	}

	return result
}

// SortViolations sorts in place by severity descending (critical, high,
// medium, low) then policy id ascending. The sort is stable and idempotent.
func SortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		ri, rj := violations[i].Severity.Rank(), violations[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return violations[i].PolicyID < violations[j].PolicyID
	})
}

// sortedSkips returns a copy of the skips sorted by policy id for
// reproducible output.
func sortedSkips(skipped []SkippedPolicy) []SkippedPolicy {
	if len(skipped) == 0 {
		return nil
	}
	out := make([]SkippedPolicy, len(skipped))
	copy(out, skipped)
	sort.Slice(out, func(i, j int) bool {
		return out[i].PolicyID < out[j].PolicyID
	})
	return out
}
