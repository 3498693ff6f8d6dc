package catalog

import (
	"sync"
	"testing"
)

func testDefs() []*PolicyDefinition {
	return []*PolicyDefinition{
		{
			ID:       "q-001",
			Category: CategoryQuality,
			Severity: SeverityMedium,
			Rule: &RuleSpec{
				Type:       RuleStructural,
				Structural: &StructuralSpec{Check: CheckAllFieldsDescribed},
			},
		},
		{
			ID:       "sd-001",
			Category: CategorySensitiveData,
			Severity: SeverityCritical,
			Rule: &RuleSpec{
				Type: RuleFieldPresence,
				FieldPresence: &FieldPresenceSpec{
					NamePattern:       "(?i)ssn",
					RequiredAttribute: AttributeEncrypted,
				},
			},
		},
		{
			ID:                  "sem-002",
			Category:            CategorySemantic,
			Severity:            SeverityHigh,
			PromptTemplate:      "Check {{name}}.",
			ConfidenceThreshold: 70,
		},
		{
			ID:                  "sem-001",
			Category:            CategorySemantic,
			Severity:            SeverityHigh,
			PromptTemplate:      "Check {{use_cases}}.",
			ConfidenceThreshold: 60,
			AlwaysRun:           true,
		},
	}
}

func TestNewRegistry_RejectsInvalid(t *testing.T) {
	defs := testDefs()
	defs[0].Severity = "bogus"

	if _, err := NewRegistry(defs); err == nil {
		t.Fatal("NewRegistry() accepted an invalid definition")
	}
}

func TestSnapshot_Ordering(t *testing.T) {
	reg, err := NewRegistry(testDefs())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	snap := reg.Snapshot()
	all := snap.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Errorf("All() not sorted: %q before %q", all[i-1].ID, all[i].ID)
		}
	}

	ruleIDs := snap.RulePolicyIDs()
	if len(ruleIDs) != 2 || ruleIDs[0] != "q-001" || ruleIDs[1] != "sd-001" {
		t.Errorf("RulePolicyIDs() = %v", ruleIDs)
	}

	semIDs := snap.SemanticPolicyIDs()
	if len(semIDs) != 2 || semIDs[0] != "sem-001" || semIDs[1] != "sem-002" {
		t.Errorf("SemanticPolicyIDs() = %v", semIDs)
	}

	always := snap.AlwaysRunSemanticIDs()
	if len(always) != 1 || always[0] != "sem-001" {
		t.Errorf("AlwaysRunSemanticIDs() = %v", always)
	}
}

func TestRegistry_ReplaceKeepsOldSnapshotOnError(t *testing.T) {
	reg, err := NewRegistry(testDefs())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	before := reg.Snapshot()

	bad := testDefs()
	bad[1].ID = bad[0].ID // duplicate
	if err := reg.Replace(bad); err == nil {
		t.Fatal("Replace() accepted duplicate ids")
	}

	if reg.Snapshot() != before {
		t.Error("failed Replace() swapped the snapshot")
	}
}

func TestRegistry_ReplaceIsAtomicForHeldSnapshots(t *testing.T) {
	reg, err := NewRegistry(testDefs())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	held := reg.Snapshot()
	heldVersion := held.Version()

	replacement := testDefs()[:2]
	if err := reg.Replace(replacement); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	// The held snapshot is unchanged; the registry serves the new one.
	if held.Version() != heldVersion || held.Count() != 4 {
		t.Error("held snapshot changed after Replace()")
	}
	if reg.Snapshot().Count() != 2 {
		t.Errorf("new snapshot count = %d, want 2", reg.Snapshot().Count())
	}
	if reg.Snapshot().Version() == heldVersion {
		t.Error("version did not change after Replace()")
	}
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	reg, err := NewRegistry(testDefs())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := reg.Snapshot()
				// Every observed snapshot must be internally consistent.
				if got := len(snap.All()); got != snap.Count() {
					t.Errorf("snapshot inconsistent: All()=%d Count()=%d", got, snap.Count())
					return
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if err := reg.Replace(testDefs()); err != nil {
			t.Fatalf("Replace() error = %v", err)
		}
	}
	wg.Wait()
}
