package rules

import (
	"reflect"
	"testing"

	"mercator-hq/gatekeeper/pkg/catalog"
	"mercator-hq/gatekeeper/pkg/contract"
	"mercator-hq/gatekeeper/pkg/validation"
)

func intPtr(v int) *int { return &v }

func testSnapshot(t *testing.T, defs []*catalog.PolicyDefinition) *catalog.Snapshot {
	t.Helper()
	reg, err := catalog.NewRegistry(defs)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg.Snapshot()
}

func baseContract() *contract.Contract {
	return &contract.Contract{
		Name:           "patient-visits",
		Classification: contract.ClassificationConfidential,
		ContainsPII:    true,
		RetentionDays:  90,
		Fields: []contract.Field{
			{Name: "visit_id", Type: "string", Description: "Visit identifier"},
			{Name: "ssn", Type: "string", Description: "Patient SSN", PII: true},
			{Name: "notes", Type: "string", Description: "Clinical notes"},
		},
	}
}

func TestEvaluate_FieldPresence_EmitsOneCriticalPerOffendingField(t *testing.T) {
	snap := testSnapshot(t, []*catalog.PolicyDefinition{
		{
			ID:          "sd-001",
			Category:    catalog.CategorySensitiveData,
			Severity:    catalog.SeverityCritical,
			Remediation: "Enable field-level encryption.",
			Rule: &catalog.RuleSpec{
				Type: catalog.RuleFieldPresence,
				FieldPresence: &catalog.FieldPresenceSpec{
					NamePattern:       "(?i)(ssn|national_id)",
					RequiredAttribute: catalog.AttributeEncrypted,
				},
			},
		},
	})

	c := baseContract() // ssn field present, not encrypted
	violations := NewEvaluator(nil).Evaluate(c, snap, []string{"sd-001"})

	if len(violations) != 1 {
		t.Fatalf("Evaluate() returned %d violations, want 1", len(violations))
	}
	v := violations[0]
	if v.Severity != catalog.SeverityCritical {
		t.Errorf("severity = %q, want critical", v.Severity)
	}
	if !reflect.DeepEqual(v.AffectedFields, []string{"ssn"}) {
		t.Errorf("affected fields = %v, want [ssn]", v.AffectedFields)
	}
	if v.Source != validation.SourceRule {
		t.Errorf("source = %q, want rule", v.Source)
	}

	// Encrypting the field clears the violation
	c2 := baseContract()
	c2.Fields[1].Encrypted = true
	if got := NewEvaluator(nil).Evaluate(c2, snap, []string{"sd-001"}); len(got) != 0 {
		t.Errorf("Evaluate() on encrypted field returned %d violations, want 0", len(got))
	}
}

func TestEvaluate_Conditional(t *testing.T) {
	snap := testSnapshot(t, []*catalog.PolicyDefinition{
		{
			ID:       "sd-010",
			Category: catalog.CategorySensitiveData,
			Severity: catalog.SeverityHigh,
			Rule: &catalog.RuleSpec{
				Type: catalog.RuleConditional,
				Conditional: &catalog.ConditionalSpec{
					If:   catalog.Predicate{Kind: catalog.PredicateContainsPII},
					Then: catalog.Predicate{Kind: catalog.PredicateRetentionDeclared},
				},
			},
		},
	})

	// PII with retention declared: no violation
	c := baseContract()
	if got := NewEvaluator(nil).Evaluate(c, snap, []string{"sd-010"}); len(got) != 0 {
		t.Errorf("satisfied consequent produced %d violations", len(got))
	}

	// PII without retention: one violation
	c.RetentionDays = 0
	got := NewEvaluator(nil).Evaluate(c, snap, []string{"sd-010"})
	if len(got) != 1 {
		t.Fatalf("missing consequent produced %d violations, want 1", len(got))
	}

	// No PII: antecedent false, no violation
	c.ContainsPII = false
	if got := NewEvaluator(nil).Evaluate(c, snap, []string{"sd-010"}); len(got) != 0 {
		t.Errorf("false antecedent produced %d violations", len(got))
	}
}

func TestEvaluate_ValueConstraint(t *testing.T) {
	snap := testSnapshot(t, []*catalog.PolicyDefinition{
		{
			ID:       "q-020",
			Category: catalog.CategoryQuality,
			Severity: catalog.SeverityMedium,
			Rule: &catalog.RuleSpec{
				Type: catalog.RuleValueConstraint,
				ValueConstraint: &catalog.ValueConstraintSpec{
					Attribute: catalog.ConstraintRetentionDays,
					Min:       intPtr(180),
				},
			},
		},
		{
			ID:       "s-021",
			Category: catalog.CategorySchema,
			Severity: catalog.SeverityLow,
			Rule: &catalog.RuleSpec{
				Type: catalog.RuleValueConstraint,
				ValueConstraint: &catalog.ValueConstraintSpec{
					Attribute:     catalog.ConstraintFieldType,
					AllowedValues: []string{"string", "int", "decimal", "enum"},
				},
			},
		},
	})

	c := baseContract()
	c.Fields = append(c.Fields, contract.Field{Name: "blob", Type: "object", Description: "Raw blob"})

	violations := NewEvaluator(nil).Evaluate(c, snap, []string{"q-020", "s-021"})
	if len(violations) != 2 {
		t.Fatalf("Evaluate() returned %d violations, want 2", len(violations))
	}

	// Ascending policy id order
	if violations[0].PolicyID != "q-020" || violations[1].PolicyID != "s-021" {
		t.Errorf("order = [%s %s], want [q-020 s-021]",
			violations[0].PolicyID, violations[1].PolicyID)
	}
	if !reflect.DeepEqual(violations[1].AffectedFields, []string{"blob"}) {
		t.Errorf("field-type violation fields = %v, want [blob]", violations[1].AffectedFields)
	}
}

func TestEvaluate_Structural(t *testing.T) {
	snap := testSnapshot(t, []*catalog.PolicyDefinition{
		{
			ID:       "q-030",
			Category: catalog.CategoryQuality,
			Severity: catalog.SeverityMedium,
			Rule: &catalog.RuleSpec{
				Type:       catalog.RuleStructural,
				Structural: &catalog.StructuralSpec{Check: catalog.CheckAllFieldsDescribed},
			},
		},
		{
			ID:       "s-031",
			Category: catalog.CategorySchema,
			Severity: catalog.SeverityHigh,
			Rule: &catalog.RuleSpec{
				Type:       catalog.RuleStructural,
				Structural: &catalog.StructuralSpec{Check: catalog.CheckEnumFieldsListValues},
			},
		},
		{
			ID:       "s-032",
			Category: catalog.CategorySchema,
			Severity: catalog.SeverityHigh,
			Rule: &catalog.RuleSpec{
				Type:       catalog.RuleStructural,
				Structural: &catalog.StructuralSpec{Check: catalog.CheckUniqueFieldNames},
			},
		},
	})

	c := baseContract()
	c.Fields = append(c.Fields,
		contract.Field{Name: "status", Type: "enum"}, // no description, no values
		contract.Field{Name: "ssn", Type: "string", Description: "duplicate"},
	)

	violations := NewEvaluator(nil).Evaluate(c, snap, []string{"q-030", "s-031", "s-032"})

	byPolicy := make(map[string]int)
	for _, v := range violations {
		byPolicy[v.PolicyID]++
	}
	if byPolicy["q-030"] != 1 {
		t.Errorf("all-fields-described violations = %d, want 1", byPolicy["q-030"])
	}
	if byPolicy["s-031"] != 1 {
		t.Errorf("enum-fields-list-values violations = %d, want 1", byPolicy["s-031"])
	}
	if byPolicy["s-032"] != 1 {
		t.Errorf("unique-field-names violations = %d, want 1", byPolicy["s-032"])
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	defs := []*catalog.PolicyDefinition{
		{
			ID:       "q-030",
			Category: catalog.CategoryQuality,
			Severity: catalog.SeverityMedium,
			Rule: &catalog.RuleSpec{
				Type:       catalog.RuleStructural,
				Structural: &catalog.StructuralSpec{Check: catalog.CheckAllFieldsDescribed},
			},
		},
		{
			ID:       "sd-010",
			Category: catalog.CategorySensitiveData,
			Severity: catalog.SeverityHigh,
			Rule: &catalog.RuleSpec{
				Type: catalog.RuleConditional,
				Conditional: &catalog.ConditionalSpec{
					If:   catalog.Predicate{Kind: catalog.PredicateContainsPII},
					Then: catalog.Predicate{Kind: catalog.PredicateRetentionDeclared},
				},
			},
		},
	}
	snap := testSnapshot(t, defs)

	c := baseContract()
	c.RetentionDays = 0
	c.Fields[2].Description = ""

	eval := NewEvaluator(nil)
	first := eval.Evaluate(c, snap, []string{"sd-010", "q-030"})
	for i := 0; i < 10; i++ {
		// Shuffled id order must not change the output
		got := eval.Evaluate(c, snap, []string{"q-030", "sd-010"})
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differed from first run:\n got %+v\nwant %+v", i, got, first)
		}
	}
}

func TestEvaluate_IgnoresSemanticAndUnknownIDs(t *testing.T) {
	snap := testSnapshot(t, []*catalog.PolicyDefinition{
		{
			ID:                  "sem-001",
			Category:            catalog.CategorySemantic,
			Severity:            catalog.SeverityHigh,
			PromptTemplate:      "Check {{name}}.",
			ConfidenceThreshold: 70,
		},
	})

	got := NewEvaluator(nil).Evaluate(baseContract(), snap, []string{"sem-001", "nope"})
	if len(got) != 0 {
		t.Errorf("Evaluate() returned %d violations for semantic/unknown ids", len(got))
	}
}
