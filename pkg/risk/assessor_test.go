package risk

import (
	"testing"

	"mercator-hq/gatekeeper/pkg/contract"
)

func lowRiskContract() *contract.Contract {
	return &contract.Contract{
		Name:           "public-holidays",
		Classification: contract.ClassificationPublic,
		RetentionDays:  365,
		Fields: []contract.Field{
			{Name: "date", Type: "date", Description: "Holiday date"},
			{Name: "name", Type: "string", Description: "Holiday name"},
		},
	}
}

func TestAssess_LowRisk(t *testing.T) {
	a := NewAssessor(Weights{}, Bands{})
	got := a.Assess(lowRiskContract())

	if got.Score != 0 {
		t.Errorf("score = %v, want 0", got.Score)
	}
	if got.Level != LevelLow {
		t.Errorf("level = %q, want LOW", got.Level)
	}
	if len(got.Factors) != 0 {
		t.Errorf("factors = %v, want none", got.Factors)
	}
}

func TestAssess_CriticalScenario(t *testing.T) {
	// PII + restricted + 3 tags + retention undeclared must score >= 15
	c := lowRiskContract()
	c.ContainsPII = true
	c.Classification = contract.ClassificationRestricted
	c.ComplianceTags = []string{"gdpr", "hipaa", "sox"}
	c.RetentionDays = 0

	got := NewAssessor(Weights{}, Bands{}).Assess(c)

	if got.Score < 15 {
		t.Errorf("score = %v, want >= 15", got.Score)
	}
	if got.Level != LevelCritical {
		t.Errorf("level = %q, want CRITICAL", got.Level)
	}
	if len(got.Factors) != 4 {
		t.Errorf("factors = %d, want 4: %v", len(got.Factors), got.Factors)
	}
}

func TestBands_BoundaryValues(t *testing.T) {
	bands := DefaultBands()

	tests := []struct {
		score float64
		want  Level
	}{
		{0, LevelLow},
		{4.999, LevelLow},
		{5, LevelMedium},
		{9.999, LevelMedium},
		{10, LevelHigh},
		{14.999, LevelHigh},
		{15, LevelCritical},
		{100, LevelCritical},
	}

	for _, tt := range tests {
		if got := bands.Level(tt.score); got != tt.want {
			t.Errorf("Level(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestBands_Monotonic(t *testing.T) {
	bands := DefaultBands()
	order := map[Level]int{LevelLow: 0, LevelMedium: 1, LevelHigh: 2, LevelCritical: 3}

	prev := LevelLow
	for score := 0.0; score <= 20; score += 0.25 {
		got := bands.Level(score)
		if order[got] < order[prev] {
			t.Fatalf("Level(%v) = %q regressed below %q", score, got, prev)
		}
		prev = got
	}
}

func TestBands_Validate(t *testing.T) {
	if err := DefaultBands().Validate(); err != nil {
		t.Errorf("DefaultBands().Validate() = %v", err)
	}
	bad := Bands{Medium: 10, High: 5, Critical: 15}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted non-increasing bands")
	}
}

func TestAssess_UndocumentedFieldsThreshold(t *testing.T) {
	c := lowRiskContract()
	c.Fields = []contract.Field{
		{Name: "a", Type: "string"},
		{Name: "b", Type: "string"},
		{Name: "c", Type: "string"},
	}

	got := NewAssessor(Weights{}, Bands{}).Assess(c)
	// 3 undescribed fields exceed the default threshold of 2
	if got.Score != DefaultWeights().UndocumentedFields {
		t.Errorf("score = %v, want %v", got.Score, DefaultWeights().UndocumentedFields)
	}

	// At the threshold, the weight does not apply
	c.Fields = c.Fields[:2]
	got = NewAssessor(Weights{}, Bands{}).Assess(c)
	if got.Score != 0 {
		t.Errorf("score at threshold = %v, want 0", got.Score)
	}
}

func TestAssess_Pure(t *testing.T) {
	c := lowRiskContract()
	c.ContainsPII = true
	a := NewAssessor(Weights{}, Bands{})

	first := a.Assess(c)
	for i := 0; i < 5; i++ {
		got := a.Assess(c)
		if got.Score != first.Score || got.Level != first.Level {
			t.Fatalf("Assess() is not pure: run %d got %+v, want %+v", i, got, first)
		}
	}
}
