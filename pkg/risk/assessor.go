package risk

import (
	"fmt"

	"mercator-hq/gatekeeper/pkg/contract"
)

// Level is a coarse classification of how much scrutiny a contract warrants.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Assessment is the derived risk profile of a contract. It is computed per
// call and never stored.
type Assessment struct {
	// Score is the weighted sum of contributing factors.
	Score float64 `json:"score"`

	// Level is the band the score falls into.
	Level Level `json:"level"`

	// Factors lists the contributing reasons in the order they were
	// applied, for explainability.
	Factors []string `json:"factors"`
}

// Weights are the per-factor contributions to the risk score. Each factor
// adds its weight when present. The exact values are deployment tunables,
// not engine constants.
type Weights struct {
	// PII is added when the contract declares it contains personal data.
	PII float64 `yaml:"pii"`

	// RestrictedClassification is added for restricted contracts.
	RestrictedClassification float64 `yaml:"restricted_classification"`

	// ConfidentialClassification is added for confidential contracts.
	ConfidentialClassification float64 `yaml:"confidential_classification"`

	// PerComplianceTag is added once per declared compliance tag.
	PerComplianceTag float64 `yaml:"per_compliance_tag"`

	// UndocumentedFields is added when the number of fields lacking a
	// description exceeds UndocumentedFieldThreshold.
	UndocumentedFields float64 `yaml:"undocumented_fields"`

	// UndocumentedFieldThreshold is the count of undescribed fields above
	// which the UndocumentedFields weight applies.
	UndocumentedFieldThreshold int `yaml:"undocumented_field_threshold"`

	// MissingRetention is added when no retention period is declared.
	MissingRetention float64 `yaml:"missing_retention"`
}

// DefaultWeights returns the default factor weights.
func DefaultWeights() Weights {
	return Weights{
		PII:                        5,
		RestrictedClassification:   4,
		ConfidentialClassification: 3,
		PerComplianceTag:           2,
		UndocumentedFields:         2,
		UndocumentedFieldThreshold: 2,
		MissingRetention:           2,
	}
}

// Bands map a score to a level. A score equal to a boundary falls into the
// upper band, so the mapping is monotonic non-decreasing.
type Bands struct {
	// Medium is the lowest score classified MEDIUM.
	Medium float64 `yaml:"medium"`

	// High is the lowest score classified HIGH.
	High float64 `yaml:"high"`

	// Critical is the lowest score classified CRITICAL.
	Critical float64 `yaml:"critical"`
}

// DefaultBands returns the default band thresholds.
func DefaultBands() Bands {
	return Bands{Medium: 5, High: 10, Critical: 15}
}

// Validate checks the bands are strictly increasing.
func (b Bands) Validate() error {
	if b.Medium <= 0 || b.High <= b.Medium || b.Critical <= b.High {
		return fmt.Errorf("risk bands must be strictly increasing, got medium=%v high=%v critical=%v",
			b.Medium, b.High, b.Critical)
	}
	return nil
}

// Level maps a score to its band.
func (b Bands) Level(score float64) Level {
	switch {
	case score >= b.Critical:
		return LevelCritical
	case score >= b.High:
		return LevelHigh
	case score >= b.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Assessor computes a contract's risk profile as a weighted sum of
// independent factors. Assess is a pure function of the contract.
type Assessor struct {
	weights Weights
	bands   Bands
}

// NewAssessor creates an assessor with the given tunables. Zero-value
// weights or bands select the defaults.
func NewAssessor(weights Weights, bands Bands) *Assessor {
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	if bands == (Bands{}) {
		bands = DefaultBands()
	}
	return &Assessor{weights: weights, bands: bands}
}

// Assess scores the contract and maps the score to a level. Factors are
// appended in a fixed order so the explanation is reproducible.
func (a *Assessor) Assess(c *contract.Contract) *Assessment {
	assessment := &Assessment{}

	if c.ContainsPII {
		a.add(assessment, a.weights.PII, "contract declares personal data")
	}

	switch c.Classification {
	case contract.ClassificationRestricted:
		a.add(assessment, a.weights.RestrictedClassification, "classification is restricted")
	case contract.ClassificationConfidential:
		a.add(assessment, a.weights.ConfidentialClassification, "classification is confidential")
	}

	if n := len(c.ComplianceTags); n > 0 {
		a.add(assessment, a.weights.PerComplianceTag*float64(n),
			fmt.Sprintf("%d compliance tag(s) declared", n))
	}

	undocumented := 0
	for _, f := range c.Fields {
		if f.Description == "" {
			undocumented++
		}
	}
	if undocumented > a.weights.UndocumentedFieldThreshold {
		a.add(assessment, a.weights.UndocumentedFields,
			fmt.Sprintf("%d fields lack descriptions", undocumented))
	}

	if c.RetentionDays == 0 {
		a.add(assessment, a.weights.MissingRetention, "no retention period declared")
	}

	assessment.Level = a.bands.Level(assessment.Score)
	return assessment
}

// add applies one factor's weight and records its reason.
func (a *Assessor) add(assessment *Assessment, weight float64, reason string) {
	if weight <= 0 {
		return
	}
	assessment.Score += weight
	assessment.Factors = append(assessment.Factors,
		fmt.Sprintf("%s (+%g)", reason, weight))
}
