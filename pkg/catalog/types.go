package catalog

import (
	"fmt"
	"regexp"
)

// Severity represents how serious a policy violation is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Valid returns true if the severity is one of the four known levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Rank returns the severity's sort rank. Lower rank sorts first
// (critical=0 ... low=3), which gives the severity-descending order
// merged results are reported in.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Category classifies what aspect of governance a policy covers.
type Category string

const (
	CategorySensitiveData Category = "sensitive-data"
	CategoryQuality       Category = "quality"
	CategorySchema        Category = "schema"
	CategorySemantic      Category = "semantic"
)

// Valid returns true if the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategorySensitiveData, CategoryQuality, CategorySchema, CategorySemantic:
		return true
	}
	return false
}

// RuleType is the tag that selects which rule-spec variant a policy carries.
type RuleType string

const (
	RuleFieldPresence   RuleType = "field-presence"
	RuleConditional     RuleType = "conditional-requirement"
	RuleValueConstraint RuleType = "value-constraint"
	RuleStructural      RuleType = "structural-consistency"
)

// Valid returns true if the rule type is one of the closed set of variants.
func (t RuleType) Valid() bool {
	switch t {
	case RuleFieldPresence, RuleConditional, RuleValueConstraint, RuleStructural:
		return true
	}
	return false
}

// GovernanceAttribute names a field-level governance attribute a
// field-presence rule can require.
type GovernanceAttribute string

const (
	AttributeEncrypted   GovernanceAttribute = "encrypted"
	AttributePIIFlag     GovernanceAttribute = "pii"
	AttributeDescription GovernanceAttribute = "description"
)

// Valid returns true if the attribute is one of the known values.
func (a GovernanceAttribute) Valid() bool {
	switch a {
	case AttributeEncrypted, AttributePIIFlag, AttributeDescription:
		return true
	}
	return false
}

// PredicateKind identifies a contract-level predicate used by
// conditional-requirement rules.
type PredicateKind string

const (
	PredicateContainsPII       PredicateKind = "contains-pii"
	PredicateRetentionDeclared PredicateKind = "retention-declared"
	PredicateClassificationIs  PredicateKind = "classification-is"
	PredicateHasTag            PredicateKind = "has-tag"
	PredicateHasUseCases       PredicateKind = "has-use-cases"
)

// Valid returns true if the predicate kind is one of the known values.
func (k PredicateKind) Valid() bool {
	switch k {
	case PredicateContainsPII, PredicateRetentionDeclared,
		PredicateClassificationIs, PredicateHasTag, PredicateHasUseCases:
		return true
	}
	return false
}

// Predicate is a single contract-level condition with strongly-typed
// parameters. Value carries the argument for parameterized kinds
// (classification-is, has-tag) and is empty otherwise.
type Predicate struct {
	Kind  PredicateKind `yaml:"kind"`
	Value string        `yaml:"value,omitempty"`
}

// Validate checks that the predicate kind is known and that parameterized
// kinds carry their argument.
func (p *Predicate) Validate() error {
	if !p.Kind.Valid() {
		return fmt.Errorf("unknown predicate kind %q", p.Kind)
	}
	switch p.Kind {
	case PredicateClassificationIs, PredicateHasTag:
		if p.Value == "" {
			return fmt.Errorf("predicate %q requires a value", p.Kind)
		}
	default:
		if p.Value != "" {
			return fmt.Errorf("predicate %q does not take a value", p.Kind)
		}
	}
	return nil
}

// FieldPresenceSpec requires every field matching a name or description
// pattern to carry a governance attribute. One violation is emitted per
// offending field.
type FieldPresenceSpec struct {
	// NamePattern is a regular expression matched against field names.
	NamePattern string `yaml:"name_pattern,omitempty"`

	// DescriptionPattern is a regular expression matched against field
	// descriptions. A field is considered sensitive if either pattern matches.
	DescriptionPattern string `yaml:"description_pattern,omitempty"`

	// RequiredAttribute is the governance attribute matching fields must set.
	RequiredAttribute GovernanceAttribute `yaml:"required_attribute"`
}

// Validate checks the spec's patterns compile and the attribute is known.
func (s *FieldPresenceSpec) Validate() error {
	if s.NamePattern == "" && s.DescriptionPattern == "" {
		return fmt.Errorf("field-presence rule requires name_pattern or description_pattern")
	}
	if s.NamePattern != "" {
		if _, err := regexp.Compile(s.NamePattern); err != nil {
			return fmt.Errorf("invalid name_pattern: %w", err)
		}
	}
	if s.DescriptionPattern != "" {
		if _, err := regexp.Compile(s.DescriptionPattern); err != nil {
			return fmt.Errorf("invalid description_pattern: %w", err)
		}
	}
	if !s.RequiredAttribute.Valid() {
		return fmt.Errorf("unknown required_attribute %q", s.RequiredAttribute)
	}
	return nil
}

// ConditionalSpec expresses "if the contract satisfies If, it must also
// satisfy Then". One violation is emitted when the antecedent holds and the
// consequent does not.
type ConditionalSpec struct {
	If   Predicate `yaml:"if"`
	Then Predicate `yaml:"then"`
}

// Validate checks both predicates.
func (s *ConditionalSpec) Validate() error {
	if err := s.If.Validate(); err != nil {
		return fmt.Errorf("if: %w", err)
	}
	if err := s.Then.Validate(); err != nil {
		return fmt.Errorf("then: %w", err)
	}
	return nil
}

// ConstraintAttribute names a contract attribute a value-constraint rule
// can check.
type ConstraintAttribute string

const (
	ConstraintRetentionDays  ConstraintAttribute = "retention-days"
	ConstraintClassification ConstraintAttribute = "classification"
	ConstraintFieldType      ConstraintAttribute = "field-type"
)

// Valid returns true if the attribute is one of the known values.
func (a ConstraintAttribute) Valid() bool {
	switch a {
	case ConstraintRetentionDays, ConstraintClassification, ConstraintFieldType:
		return true
	}
	return false
}

// ValueConstraintSpec requires an attribute to be a member of an allowed
// set or to satisfy a numeric lower bound. For field-level attributes one
// violation is emitted per offending field.
type ValueConstraintSpec struct {
	// Attribute is the contract attribute being constrained.
	Attribute ConstraintAttribute `yaml:"attribute"`

	// AllowedValues is the membership constraint (used for classification
	// and field-type).
	AllowedValues []string `yaml:"allowed_values,omitempty"`

	// Min is the numeric lower bound (used for retention-days).
	Min *int `yaml:"min,omitempty"`
}

// Validate checks the attribute is known and exactly one constraint form
// is given.
func (s *ValueConstraintSpec) Validate() error {
	if !s.Attribute.Valid() {
		return fmt.Errorf("unknown constraint attribute %q", s.Attribute)
	}
	hasSet := len(s.AllowedValues) > 0
	hasMin := s.Min != nil
	if hasSet == hasMin {
		return fmt.Errorf("value-constraint rule requires exactly one of allowed_values or min")
	}
	if hasMin && s.Attribute != ConstraintRetentionDays {
		return fmt.Errorf("min bound is only valid for retention-days, got %q", s.Attribute)
	}
	return nil
}

// StructuralCheck names a cross-field consistency check.
type StructuralCheck string

const (
	CheckAllFieldsDescribed   StructuralCheck = "all-fields-described"
	CheckEnumFieldsListValues StructuralCheck = "enum-fields-list-values"
	CheckUniqueFieldNames     StructuralCheck = "unique-field-names"
	CheckTypedFields          StructuralCheck = "typed-fields"
)

// Valid returns true if the check is one of the known values.
func (c StructuralCheck) Valid() bool {
	switch c {
	case CheckAllFieldsDescribed, CheckEnumFieldsListValues,
		CheckUniqueFieldNames, CheckTypedFields:
		return true
	}
	return false
}

// StructuralSpec runs a named cross-field consistency check over the whole
// schema. One violation is emitted per offending field.
type StructuralSpec struct {
	Check StructuralCheck `yaml:"check"`
}

// Validate checks the named check is known.
func (s *StructuralSpec) Validate() error {
	if !s.Check.Valid() {
		return fmt.Errorf("unknown structural check %q", s.Check)
	}
	return nil
}

// RuleSpec is the closed tagged variant describing how a rule-based policy
// is evaluated. Type selects the variant; exactly one of the variant fields
// must be populated and it must match the tag.
type RuleSpec struct {
	Type RuleType `yaml:"type"`

	FieldPresence   *FieldPresenceSpec   `yaml:"field_presence,omitempty"`
	Conditional     *ConditionalSpec     `yaml:"conditional,omitempty"`
	ValueConstraint *ValueConstraintSpec `yaml:"value_constraint,omitempty"`
	Structural      *StructuralSpec      `yaml:"structural,omitempty"`
}

// Validate checks the tag is known, the matching variant is populated, and
// no other variant is.
func (r *RuleSpec) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("unknown rule type %q", r.Type)
	}

	populated := 0
	if r.FieldPresence != nil {
		populated++
	}
	if r.Conditional != nil {
		populated++
	}
	if r.ValueConstraint != nil {
		populated++
	}
	if r.Structural != nil {
		populated++
	}
	if populated != 1 {
		return fmt.Errorf("rule spec must populate exactly one variant, got %d", populated)
	}

	switch r.Type {
	case RuleFieldPresence:
		if r.FieldPresence == nil {
			return fmt.Errorf("rule type %q requires field_presence", r.Type)
		}
		return r.FieldPresence.Validate()
	case RuleConditional:
		if r.Conditional == nil {
			return fmt.Errorf("rule type %q requires conditional", r.Type)
		}
		return r.Conditional.Validate()
	case RuleValueConstraint:
		if r.ValueConstraint == nil {
			return fmt.Errorf("rule type %q requires value_constraint", r.Type)
		}
		return r.ValueConstraint.Validate()
	case RuleStructural:
		if r.Structural == nil {
			return fmt.Errorf("rule type %q requires structural", r.Type)
		}
		return r.Structural.Validate()
	}
	return nil
}

// PolicyDefinition is one governance policy in the catalog, either
// rule-based (Rule is set) or semantic (PromptTemplate is set).
type PolicyDefinition struct {
	// ID is the unique, stable policy identifier within a catalog snapshot.
	ID string `yaml:"id"`

	// Category classifies the governance concern.
	Category Category `yaml:"category"`

	// Severity is attached to every violation this policy produces.
	Severity Severity `yaml:"severity"`

	// Rule is the deterministic evaluation spec for rule-based policies.
	Rule *RuleSpec `yaml:"rule,omitempty"`

	// Remediation is human guidance shown alongside violations.
	Remediation string `yaml:"remediation"`

	// PromptTemplate is the prompt skeleton for semantic policies.
	// Placeholders like {{name}} and {{fields}} are substituted from the
	// contract at evaluation time.
	PromptTemplate string `yaml:"prompt_template,omitempty"`

	// ConfidenceThreshold (0-100) is the minimum confidence a semantic
	// verdict must report to be trusted; lower-confidence verdicts are
	// recorded as skips.
	ConfidenceThreshold float64 `yaml:"confidence_threshold,omitempty"`

	// AlwaysRun marks a semantic policy as part of the BALANCED-mode subset.
	AlwaysRun bool `yaml:"always_run,omitempty"`
}

// Semantic returns true if this policy is evaluated by the reasoning
// backend rather than the deterministic rule interpreter.
func (p *PolicyDefinition) Semantic() bool {
	return p.Category == CategorySemantic
}

// Validate checks the definition is structurally sound.
// Catalog-level checks (duplicate ids) live in the loader.
func (p *PolicyDefinition) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("policy id is required")
	}
	if !p.Category.Valid() {
		return fmt.Errorf("policy %q: unknown category %q", p.ID, p.Category)
	}
	if !p.Severity.Valid() {
		return fmt.Errorf("policy %q: unknown severity %q", p.ID, p.Severity)
	}

	if p.Semantic() {
		if p.PromptTemplate == "" {
			return fmt.Errorf("policy %q: semantic policy requires prompt_template", p.ID)
		}
		if p.Rule != nil {
			return fmt.Errorf("policy %q: semantic policy cannot carry a rule spec", p.ID)
		}
		if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 100 {
			return fmt.Errorf("policy %q: confidence_threshold must be in [0,100], got %v",
				p.ID, p.ConfidenceThreshold)
		}
		return nil
	}

	if p.Rule == nil {
		return fmt.Errorf("policy %q: rule-based policy requires a rule spec", p.ID)
	}
	if p.PromptTemplate != "" {
		return fmt.Errorf("policy %q: rule-based policy cannot carry a prompt template", p.ID)
	}
	if err := p.Rule.Validate(); err != nil {
		return fmt.Errorf("policy %q: %w", p.ID, err)
	}
	return nil
}
