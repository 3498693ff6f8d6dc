package contract

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// Classification represents the declared sensitivity level of a dataset.
type Classification string

const (
	ClassificationPublic       Classification = "public"
	ClassificationInternal     Classification = "internal"
	ClassificationConfidential Classification = "confidential"
	ClassificationRestricted   Classification = "restricted"
)

// Valid returns true if the classification is one of the known levels.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationPublic, ClassificationInternal,
		ClassificationConfidential, ClassificationRestricted:
		return true
	}
	return false
}

// Field describes a single column or attribute in a dataset schema.
type Field struct {
	// Name is the field name as declared in the schema.
	Name string `yaml:"name" json:"name"`

	// Type is the declared data type (e.g., "string", "int", "enum").
	Type string `yaml:"type" json:"type"`

	// Nullable indicates whether the field may contain nulls.
	Nullable bool `yaml:"nullable" json:"nullable"`

	// PII marks the field as containing personally identifiable information.
	PII bool `yaml:"pii" json:"pii"`

	// Encrypted indicates the field is stored with field-level encryption.
	Encrypted bool `yaml:"encrypted" json:"encrypted"`

	// Description is the human-readable documentation for the field.
	Description string `yaml:"description" json:"description"`

	// AllowedValues lists the permitted values for enumerated fields.
	AllowedValues []string `yaml:"allowed_values,omitempty" json:"allowed_values,omitempty"`
}

// Contract is the versioned description of a dataset's schema and governance
// metadata being checked for compliance. It is an immutable input owned by
// the caller; the engine never mutates it.
type Contract struct {
	// Name identifies the dataset described by this contract.
	Name string `yaml:"name" json:"name"`

	// Classification is the declared sensitivity level.
	Classification Classification `yaml:"classification" json:"classification"`

	// ContainsPII declares whether the dataset contains personal data.
	ContainsPII bool `yaml:"contains_pii" json:"contains_pii"`

	// ComplianceTags lists regulatory regimes the dataset falls under
	// (e.g., "gdpr", "hipaa").
	ComplianceTags []string `yaml:"compliance_tags,omitempty" json:"compliance_tags,omitempty"`

	// RetentionDays is the declared retention period in days.
	// Zero means no retention period has been declared.
	RetentionDays int `yaml:"retention_days" json:"retention_days"`

	// Fields is the ordered field-level schema.
	Fields []Field `yaml:"fields" json:"fields"`

	// UseCases lists the declared intended uses for the dataset.
	UseCases []string `yaml:"use_cases,omitempty" json:"use_cases,omitempty"`
}

// Error represents a structurally invalid contract. No meaningful validation
// can proceed when this is returned; it is reported to the caller rather
// than converted into violations.
type Error struct {
	// Field is the contract section that is invalid.
	Field string

	// Message describes what is invalid.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("invalid contract: %s: %s", e.Field, e.Message)
}

// Validate checks that the contract has the sections required for any
// evaluation to proceed. Governance problems (missing descriptions, bad
// retention values) are the policy engine's job, not Validate's.
func (c *Contract) Validate() error {
	if c.Name == "" {
		return &Error{Field: "name", Message: "contract name is required"}
	}
	if !c.Classification.Valid() {
		return &Error{
			Field:   "classification",
			Message: fmt.Sprintf("unknown classification %q", c.Classification),
		}
	}
	if len(c.Fields) == 0 {
		return &Error{Field: "fields", Message: "contract must declare at least one field"}
	}
	if c.RetentionDays < 0 {
		return &Error{
			Field:   "retention_days",
			Message: fmt.Sprintf("retention days must be >= 0, got %d", c.RetentionDays),
		}
	}
	for i, f := range c.Fields {
		if f.Name == "" {
			return &Error{
				Field:   "fields",
				Message: fmt.Sprintf("field at index %d has no name", i),
			}
		}
	}
	return nil
}

// HasTag returns true if the contract declares the given compliance tag.
func (c *Contract) HasTag(tag string) bool {
	for _, t := range c.ComplianceTags {
		if t == tag {
			return true
		}
	}
	return false
}

// FieldByName returns the field with the given name, if present.
func (c *Contract) FieldByName(name string) (*Field, bool) {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i], true
		}
	}
	return nil, false
}

// Digest returns a stable content hash of the contract. Two contracts with
// identical governance-relevant content produce identical digests regardless
// of tag ordering, so the digest is usable as a cache key component.
func (c *Contract) Digest() string {
	// Copy with sorted tags and use cases for a canonical serialization
	canonical := *c
	canonical.ComplianceTags = append([]string(nil), c.ComplianceTags...)
	sort.Strings(canonical.ComplianceTags)
	canonical.UseCases = append([]string(nil), c.UseCases...)
	sort.Strings(canonical.UseCases)

	data, err := json.Marshal(&canonical)
	if err != nil {
		// Marshaling a plain struct of strings/bools/ints cannot fail;
		// fall back to the name so the digest is still usable.
		return fmt.Sprintf("%x", sha256.Sum256([]byte(c.Name)))
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
