package rules

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"

	"mercator-hq/gatekeeper/pkg/catalog"
	"mercator-hq/gatekeeper/pkg/contract"
	"mercator-hq/gatekeeper/pkg/validation"
)

// Evaluator evaluates rule-based policies against a contract. It is a pure
// function of (contract, snapshot): identical inputs produce identically
// ordered output.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates a rule evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		logger: logger.With("component", "rules.evaluator"),
	}
}

// Evaluate runs the named rule-based policies against the contract and
// returns every violation found. Policies run in ascending id order and
// never short-circuit: a single call produces the complete report.
//
// A panic or unexpected contract shape inside one policy is converted into
// a single evaluation-error violation for that policy; the remaining
// policies still run. Unknown ids and semantic ids are ignored.
func (e *Evaluator) Evaluate(c *contract.Contract, snap *catalog.Snapshot, policyIDs []string) []validation.Violation {
	ids := make([]string, len(policyIDs))
	copy(ids, policyIDs)
	sort.Strings(ids)

	var violations []validation.Violation
	for _, id := range ids {
		def, ok := snap.Get(id)
		if !ok || def.Semantic() {
			continue
		}
		violations = append(violations, e.evaluatePolicy(c, def)...)
	}
	return violations
}

// evaluatePolicy evaluates one policy, recovering from panics so one
// malformed rule cannot abort the rest of the report.
func (e *Evaluator) evaluatePolicy(c *contract.Contract, def *catalog.PolicyDefinition) (violations []validation.Violation) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule evaluation panicked",
				"policy_id", def.ID,
				"panic", r,
			)
			violations = []validation.Violation{evaluationErrorViolation(def, fmt.Sprintf("%v", r))}
		}
	}()

	spec := def.Rule
	switch spec.Type {
	case catalog.RuleFieldPresence:
		return evalFieldPresence(c, def, spec.FieldPresence)
	case catalog.RuleConditional:
		return evalConditional(c, def, spec.Conditional)
	case catalog.RuleValueConstraint:
		return evalValueConstraint(c, def, spec.ValueConstraint)
	case catalog.RuleStructural:
		return evalStructural(c, def, spec.Structural)
	default:
		// Unknown tags are rejected at load time; reaching here means the
		// snapshot invariant was broken somewhere upstream.
		return []validation.Violation{evaluationErrorViolation(def,
			fmt.Sprintf("unknown rule type %q", spec.Type))}
	}
}

// evaluationErrorViolation wraps an evaluator-internal failure as a
// violation so it surfaces in the report instead of aborting the run.
func evaluationErrorViolation(def *catalog.PolicyDefinition, detail string) validation.Violation {
	return validation.Violation{
		PolicyID:    def.ID,
		Severity:    def.Severity,
		Message:     fmt.Sprintf("policy could not be evaluated: %s", detail),
		Remediation: def.Remediation,
		Source:      validation.SourceRule,
	}
}

// newViolation builds a violation for the given policy.
func newViolation(def *catalog.PolicyDefinition, message string, fields ...string) validation.Violation {
	return validation.Violation{
		PolicyID:       def.ID,
		Severity:       def.Severity,
		Message:        message,
		AffectedFields: fields,
		Remediation:    def.Remediation,
		Source:         validation.SourceRule,
	}
}

// evalFieldPresence emits one violation per sensitive field missing the
// required governance attribute.
func evalFieldPresence(c *contract.Contract, def *catalog.PolicyDefinition, spec *catalog.FieldPresenceSpec) []validation.Violation {
	var nameRe, descRe *regexp.Regexp
	if spec.NamePattern != "" {
		nameRe = regexp.MustCompile(spec.NamePattern)
	}
	if spec.DescriptionPattern != "" {
		descRe = regexp.MustCompile(spec.DescriptionPattern)
	}

	var violations []validation.Violation
	for _, f := range c.Fields {
		matched := (nameRe != nil && nameRe.MatchString(f.Name)) ||
			(descRe != nil && descRe.MatchString(f.Description))
		if !matched {
			continue
		}
		if hasAttribute(&f, spec.RequiredAttribute) {
			continue
		}
		violations = append(violations, newViolation(def,
			fmt.Sprintf("sensitive field %q must set the %s attribute", f.Name, spec.RequiredAttribute),
			f.Name))
	}
	return violations
}

// hasAttribute reports whether the field carries the governance attribute.
func hasAttribute(f *contract.Field, attr catalog.GovernanceAttribute) bool {
	switch attr {
	case catalog.AttributeEncrypted:
		return f.Encrypted
	case catalog.AttributePIIFlag:
		return f.PII
	case catalog.AttributeDescription:
		return f.Description != ""
	default:
		return false
	}
}

// evalConditional emits one violation when the antecedent holds and the
// consequent does not.
func evalConditional(c *contract.Contract, def *catalog.PolicyDefinition, spec *catalog.ConditionalSpec) []validation.Violation {
	if !evalPredicate(c, &spec.If) {
		return nil
	}
	if evalPredicate(c, &spec.Then) {
		return nil
	}
	return []validation.Violation{newViolation(def,
		fmt.Sprintf("contract satisfies %s but not the required %s",
			describePredicate(&spec.If), describePredicate(&spec.Then)))}
}

// evalPredicate evaluates a contract-level predicate.
func evalPredicate(c *contract.Contract, p *catalog.Predicate) bool {
	switch p.Kind {
	case catalog.PredicateContainsPII:
		return c.ContainsPII
	case catalog.PredicateRetentionDeclared:
		return c.RetentionDays > 0
	case catalog.PredicateClassificationIs:
		return string(c.Classification) == p.Value
	case catalog.PredicateHasTag:
		return c.HasTag(p.Value)
	case catalog.PredicateHasUseCases:
		return len(c.UseCases) > 0
	default:
		return false
	}
}

// describePredicate renders a predicate for violation messages.
func describePredicate(p *catalog.Predicate) string {
	if p.Value != "" {
		return fmt.Sprintf("%s(%s)", p.Kind, p.Value)
	}
	return string(p.Kind)
}

// evalValueConstraint checks membership and numeric bound constraints,
// emitting one violation per offending attribute or field.
func evalValueConstraint(c *contract.Contract, def *catalog.PolicyDefinition, spec *catalog.ValueConstraintSpec) []validation.Violation {
	switch spec.Attribute {
	case catalog.ConstraintRetentionDays:
		if spec.Min != nil && c.RetentionDays < *spec.Min {
			return []validation.Violation{newViolation(def,
				fmt.Sprintf("retention of %d days is below the required minimum of %d",
					c.RetentionDays, *spec.Min))}
		}
		if len(spec.AllowedValues) > 0 && !contains(spec.AllowedValues, strconv.Itoa(c.RetentionDays)) {
			return []validation.Violation{newViolation(def,
				fmt.Sprintf("retention of %d days is not an allowed value", c.RetentionDays))}
		}
		return nil

	case catalog.ConstraintClassification:
		if !contains(spec.AllowedValues, string(c.Classification)) {
			return []validation.Violation{newViolation(def,
				fmt.Sprintf("classification %q is not in the allowed set %v",
					c.Classification, spec.AllowedValues))}
		}
		return nil

	case catalog.ConstraintFieldType:
		var violations []validation.Violation
		for _, f := range c.Fields {
			if !contains(spec.AllowedValues, f.Type) {
				violations = append(violations, newViolation(def,
					fmt.Sprintf("field %q has disallowed type %q", f.Name, f.Type),
					f.Name))
			}
		}
		return violations

	default:
		return []validation.Violation{evaluationErrorViolation(def,
			fmt.Sprintf("unknown constraint attribute %q", spec.Attribute))}
	}
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

// evalStructural runs a named cross-field check, emitting one violation per
// offending field.
func evalStructural(c *contract.Contract, def *catalog.PolicyDefinition, spec *catalog.StructuralSpec) []validation.Violation {
	var violations []validation.Violation

	switch spec.Check {
	case catalog.CheckAllFieldsDescribed:
		for _, f := range c.Fields {
			if f.Description == "" {
				violations = append(violations, newViolation(def,
					fmt.Sprintf("field %q has no description", f.Name), f.Name))
			}
		}

	case catalog.CheckEnumFieldsListValues:
		for _, f := range c.Fields {
			if f.Type == "enum" && len(f.AllowedValues) == 0 {
				violations = append(violations, newViolation(def,
					fmt.Sprintf("enumerated field %q does not declare its allowed values", f.Name),
					f.Name))
			}
		}

	case catalog.CheckUniqueFieldNames:
		seen := make(map[string]bool, len(c.Fields))
		for _, f := range c.Fields {
			if seen[f.Name] {
				violations = append(violations, newViolation(def,
					fmt.Sprintf("field name %q is declared more than once", f.Name), f.Name))
				continue
			}
			seen[f.Name] = true
		}

	case catalog.CheckTypedFields:
		for _, f := range c.Fields {
			if f.Type == "" {
				violations = append(violations, newViolation(def,
					fmt.Sprintf("field %q has no declared type", f.Name), f.Name))
			}
		}

	default:
		violations = append(violations, evaluationErrorViolation(def,
			fmt.Sprintf("unknown structural check %q", spec.Check)))
	}

	return violations
}
