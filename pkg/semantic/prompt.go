package semantic

import (
	"fmt"
	"strings"

	"mercator-hq/gatekeeper/pkg/contract"
)

// BuildPrompt renders a policy's prompt template against a contract.
// Templates use double-brace placeholders; unknown placeholders are left
// in place so a bad template degrades visibly instead of silently.
//
// Supported placeholders: {{name}}, {{classification}}, {{contains_pii}},
// {{compliance_tags}}, {{retention_days}}, {{fields}}, {{use_cases}}.
// A framing instruction asking for a structured verdict is appended so
// the parser has a fighting chance with cooperative backends.
func BuildPrompt(template string, c *contract.Contract) string {
	replacer := strings.NewReplacer(
		"{{name}}", c.Name,
		"{{classification}}", string(c.Classification),
		"{{contains_pii}}", fmt.Sprintf("%t", c.ContainsPII),
		"{{compliance_tags}}", strings.Join(c.ComplianceTags, ", "),
		"{{retention_days}}", fmt.Sprintf("%d", c.RetentionDays),
		"{{fields}}", renderFields(c.Fields),
		"{{use_cases}}", strings.Join(c.UseCases, "; "),
	)

	var b strings.Builder
	b.WriteString(replacer.Replace(template))
	b.WriteString("\n\nRespond with a JSON object: ")
	b.WriteString(`{"compliant": bool, "confidence": 0-100, "reasoning": string, "recommended_actions": [string]}`)
	return b.String()
}

// renderFields summarizes the schema for prompt context, one field per line.
func renderFields(fields []contract.Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s (%s)", f.Name, f.Type)
		if f.PII {
			b.WriteString(" [pii]")
		}
		if f.Encrypted {
			b.WriteString(" [encrypted]")
		}
		if f.Description != "" {
			fmt.Fprintf(&b, ": %s", f.Description)
		}
	}
	return b.String()
}
