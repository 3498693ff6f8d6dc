// Package catalog holds the immutable, versioned set of governance policy
// definitions currently in force.
//
// Policies come in two shapes: rule-based policies carry a closed tagged
// RuleSpec variant (field-presence, conditional-requirement,
// value-constraint, structural-consistency) evaluated deterministically by
// pkg/rules, and semantic policies carry a prompt template plus a
// confidence threshold and are evaluated by pkg/semantic.
//
// The Registry exposes the live catalog as an immutable Snapshot and
// replaces it atomically on reload, so concurrent validation runs never
// observe a partially updated catalog and in-flight runs finish against
// the snapshot they started with. Malformed definitions fail the load or
// reload with a *ConfigError and leave any previous snapshot in effect.
package catalog
