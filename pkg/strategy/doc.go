// Package strategy picks which evaluation paths a validation run takes.
// The deterministic rule path always runs; the semantic subset varies by
// mode, and in ADAPTIVE mode by the assessed risk level. Selection is a
// pure function, so the same (risk, mode, catalog) always yields the same
// plan.
package strategy
