// Package rules implements the deterministic rule evaluator: an interpreter
// that dispatches on the catalog's closed tagged rule-spec variants and
// evaluates them against a contract.
//
// Evaluation is pure and reproducible: policies run in ascending id order,
// nothing short-circuits, and one call produces the complete report.
// Evaluator-internal failures for a single policy become a violation
// tagged as an evaluation error rather than aborting the run.
package rules
