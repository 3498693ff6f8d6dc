// Package risk scores a contract's governance risk as a weighted sum of
// independent factors and maps the score to a coarse level (LOW through
// CRITICAL). Weights and band thresholds are deployment tunables; the
// mapping from score to level is monotonic, with boundary scores landing
// in the upper band.
package risk
