package engine

import (
	"time"

	"mercator-hq/gatekeeper/pkg/risk"
	"mercator-hq/gatekeeper/pkg/strategy"
	"mercator-hq/gatekeeper/pkg/validation"
)

// Report is the complete outcome of one validation run: the merged result
// plus everything needed to explain and audit how it was produced.
type Report struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// ContractName is the name of the validated contract.
	ContractName string `json:"contract_name"`

	// ContractDigest is the content hash of the validated contract.
	ContractDigest string `json:"contract_digest"`

	// CatalogVersion is the version of the catalog snapshot the run used.
	CatalogVersion string `json:"catalog_version"`

	// Mode is the validation mode the run executed under.
	Mode strategy.Mode `json:"mode"`

	// Risk is the assessed risk profile of the contract.
	Risk *risk.Assessment `json:"risk"`

	// Plan names the policies the run evaluated.
	Plan *strategy.Plan `json:"plan"`

	// Result is the merged validation outcome.
	Result *validation.Result `json:"result"`

	// StartedAt and CompletedAt bound the run.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Duration returns the wall-clock duration of the run.
func (r *Report) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
