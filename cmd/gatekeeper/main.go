// Gatekeeper validates data-sharing contracts against a governance policy
// catalog.
//
// It combines deterministic rule evaluation with semantic review by an
// external reasoning backend, scales scrutiny with assessed contract risk,
// and records an audit trail of every run.
//
// Usage:
//
//	# Validate a contract against a catalog
//	gatekeeper validate --contract orders.yaml --catalog policies/catalog.yaml
//
//	# Pick a validation mode
//	gatekeeper validate --contract orders.yaml --mode THOROUGH
//
//	# Lint a policy catalog
//	gatekeeper lint --catalog policies/catalog.yaml
//
//	# Show version information
//	gatekeeper version
package main

func main() {
	Execute()
}
