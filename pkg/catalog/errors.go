package catalog

import "fmt"

// ConfigError represents a malformed policy record detected at load or
// reload time. It is fatal for the operation that produced it; the previous
// good snapshot, if any, remains in effect.
type ConfigError struct {
	// PolicyID is the offending policy's id ("" for catalog-level problems).
	PolicyID string

	// Path is the source file, when the catalog was loaded from one.
	Path string

	// Message describes the problem.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch {
	case e.PolicyID != "" && e.Path != "":
		return fmt.Sprintf("catalog %s: policy %q: %s", e.Path, e.PolicyID, e.Message)
	case e.PolicyID != "":
		return fmt.Sprintf("catalog: policy %q: %s", e.PolicyID, e.Message)
	case e.Path != "":
		return fmt.Sprintf("catalog %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("catalog: %s", e.Message)
	}
}

// Unwrap returns the underlying error for error chain support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
