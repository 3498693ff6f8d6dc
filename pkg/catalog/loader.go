package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a policy catalog.
type catalogFile struct {
	Policies []*PolicyDefinition `yaml:"policies"`
}

// Parse parses a catalog from YAML bytes and validates every definition.
// It fails fast: the first structurally invalid record aborts the load and
// is returned as a *ConfigError.
func Parse(data []byte) ([]*PolicyDefinition, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ConfigError{
			Message: "failed to parse catalog YAML",
			Cause:   err,
		}
	}

	if err := ValidateDefinitions(file.Policies); err != nil {
		return nil, err
	}

	return file.Policies, nil
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) ([]*PolicyDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{
			Path:    path,
			Message: "failed to read catalog file",
			Cause:   err,
		}
	}

	defs, err := Parse(data)
	if err != nil {
		// Attach the path for operator-facing messages
		if cfgErr, ok := err.(*ConfigError); ok && cfgErr.Path == "" {
			cfgErr.Path = path
		}
		return nil, err
	}

	return defs, nil
}

// ValidateDefinitions validates a set of policy definitions as a whole:
// each record individually, plus catalog-level invariants (at least one
// policy, unique ids).
func ValidateDefinitions(defs []*PolicyDefinition) error {
	if len(defs) == 0 {
		return &ConfigError{Message: "catalog contains no policies"}
	}

	seen := make(map[string]bool, len(defs))
	for i, def := range defs {
		if def == nil {
			return &ConfigError{Message: fmt.Sprintf("policy at index %d is empty", i)}
		}
		if err := def.Validate(); err != nil {
			return &ConfigError{
				PolicyID: def.ID,
				Message:  err.Error(),
				Cause:    err,
			}
		}
		if seen[def.ID] {
			return &ConfigError{
				PolicyID: def.ID,
				Message:  "duplicate policy id",
			}
		}
		seen[def.ID] = true
	}

	return nil
}
