// Package config loads and validates engine configuration.
//
// Configuration is a YAML file whose sections reuse the yaml-tagged config
// types of the packages they tune (risk weights, backend client, evidence
// recorder). Loading applies defaults, then GATEKEEPER_* environment
// variable overrides, then validates the final result, so a process never
// starts with a configuration that would fail later.
package config
