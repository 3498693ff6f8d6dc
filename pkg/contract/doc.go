// Package contract defines the data-sharing contract model: a dataset
// description plus its field-level schema and declared governance metadata.
//
// A Contract is the sole input to a validation run. It is owned by the
// caller and treated as immutable by every engine component. The package
// also provides structural validation (the terminal-input check that
// distinguishes "cannot evaluate" from "evaluates with violations") and a
// canonical content digest used for semantic verdict caching.
package contract
