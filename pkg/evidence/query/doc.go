// Package query validates evidence query parameters before they reach a
// storage backend.
package query
