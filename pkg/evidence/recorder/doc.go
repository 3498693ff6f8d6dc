// Package recorder persists validation evidence asynchronously.
//
// Records are enqueued on a buffered channel and written by a background
// worker, so storage latency never blocks a validation run. A full buffer
// drops the record with an error rather than blocking; on shutdown the
// channel is drained before the worker exits.
package recorder
