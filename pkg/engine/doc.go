// Package engine orchestrates validation runs.
//
// One run flows risk assessment -> strategy selection -> rule and semantic
// evaluation -> result merging, against a single catalog snapshot taken at
// the start. The rule path runs on the calling goroutine while semantic
// policies fan out to the reasoning backend concurrently. A well-formed
// contract never produces an error: backend failures, deadline expiry, and
// evidence trouble degrade the report instead.
package engine
