// Package semantic evaluates policies that need judgment rather than
// pattern matching, by prompting an external reasoning backend.
//
// The backend is treated as unreliable by construction: calls are
// retried with bounded exponential backoff, responses are parsed
// tolerantly, and any policy that cannot be conclusively evaluated
// degrades to a recorded skip instead of failing the run. Parsed
// verdicts are cached per (policy, contract digest) so repeated
// validations of the same contract do not re-prompt the backend.
package semantic
