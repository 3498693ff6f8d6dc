// Package cli provides shared helpers for the gatekeeper command.
//
// Commands wrap their failures in *CommandError so the root command can
// report which subcommand failed and pick the exit code, while errors.Is/As
// still reach the underlying cause. The package also carries the output
// format handling shared by validate and lint, and the signal-aware
// context used to cancel in-flight validation runs on SIGINT/SIGTERM.
package cli
