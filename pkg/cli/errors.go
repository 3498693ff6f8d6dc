package cli

import "fmt"

// CommandError wraps a subcommand failure together with the process exit
// code. Operational failures exit 1. A run that completed but found policy
// violations exits 2, so CI pipelines can tell a broken setup from a
// contract that was actually rejected.
type CommandError struct {
	Command string
	Code    int
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this failure.
func (e *CommandError) ExitCode() int {
	if e.Code == 0 {
		return 1
	}
	return e.Code
}

// NewCommandError wraps an operational failure of a subcommand.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Code:    1,
		Err:     err,
	}
}

// NewPolicyFailure marks a run that completed but rejected its input.
func NewPolicyFailure(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Code:    2,
		Err:     err,
	}
}
