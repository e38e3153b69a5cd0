package execshell

import (
	"io"
)

// CommandDetails describes one process invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        io.Reader
}

// ShellCommand couples CommandDetails with the way the invocation is observed.
type ShellCommand struct {
	Details   CommandDetails
	Verbosity ShellVerbosity
	// CaptureOutput keeps standard output and standard error in memory. Without it
	// output is streamed and discarded, bounding memory for long-running commands.
	CaptureOutput bool
}

// ExecutionResult captures the observable results of a finished process.
type ExecutionResult struct {
	ExitCode       int
	StandardOutput string
	StandardError  string
	// OutputCaptured is false for streamed executions, whose text fields stay empty.
	OutputCaptured bool
}

// Output concatenates standard output and standard error.
func (result ExecutionResult) Output() string {
	return result.StandardOutput + result.StandardError
}
