package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	loggerNotConfiguredMessageConstant          = "logger not configured"
	registryNotConfiguredMessageConstant        = "process registry not configured"
	emptyCommandMessageConstant                 = "command has no arguments"
	explainOutputRequiresCaptureMessageConstant = "explaining output requires captured output"
	commandExecutionErrorTemplateConstant       = "%s: %v"
	commandExecutionErrorWithoutCauseConstant   = "command execution failed"
	commandFailedWithoutReportTemplateConstant  = "%s exited with code %d"
	executionCancelledTemplateConstant          = "command %s was cancelled: %w"
	commandArgumentsSeparatorConstant           = " "
)

// ErrLoggerNotConfigured indicates that a logger instance was not provided.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrRegistryNotConfigured indicates that no reaper.Registry was provided.
var ErrRegistryNotConfigured = errors.New(registryNotConfiguredMessageConstant)

// ErrEmptyCommand indicates a command without a program.
var ErrEmptyCommand = errors.New(emptyCommandMessageConstant)

// ErrExplainOutputRequiresCapture rejects ExplainOutput on a streaming execution.
var ErrExplainOutputRequiresCapture = errors.New(explainOutputRequiresCaptureMessageConstant)

// CommandExecutionError reports a process that could not be started.
type CommandExecutionError struct {
	Command ShellCommand
	// ReproductionCommand is a line that replays the invocation in a terminal.
	ReproductionCommand string
	Cause               error
}

// Error describes the failure.
func (executionError CommandExecutionError) Error() string {
	commandLabel := strings.Join(executionError.Command.Details.Arguments, commandArgumentsSeparatorConstant)
	if executionError.Cause == nil {
		return fmt.Sprintf(commandExecutionErrorTemplateConstant, commandLabel, commandExecutionErrorWithoutCauseConstant)
	}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, commandLabel, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// CommandFailedError reports a non-zero exit that no ResultHandler accepted.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
	Report  ErrorReport
}

// Error returns the full error report.
func (failedError CommandFailedError) Error() string {
	reportText := failedError.Report.Text()
	if len(reportText) == 0 {
		return fmt.Sprintf(commandFailedWithoutReportTemplateConstant, strings.Join(failedError.Command.Details.Arguments, commandArgumentsSeparatorConstant), failedError.Result.ExitCode)
	}
	return reportText
}

// ExitCode returns the process exit code.
func (failedError CommandFailedError) ExitCode() int {
	return failedError.Result.ExitCode
}

// Output returns standard output followed by standard error when they were captured.
func (failedError CommandFailedError) Output() (string, bool) {
	if !failedError.Result.OutputCaptured {
		return "", false
	}
	return failedError.Result.Output(), true
}
