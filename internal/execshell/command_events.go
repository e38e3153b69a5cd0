package execshell

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted announces a command whose verbosity requests it.
	CommandStarted(command ShellCommand)
	// CommandOutputExplained reports captured output when the verbosity explains output.
	CommandOutputExplained(command ShellCommand, result ExecutionResult)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports unexpected failures prior to receiving an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

// CommandStarted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

// CommandOutputExplained implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandOutputExplained(ShellCommand, ExecutionResult) {}

// CommandCompleted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

// CommandExecutionFailed implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// NoopCommandEventObserver returns an observer that ignores every event.
func NoopCommandEventObserver() CommandEventObserver {
	return noopCommandEventObserver{}
}
