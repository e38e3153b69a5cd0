package execshell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/procshell/internal/reaper"
	"github.com/temirov/procshell/internal/utils"
)

const (
	drainFailureMessageConstant      = "Reading process output failed"
	standardInputFailureMessage      = "Forwarding standard input failed"
	cancellationRequestedMessage     = "Execution cancelled, stopping process"
	processGroupKillFailedMessage    = "Killing the remaining process group failed"
	commandFieldNameConstant         = "command"
	handleIdentifierFieldConstant    = "handle_id"
	processIdentifierFieldConstant   = "pid"
	streamFieldNameConstant          = "stream"
	standardOutputStreamNameConstant = "stdout"
	standardErrorStreamNameConstant  = "stderr"
)

// OutputWriters receive echoed process output.
type OutputWriters struct {
	StandardOutput io.Writer
	StandardError  io.Writer
}

// DefaultOutputWriters echoes to the program's own standard streams.
func DefaultOutputWriters() OutputWriters {
	return OutputWriters{
		StandardOutput: utils.NewFlushingWriter(os.Stdout),
		StandardError:  utils.NewFlushingWriter(os.Stderr),
	}
}

// ProcessExecutor runs one command to completion without deadlocking on full pipes.
type ProcessExecutor struct {
	logger        *zap.Logger
	registry      *reaper.Registry
	outputWriters OutputWriters
}

// NewProcessExecutor constructs an executor around registry.
func NewProcessExecutor(logger *zap.Logger, registry *reaper.Registry, outputWriters OutputWriters) (*ProcessExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	return &ProcessExecutor{logger: logger, registry: registry, outputWriters: outputWriters}, nil
}

// Execute runs command and waits for it. Standard error is drained on its own
// goroutine while standard output is drained on the caller's; with OutBeforeErr
// standard error is only read after standard output reached EOF. Cancelling
// executionContext runs the process's shutdown task, which terminates it and
// escalates to a kill after the registry's grace period.
func (executor *ProcessExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	handle, startError := StartProcess(executor.registry, command, StartOptions{
		WithStandardInput:  command.Details.StandardInput != nil,
		DestroyDescendants: true,
	})
	if startError != nil {
		executor.logStartFailure(command, startError)
		return ExecutionResult{}, startError
	}

	result, waitError := reaper.Use(handle, func(activeHandle *reaper.ProcessHandle) (ExecutionResult, error) {
		return executor.await(executionContext, command, activeHandle)
	})
	if waitError != nil {
		return result, waitError
	}
	if contextError := executionContext.Err(); contextError != nil {
		return result, fmt.Errorf(executionCancelledTemplateConstant, strings.Join(command.Details.Arguments, commandArgumentsSeparatorConstant), contextError)
	}
	return result, nil
}

func (executor *ProcessExecutor) await(executionContext context.Context, command ShellCommand, handle *reaper.ProcessHandle) (ExecutionResult, error) {
	watcherDone := make(chan struct{})
	defer close(watcherDone)
	go executor.stopOnCancellation(executionContext, handle, watcherDone)

	if command.Details.StandardInput != nil {
		go executor.forwardStandardInput(command.Details.StandardInput, handle)
	}

	mode := command.Verbosity.printMode()
	standardOutputDrainer := streamDrainer{mode: mode, saveOutput: command.CaptureOutput, echo: executor.outputWriters.StandardOutput}
	standardErrorDrainer := streamDrainer{mode: mode, saveOutput: command.CaptureOutput, echo: executor.outputWriters.StandardError}

	standardOutputDrained := make(chan struct{})
	var standardErrorText string
	var standardErrorWaitGroup sync.WaitGroup
	standardErrorWaitGroup.Add(1)
	go func() {
		defer standardErrorWaitGroup.Done()
		if command.Verbosity.OutBeforeErr {
			<-standardOutputDrained
		}
		var drainError error
		standardErrorText, drainError = standardErrorDrainer.drain(handle.ErrorReader())
		executor.logDrainFailure(handle, standardErrorStreamNameConstant, drainError)
	}()

	standardOutputText, drainError := func() (string, error) {
		defer close(standardOutputDrained)
		return standardOutputDrainer.drain(handle.StandardOutput())
	}()
	executor.logDrainFailure(handle, standardOutputStreamNameConstant, drainError)

	standardErrorWaitGroup.Wait()
	exitCode, waitError := handle.Wait()
	if waitError != nil {
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: waitError}
	}

	result := ExecutionResult{ExitCode: exitCode, OutputCaptured: command.CaptureOutput}
	if command.CaptureOutput {
		result.StandardOutput = standardOutputText
		result.StandardError = standardErrorText
	}
	return result, nil
}

// stopOnCancellation runs the shutdown task, kills what is left of the process
// group and closes the pipes so drains blocked on an orphan holding them return.
func (executor *ProcessExecutor) stopOnCancellation(executionContext context.Context, handle *reaper.ProcessHandle, watcherDone <-chan struct{}) {
	select {
	case <-executionContext.Done():
	case <-watcherDone:
		return
	}
	executor.logger.Debug(cancellationRequestedMessage, zap.String(handleIdentifierFieldConstant, handle.ID()), zap.Int(processIdentifierFieldConstant, handle.PID()))
	handle.RunShutdownNowInsteadOfLater()
	if killError := handle.KillTree(); killError != nil {
		executor.logger.Debug(processGroupKillFailedMessage, zap.String(handleIdentifierFieldConstant, handle.ID()), zap.Error(killError))
	}
	handle.ClosePipes()
}

// forwardStandardInput copies input into the child's stdin until input reaches EOF
// or the process exits, then closes stdin. A Read already blocked on input is
// abandoned; its goroutine ends once that Read returns.
func (executor *ProcessExecutor) forwardStandardInput(input io.Reader, handle *reaper.ProcessHandle) {
	standardInput := handle.StandardInput()
	if standardInput == nil {
		return
	}

	copyResult := make(chan error, 1)
	go func() {
		_, copyError := io.Copy(standardInput, input)
		copyResult <- copyError
	}()

	var copyError error
	select {
	case copyError = <-copyResult:
	case <-handle.Done():
	}
	closeError := standardInput.Close()
	if handle.Exited() {
		return
	}
	for _, forwardError := range []error{normalizeDrainError(copyError), normalizeDrainError(closeError)} {
		if forwardError != nil {
			executor.logger.Debug(standardInputFailureMessage, zap.String(handleIdentifierFieldConstant, handle.ID()), zap.Error(forwardError))
			return
		}
	}
}

func (executor *ProcessExecutor) logDrainFailure(handle *reaper.ProcessHandle, streamName string, drainError error) {
	if drainError == nil {
		return
	}
	executor.logger.Warn(drainFailureMessageConstant, zap.String(handleIdentifierFieldConstant, handle.ID()), zap.String(streamFieldNameConstant, streamName), zap.Error(drainError))
}

func (executor *ProcessExecutor) logStartFailure(command ShellCommand, startError error) {
	executionError, isExecutionError := startError.(CommandExecutionError)
	if !isExecutionError || len(executionError.ReproductionCommand) == 0 {
		return
	}
	executor.logger.Error(
		CommandMessageFormatter{}.BuildReproductionMessage(command.Details),
		zap.Strings(commandFieldNameConstant, command.Details.Arguments),
		zap.Error(executionError.Cause),
	)
}
