package spawner

import (
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/procshell/internal/execshell"
	"github.com/temirov/procshell/internal/reaper"
)

const (
	registryNotConfiguredMessageConstant = "process spawner requires a registry"
	timeoutKillMessageConstant           = "Killing process after timeout"
	timeoutKillFailedMessageConstant     = "Failed to kill process after timeout"
	alreadyExitedMessageConstant         = "Process exited before timeout"
	cancelledMessageConstant             = "Stopping spawned process after cancellation"
	processGroupKillFailedMessage        = "Failed to kill remaining process group"
	pipesReleasedMessageConstant         = "Closed pipes of timed out process"
	standardErrorReadFailedMessage       = "Failed to read spawned process standard error"
	handleIdentifierFieldConstant        = "handle_id"
	processIdentifierFieldConstant       = "pid"
	timeoutFieldConstant                 = "timeout"
	carriageReturnConstant               = "\r"
	lineFeedConstant                     = '\n'
	pipeReleaseDelayConstant             = 100 * time.Millisecond
)

// ErrRegistryNotConfigured indicates the spawner was built without a registry.
var ErrRegistryNotConfigured = errors.New(registryNotConfiguredMessageConstant)

// StandardErrorLineHandler receives each standard error line without its terminator.
type StandardErrorLineHandler func(line string)

// ProcessSpawner starts processes without waiting for them. Every builder method
// returns a modified copy.
type ProcessSpawner struct {
	logger           *zap.Logger
	reapingContext   execshell.ReapingContext
	workingDirectory string
	environment      map[string]string
	timeout          time.Duration
	errorLineHandler StandardErrorLineHandler
}

// NewProcessSpawner constructs a spawner bound to reapingContext.
func NewProcessSpawner(logger *zap.Logger, reapingContext execshell.ReapingContext) ProcessSpawner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ProcessSpawner{logger: logger, reapingContext: reapingContext}
}

// WithWorkingDirectory sets the directory processes start in.
func (spawner ProcessSpawner) WithWorkingDirectory(workingDirectory string) ProcessSpawner {
	spawner.workingDirectory = workingDirectory
	return spawner
}

// WithEnvironment replaces the configured environment overrides.
func (spawner ProcessSpawner) WithEnvironment(environment map[string]string) ProcessSpawner {
	spawner.environment = maps.Clone(environment)
	return spawner
}

// WithUpdatedEnvironment overlays environment on the configured overrides.
func (spawner ProcessSpawner) WithUpdatedEnvironment(environment map[string]string) ProcessSpawner {
	mergedEnvironment := maps.Clone(spawner.environment)
	if mergedEnvironment == nil {
		mergedEnvironment = make(map[string]string, len(environment))
	}
	maps.Copy(mergedEnvironment, environment)
	spawner.environment = mergedEnvironment
	return spawner
}

// WithTimeout kills spawned processes and their process group when still alive
// after timeout. Shortly after the kill the handle's pipes are closed, so readers
// blocked on a descendant outside the group return. Zero disables the watchdog.
func (spawner ProcessSpawner) WithTimeout(timeout time.Duration) ProcessSpawner {
	spawner.timeout = timeout
	return spawner
}

// WithStandardErrorLineHandler consumes standard error on a background goroutine
// and passes every line to handler. The returned handle's error stream must not
// be read by the caller afterwards.
func (spawner ProcessSpawner) WithStandardErrorLineHandler(handler StandardErrorLineHandler) ProcessSpawner {
	spawner.errorLineHandler = handler
	return spawner
}

// Timeout returns the configured watchdog timeout.
func (spawner ProcessSpawner) Timeout() time.Duration {
	return spawner.timeout
}

// SendCommand starts arguments and returns its handle with standard input open.
// Cancelling executionContext before the process exits runs its shutdown task.
func (spawner ProcessSpawner) SendCommand(executionContext context.Context, arguments ...string) (*reaper.ProcessHandle, error) {
	if spawner.reapingContext.Registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	if len(arguments) == 0 {
		return nil, execshell.ErrEmptyCommand
	}

	command := execshell.ShellCommand{
		Details: execshell.CommandDetails{
			Arguments:            append([]string{}, arguments...),
			WorkingDirectory:     spawner.workingDirectory,
			EnvironmentVariables: maps.Clone(spawner.environment),
		},
	}
	handle, startError := execshell.StartProcess(spawner.reapingContext.Registry, command, execshell.StartOptions{
		WithStandardInput:  true,
		DestroyDescendants: true,
	})
	if startError != nil {
		return nil, startError
	}

	if spawner.timeout > 0 || executionContext.Done() != nil {
		go spawner.watch(executionContext, handle)
	}
	if spawner.errorLineHandler != nil {
		go spawner.forwardStandardError(handle)
	}
	return handle, nil
}

func (spawner ProcessSpawner) watch(executionContext context.Context, handle *reaper.ProcessHandle) {
	var timeoutChannel <-chan time.Time
	if spawner.timeout > 0 {
		timer := time.NewTimer(spawner.timeout)
		defer timer.Stop()
		timeoutChannel = timer.C
	}

	select {
	case <-handle.Done():
		if spawner.timeout > 0 {
			spawner.logger.Debug(alreadyExitedMessageConstant, spawner.handleFields(handle)...)
		}
	case <-executionContext.Done():
		spawner.logger.Debug(cancelledMessageConstant, spawner.handleFields(handle)...)
		handle.RunShutdownNowInsteadOfLater()
		if killError := handle.KillTree(); killError != nil {
			spawner.logger.Debug(processGroupKillFailedMessage, append(spawner.handleFields(handle), zap.Error(killError))...)
		}
	case <-timeoutChannel:
		if handle.Exited() {
			spawner.logger.Debug(alreadyExitedMessageConstant, spawner.handleFields(handle)...)
			return
		}
		spawner.logger.Info(timeoutKillMessageConstant, spawner.handleFields(handle)...)
		if killError := handle.KillTree(); killError != nil {
			spawner.logger.Warn(timeoutKillFailedMessageConstant, append(spawner.handleFields(handle), zap.Error(killError))...)
		}
		spawner.releasePipes(handle)
	}
}

// releasePipes closes the pipes of a killed process once it was reaped and its
// readers had a moment to take the remaining output.
func (spawner ProcessSpawner) releasePipes(handle *reaper.ProcessHandle) {
	<-handle.Done()
	time.Sleep(pipeReleaseDelayConstant)
	handle.ClosePipes()
	spawner.logger.Debug(pipesReleasedMessageConstant, spawner.handleFields(handle)...)
}

func (spawner ProcessSpawner) forwardStandardError(handle *reaper.ProcessHandle) {
	reader := handle.ErrorReader()
	if reader == nil {
		return
	}
	for {
		line, readError := reader.ReadString(lineFeedConstant)
		if len(line) > 0 {
			spawner.errorLineHandler(strings.TrimSuffix(strings.TrimSuffix(line, string(lineFeedConstant)), carriageReturnConstant))
		}
		if readError != nil {
			if !handle.Exited() && !isStreamClosed(readError) {
				spawner.logger.Debug(standardErrorReadFailedMessage, append(spawner.handleFields(handle), zap.Error(readError))...)
			}
			return
		}
	}
}

func (spawner ProcessSpawner) handleFields(handle *reaper.ProcessHandle) []zap.Field {
	return []zap.Field{
		zap.String(handleIdentifierFieldConstant, handle.ID()),
		zap.Int(processIdentifierFieldConstant, handle.PID()),
		zap.Duration(timeoutFieldConstant, spawner.timeout),
	}
}

func isStreamClosed(readError error) bool {
	return errors.Is(readError, io.EOF) || errors.Is(readError, os.ErrClosed)
}
