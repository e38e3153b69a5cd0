package process

import (
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/procshell/internal/reaper"
	"github.com/temirov/procshell/internal/spawner"
)

const (
	spawnUseConstant               = "spawn [flags] -- command [argument ...]"
	spawnShortDescription          = "Start a command and relay its streams, killing it after an optional timeout"
	spawnLongDescription           = "spawn starts a command without buffering its output, copies its streams to this terminal and kills it when --timeout elapses first."
	spawnTimeoutFlagName           = "timeout"
	spawnTimeoutFlagUsage          = "Kill the process when it is still running after this duration (0 disables)"
	streamCopyFailedMessage        = "Stream relay stopped"
	streamNameFieldConstant        = "stream"
	standardOutputStreamLabel      = "stdout"
	standardErrorStreamLabel       = "stderr"
	standardInputStreamLabel       = "stdin"
	processIdentifierFieldConstant = "pid"
)

// SpawnCommandBuilder assembles the spawn command.
type SpawnCommandBuilder struct {
	LoggerProvider         LoggerProvider
	ReapingContextProvider ReapingContextProvider
}

type spawnFlagValues struct {
	launchFlagValues
	timeout time.Duration
}

// Build constructs the spawn command.
func (builder *SpawnCommandBuilder) Build() (*cobra.Command, error) {
	values := &spawnFlagValues{}
	command := &cobra.Command{
		Use:   spawnUseConstant,
		Short: spawnShortDescription,
		Long:  spawnLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, values)
		},
	}

	bindLaunchFlags(command, &values.launchFlagValues)
	command.Flags().DurationVar(&values.timeout, spawnTimeoutFlagName, 0, spawnTimeoutFlagUsage)

	return command, nil
}

func (builder *SpawnCommandBuilder) run(command *cobra.Command, arguments []string, values *spawnFlagValues) error {
	reapingContext, reapingContextError := resolveReapingContext(builder.ReapingContextProvider)
	if reapingContextError != nil {
		return reapingContextError
	}

	workingDirectory, workingDirectoryError := values.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	logger := resolveLogger(builder.LoggerProvider)
	logLaunch(logger, command, arguments, workingDirectory)

	processSpawner := spawner.NewProcessSpawner(logger, reapingContext).
		WithWorkingDirectory(workingDirectory).
		WithEnvironment(values.environment).
		WithTimeout(values.timeout)

	handle, spawnError := processSpawner.SendCommand(command.Context(), arguments...)
	if spawnError != nil {
		return spawnError
	}

	exitCode, waitError := reaper.Use(handle, func(activeHandle *reaper.ProcessHandle) (int, error) {
		return relayStreams(logger, command, activeHandle, values.forwardInput)
	})
	if waitError != nil {
		return waitError
	}
	if contextError := command.Context().Err(); contextError != nil {
		return contextError
	}
	if exitCode != 0 {
		return ExitStatusError{Command: joinArguments(arguments), Status: exitCode}
	}
	return nil
}

// relayStreams copies both output pipes to the command's writers until they
// close, then waits for the exit status. The spawner closes the pipes of a
// process it killed on timeout, which ends the copies.
func relayStreams(logger *zap.Logger, command *cobra.Command, handle *reaper.ProcessHandle, forwardInput bool) (int, error) {
	if forwardInput {
		go func() {
			_, copyError := io.Copy(handle.StandardInput(), command.InOrStdin())
			logRelayFailure(logger, handle, standardInputStreamLabel, copyError)
			logRelayFailure(logger, handle, standardInputStreamLabel, handle.StandardInput().Close())
		}()
		go func() {
			<-handle.Done()
			_ = handle.StandardInput().Close()
		}()
	} else if standardInput := handle.StandardInput(); standardInput != nil {
		logRelayFailure(logger, handle, standardInputStreamLabel, standardInput.Close())
	}

	writers := commandOutputWriters(command)
	var relayGroup sync.WaitGroup
	relayGroup.Add(2)
	go func() {
		defer relayGroup.Done()
		_, copyError := io.Copy(writers.StandardError, handle.StandardError())
		logRelayFailure(logger, handle, standardErrorStreamLabel, copyError)
	}()
	go func() {
		defer relayGroup.Done()
		_, copyError := io.Copy(writers.StandardOutput, handle.StandardOutput())
		logRelayFailure(logger, handle, standardOutputStreamLabel, copyError)
	}()
	relayGroup.Wait()

	return handle.Wait()
}

func logRelayFailure(logger *zap.Logger, handle *reaper.ProcessHandle, streamName string, relayError error) {
	if relayError == nil || handle.Exited() {
		return
	}
	logger.Debug(streamCopyFailedMessage, zap.String(streamNameFieldConstant, streamName), zap.Int(processIdentifierFieldConstant, handle.PID()), zap.Error(relayError))
}
