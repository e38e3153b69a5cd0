package execshell

import (
	"context"
	"io"
	"maps"

	"go.uber.org/zap"
)

// ResultHandler accepts specific non-zero results as success.
type ResultHandler func(result ExecutionResult) bool

// AcceptExitCodes returns a ResultHandler accepting the listed exit codes.
func AcceptExitCodes(exitCodes ...int) ResultHandler {
	accepted := make(map[int]struct{}, len(exitCodes))
	for _, exitCode := range exitCodes {
		accepted[exitCode] = struct{}{}
	}
	return func(result ExecutionResult) bool {
		_, isAccepted := accepted[result.ExitCode]
		return isAccepted
	}
}

// shellSettings is the configuration shared by Returner and Streamer.
type shellSettings struct {
	logger           *zap.Logger
	reapingContext   ReapingContext
	verbosity        ShellVerbosity
	workingDirectory string
	environment      map[string]string
	resultHandler    ResultHandler
	standardInput    io.Reader
	outputWriters    OutputWriters
	eventObserver    CommandEventObserver
}

func newShellSettings(logger *zap.Logger, reapingContext ReapingContext, verbosity ShellVerbosity) shellSettings {
	if logger == nil {
		logger = zap.NewNop()
	}
	return shellSettings{
		logger:         logger,
		reapingContext: reapingContext,
		verbosity:      verbosity,
		outputWriters:  DefaultOutputWriters(),
		eventObserver:  noopCommandEventObserver{},
	}
}

func (settings shellSettings) withUpdatedEnvironment(environment map[string]string) shellSettings {
	mergedEnvironment := maps.Clone(settings.environment)
	if mergedEnvironment == nil {
		mergedEnvironment = make(map[string]string, len(environment))
	}
	maps.Copy(mergedEnvironment, environment)
	settings.environment = mergedEnvironment
	return settings
}

func (settings shellSettings) buildCommand(arguments []string, captureOutput bool) ShellCommand {
	return ShellCommand{
		Details: CommandDetails{
			Arguments:            append([]string{}, arguments...),
			WorkingDirectory:     settings.workingDirectory,
			EnvironmentVariables: maps.Clone(settings.environment),
			StandardInput:        settings.standardInput,
		},
		Verbosity:     settings.verbosity,
		CaptureOutput: captureOutput,
	}
}

// run announces, executes and judges one command.
func (settings shellSettings) run(executionContext context.Context, arguments []string, captureOutput bool) (ExecutionResult, error) {
	command := settings.buildCommand(arguments, captureOutput)
	if !captureOutput && settings.verbosity.ExplainOutput {
		return ExecutionResult{}, ErrExplainOutputRequiresCapture
	}

	eventObserver := settings.eventObserver
	if eventObserver == nil {
		eventObserver = noopCommandEventObserver{}
	}

	executor, creationError := NewProcessExecutor(settings.logger, settings.reapingContext.Registry, settings.outputWriters)
	if creationError != nil {
		return ExecutionResult{}, creationError
	}

	if settings.verbosity.PrintRunning {
		eventObserver.CommandStarted(command)
	}

	result, executionError := executor.Execute(executionContext, command)
	if executionError != nil {
		eventObserver.CommandExecutionFailed(command, executionError)
		return result, executionError
	}

	if settings.verbosity.ExplainOutput {
		eventObserver.CommandOutputExplained(command, result)
	}
	eventObserver.CommandCompleted(command, result)

	if result.ExitCode == 0 {
		return result, nil
	}
	if settings.resultHandler != nil && settings.resultHandler(result) {
		return result, nil
	}
	return result, CommandFailedError{Command: command, Result: result, Report: NewErrorReport(command, result)}
}

// Returner runs commands with captured output and returns standard output followed
// by standard error. Every builder method returns a modified copy.
type Returner struct {
	settings shellSettings
}

// NewReturner constructs a Returner for reapingContext.
func NewReturner(logger *zap.Logger, reapingContext ReapingContext, verbosity ShellVerbosity) Returner {
	return Returner{settings: newShellSettings(logger, reapingContext, verbosity)}
}

// WithWorkingDirectory runs commands in workingDirectory.
func (returner Returner) WithWorkingDirectory(workingDirectory string) Returner {
	returner.settings.workingDirectory = workingDirectory
	return returner
}

// WithEnvironment replaces the configured environment overrides.
func (returner Returner) WithEnvironment(environment map[string]string) Returner {
	returner.settings.environment = maps.Clone(environment)
	return returner
}

// WithUpdatedEnvironment merges environment into the configured overrides.
func (returner Returner) WithUpdatedEnvironment(environment map[string]string) Returner {
	returner.settings = returner.settings.withUpdatedEnvironment(environment)
	return returner
}

// DoNotPrintCommand hides arguments from announcements.
func (returner Returner) DoNotPrintCommand() Returner {
	returner.settings.verbosity = returner.settings.verbosity.WithArgumentsHidden()
	return returner
}

// WithVerbosity replaces the verbosity.
func (returner Returner) WithVerbosity(verbosity ShellVerbosity) Returner {
	returner.settings.verbosity = verbosity
	return returner
}

// WithResultHandler accepts the non-zero results resultHandler approves.
func (returner Returner) WithResultHandler(resultHandler ResultHandler) Returner {
	returner.settings.resultHandler = resultHandler
	return returner
}

// WithStandardInput feeds standardInput to every command. Forwarding stops when
// the command exits; a Read on standardInput that is blocked at that moment is
// left to return on its own and its data is discarded.
func (returner Returner) WithStandardInput(standardInput io.Reader) Returner {
	returner.settings.standardInput = standardInput
	return returner
}

// WithOutputWriters redirects echoed output.
func (returner Returner) WithOutputWriters(outputWriters OutputWriters) Returner {
	returner.settings.outputWriters = outputWriters
	return returner
}

// WithEventObserver receives command lifecycle events.
func (returner Returner) WithEventObserver(eventObserver CommandEventObserver) Returner {
	returner.settings.eventObserver = eventObserver
	return returner
}

// Verbosity returns the configured verbosity.
func (returner Returner) Verbosity() ShellVerbosity {
	return returner.settings.verbosity
}

// Execute runs arguments and returns the full result.
func (returner Returner) Execute(executionContext context.Context, arguments ...string) (ExecutionResult, error) {
	return returner.settings.run(executionContext, arguments, true)
}

// SendCommand runs arguments and returns their combined output.
func (returner Returner) SendCommand(executionContext context.Context, arguments ...string) (string, error) {
	result, executionError := returner.Execute(executionContext, arguments...)
	if executionError != nil {
		return "", executionError
	}
	return result.Output(), nil
}

// SendCommandLine runs the tokens of command as argv.
func (returner Returner) SendCommandLine(executionContext context.Context, command Command) (string, error) {
	return returner.SendCommand(executionContext, command.Arguments()...)
}

// Streamer runs commands without keeping their output in memory.
type Streamer struct {
	settings shellSettings
}

// NewStreamer constructs a Streamer for reapingContext.
func NewStreamer(logger *zap.Logger, reapingContext ReapingContext, verbosity ShellVerbosity) Streamer {
	return Streamer{settings: newShellSettings(logger, reapingContext, verbosity)}
}

// WithWorkingDirectory runs commands in workingDirectory.
func (streamer Streamer) WithWorkingDirectory(workingDirectory string) Streamer {
	streamer.settings.workingDirectory = workingDirectory
	return streamer
}

// WithEnvironment replaces the configured environment overrides.
func (streamer Streamer) WithEnvironment(environment map[string]string) Streamer {
	streamer.settings.environment = maps.Clone(environment)
	return streamer
}

// WithUpdatedEnvironment merges environment into the configured overrides.
func (streamer Streamer) WithUpdatedEnvironment(environment map[string]string) Streamer {
	streamer.settings = streamer.settings.withUpdatedEnvironment(environment)
	return streamer
}

// DoNotPrintCommand hides arguments from announcements.
func (streamer Streamer) DoNotPrintCommand() Streamer {
	streamer.settings.verbosity = streamer.settings.verbosity.WithArgumentsHidden()
	return streamer
}

// WithVerbosity replaces the verbosity.
func (streamer Streamer) WithVerbosity(verbosity ShellVerbosity) Streamer {
	streamer.settings.verbosity = verbosity
	return streamer
}

// WithResultHandler accepts the non-zero results resultHandler approves.
func (streamer Streamer) WithResultHandler(resultHandler ResultHandler) Streamer {
	streamer.settings.resultHandler = resultHandler
	return streamer
}

// WithStandardInput feeds standardInput to every command. Forwarding stops when
// the command exits; a Read on standardInput that is blocked at that moment is
// left to return on its own and its data is discarded.
func (streamer Streamer) WithStandardInput(standardInput io.Reader) Streamer {
	streamer.settings.standardInput = standardInput
	return streamer
}

// WithOutputWriters redirects echoed output.
func (streamer Streamer) WithOutputWriters(outputWriters OutputWriters) Streamer {
	streamer.settings.outputWriters = outputWriters
	return streamer
}

// WithEventObserver receives command lifecycle events.
func (streamer Streamer) WithEventObserver(eventObserver CommandEventObserver) Streamer {
	streamer.settings.eventObserver = eventObserver
	return streamer
}

// SendCommand runs arguments. The result carries only the exit code. A verbosity
// that explains output is rejected with ErrExplainOutputRequiresCapture.
func (streamer Streamer) SendCommand(executionContext context.Context, arguments ...string) (ExecutionResult, error) {
	return streamer.settings.run(executionContext, arguments, false)
}

// SendCommandLine runs the tokens of command as argv.
func (streamer Streamer) SendCommandLine(executionContext context.Context, command Command) (ExecutionResult, error) {
	return streamer.SendCommand(executionContext, command.Arguments()...)
}

// ReturnerPresets are the common Returner verbosities.
type ReturnerPresets struct {
	Silent      Returner
	Stream      Returner
	StreamChars Returner
}

// Returners builds the silent, streaming and character-streaming Returners.
func (reapingContext ReapingContext) Returners(logger *zap.Logger) ReturnerPresets {
	return ReturnerPresets{
		Silent:      NewReturner(logger, reapingContext, VerbositySilent),
		Stream:      NewReturner(logger, reapingContext, VerbosityStream),
		StreamChars: NewReturner(logger, reapingContext, VerbosityStreamChars),
	}
}

// StreamerPresets are the common Streamer verbosities.
type StreamerPresets struct {
	Silent      Streamer
	Stream      Streamer
	StreamChars Streamer
}

// Streamers builds the silent, streaming and character-streaming Streamers.
func (reapingContext ReapingContext) Streamers(logger *zap.Logger) StreamerPresets {
	return StreamerPresets{
		Silent:      NewStreamer(logger, reapingContext, VerbositySilent),
		Stream:      NewStreamer(logger, reapingContext, VerbosityStream),
		StreamChars: NewStreamer(logger, reapingContext, VerbosityStreamChars),
	}
}
