package process

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/procshell/internal/execshell"
	"github.com/temirov/procshell/internal/ui"
	"github.com/temirov/procshell/internal/utils"
	flagutils "github.com/temirov/procshell/internal/utils/flags"
	pathutils "github.com/temirov/procshell/internal/utils/path"
)

const (
	workingDirectoryFlagName        = "working-directory"
	workingDirectoryFlagShorthand   = "C"
	workingDirectoryFlagUsage       = "Directory the process starts in (defaults to the current directory)"
	environmentFlagName             = "env"
	environmentFlagShorthand        = "e"
	environmentFlagUsage            = "Environment override as KEY=VALUE (repeatable)"
	standardInputFlagName           = "stdin"
	standardInputFlagUsage          = "Forward this program's standard input to the process"
	reapingContextMissingMessage    = "process registry is not initialized"
	exitStatusErrorTemplateConstant = "%s exited with status %d"
	argumentsFieldConstant          = "arguments"
	configurationFileFieldConstant  = "config_file"
	workingDirectoryFieldConstant   = "working_directory"
	invocationIdentifierField       = "invocation_id"
)

// ErrReapingContextUnavailable indicates a command ran before the process registry was created.
var ErrReapingContextUnavailable = errors.New(reapingContextMissingMessage)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ReapingContextProvider yields the execution context and registry shared by launched processes.
type ReapingContextProvider func() (execshell.ReapingContext, error)

// ConfigurationProvider yields the persisted shell configuration.
type ConfigurationProvider func() ShellConfiguration

// ExitStatusError reports a process that finished with a non-zero status.
type ExitStatusError struct {
	Command string
	Status  int
}

// Error describes the failing command and status.
func (exitError ExitStatusError) Error() string {
	return fmt.Sprintf(exitStatusErrorTemplateConstant, exitError.Command, exitError.Status)
}

// ExitCode returns the status the program should exit with.
func (exitError ExitStatusError) ExitCode() int {
	return exitError.Status
}

var workingDirectoryExpander = pathutils.NewHomeExpander()

// launchFlagValues holds the flags shared by commands that start processes.
type launchFlagValues struct {
	workingDirectory string
	environment      map[string]string
	forwardInput     bool
}

func bindLaunchFlags(command *cobra.Command, values *launchFlagValues) {
	command.Flags().StringVarP(&values.workingDirectory, workingDirectoryFlagName, workingDirectoryFlagShorthand, "", workingDirectoryFlagUsage)
	flagutils.AddEnvironmentFlag(command.Flags(), &values.environment, environmentFlagName, environmentFlagShorthand, environmentFlagUsage)
	command.Flags().BoolVar(&values.forwardInput, standardInputFlagName, false, standardInputFlagUsage)
}

func (values *launchFlagValues) resolveWorkingDirectory() (string, error) {
	return workingDirectoryExpander.ResolveWorkingDirectory(values.workingDirectory)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveReapingContext(provider ReapingContextProvider) (execshell.ReapingContext, error) {
	if provider == nil {
		return execshell.ReapingContext{}, ErrReapingContextUnavailable
	}
	reapingContext, provideError := provider()
	if provideError != nil {
		return execshell.ReapingContext{}, provideError
	}
	if reapingContext.Registry == nil {
		return execshell.ReapingContext{}, ErrReapingContextUnavailable
	}
	return reapingContext, nil
}

func resolveConfiguration(provider ConfigurationProvider) ShellConfiguration {
	if provider == nil {
		return DefaultShellConfiguration()
	}
	return provider()
}

func commandOutputWriters(command *cobra.Command) execshell.OutputWriters {
	return execshell.OutputWriters{
		StandardOutput: utils.NewFlushingWriter(command.OutOrStdout()),
		StandardError:  utils.NewFlushingWriter(command.ErrOrStderr()),
	}
}

func commandEventObserver(consoleLoggerProvider LoggerProvider) execshell.CommandEventObserver {
	return ui.NewConsoleCommandEventLogger(resolveLogger(consoleLoggerProvider))
}

func logLaunch(logger *zap.Logger, command *cobra.Command, arguments []string, workingDirectory string) {
	contextAccessor := utils.NewCommandContextAccessor()
	configurationFilePath, _ := contextAccessor.ConfigurationFilePath(command.Context())
	invocationIdentifier, _ := contextAccessor.InvocationIdentifier(command.Context())
	logger.Debug(
		command.Name(),
		zap.String(invocationIdentifierField, invocationIdentifier),
		zap.Strings(argumentsFieldConstant, arguments),
		zap.String(workingDirectoryFieldConstant, workingDirectory),
		zap.String(configurationFileFieldConstant, configurationFilePath),
	)
}

func writeText(writer io.Writer, text string) error {
	if len(text) == 0 {
		return nil
	}
	_, writeError := io.WriteString(writer, text)
	return writeError
}
