package process

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/procshell/internal/execshell"
	flagutils "github.com/temirov/procshell/internal/utils/flags"
)

const (
	runUseConstant               = "run [flags] -- command [argument ...]"
	runShortDescription          = "Run a command to completion under the process registry"
	runLongDescription           = "run starts a command, drains its output according to the selected verbosity and stops it together with its descendants when interrupted."
	runVerbosityFlagName         = "verbosity"
	runVerbosityFlagUsage        = "Verbosity preset for announcing and echoing the command."
	runOutBeforeErrFlagName      = "out-before-err"
	runOutBeforeErrFlagUsage     = "Read standard error only after standard output closes"
	runAcceptExitCodeFlagName    = "accept-exit-code"
	runAcceptExitCodeFlagUsage   = "Non-zero exit code treated as success (repeatable)"
	runStreamFlagName            = "stream"
	runStreamFlagUsage           = "Do not keep output in memory; only echo it"
	runHideArgumentsFlagName     = "hide-arguments"
	runHideArgumentsFlagUsage    = "Announce the command without its arguments"
	commandArgumentSeparatorText = " "
)

// RunCommandBuilder assembles the run command.
type RunCommandBuilder struct {
	LoggerProvider         LoggerProvider
	ConsoleLoggerProvider  LoggerProvider
	ReapingContextProvider ReapingContextProvider
	ConfigurationProvider  ConfigurationProvider
}

type runFlagValues struct {
	launchFlagValues
	verbosity     string
	outBeforeErr  bool
	acceptedCodes []int
	streamOnly    bool
	hideArguments bool
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	values := &runFlagValues{}
	command := &cobra.Command{
		Use:   runUseConstant,
		Short: runShortDescription,
		Long:  runLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, values)
		},
	}

	bindLaunchFlags(command, &values.launchFlagValues)
	flagutils.AddChoiceFlag(command.Flags(), &values.verbosity, runVerbosityFlagName, "", defaultVerbosityPresetName, execshell.VerbosityPresetNames(), runVerbosityFlagUsage)
	command.Flags().BoolVar(&values.outBeforeErr, runOutBeforeErrFlagName, false, runOutBeforeErrFlagUsage)
	command.Flags().IntSliceVar(&values.acceptedCodes, runAcceptExitCodeFlagName, nil, runAcceptExitCodeFlagUsage)
	command.Flags().BoolVar(&values.streamOnly, runStreamFlagName, false, runStreamFlagUsage)
	command.Flags().BoolVar(&values.hideArguments, runHideArgumentsFlagName, false, runHideArgumentsFlagUsage)

	return command, nil
}

func (builder *RunCommandBuilder) run(command *cobra.Command, arguments []string, values *runFlagValues) error {
	configuration := resolveConfiguration(builder.ConfigurationProvider)
	if command.Flags().Changed(runVerbosityFlagName) {
		configuration.Verbosity = values.verbosity
	}
	if command.Flags().Changed(runOutBeforeErrFlagName) {
		configuration.OutBeforeErr = values.outBeforeErr
	}

	verbosity, verbosityError := configuration.ResolveVerbosity()
	if verbosityError != nil {
		return verbosityError
	}
	if values.hideArguments {
		verbosity = verbosity.WithArgumentsHidden()
	}

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

	var resultHandler execshell.ResultHandler
	if len(values.acceptedCodes) > 0 {
		resultHandler = execshell.AcceptExitCodes(values.acceptedCodes...)
	}

	if values.streamOnly {
		streamer := execshell.NewStreamer(logger, reapingContext, verbosity).
			WithWorkingDirectory(workingDirectory).
			WithEnvironment(values.environment).
			WithResultHandler(resultHandler).
			WithOutputWriters(commandOutputWriters(command)).
			WithEventObserver(commandEventObserver(builder.ConsoleLoggerProvider))
		if values.forwardInput {
			streamer = streamer.WithStandardInput(command.InOrStdin())
		}
		_, streamError := streamer.SendCommand(command.Context(), arguments...)
		return streamError
	}

	returner := execshell.NewReturner(logger, reapingContext, verbosity).
		WithWorkingDirectory(workingDirectory).
		WithEnvironment(values.environment).
		WithResultHandler(resultHandler).
		WithOutputWriters(commandOutputWriters(command)).
		WithEventObserver(commandEventObserver(builder.ConsoleLoggerProvider))
	if values.forwardInput {
		returner = returner.WithStandardInput(command.InOrStdin())
	}

	result, executionError := returner.Execute(command.Context(), arguments...)
	if executionError != nil {
		return executionError
	}
	if verbosity.PrintInSequence != execshell.PrintInSequenceNone || verbosity.ExplainOutput {
		return nil
	}
	if writeError := writeText(command.OutOrStdout(), result.StandardOutput); writeError != nil {
		return writeError
	}
	return writeText(command.ErrOrStderr(), result.StandardError)
}

func joinArguments(arguments []string) string {
	return strings.Join(arguments, commandArgumentSeparatorText)
}
