package process

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/temirov/procshell/internal/signals"
	flagutils "github.com/temirov/procshell/internal/utils/flags"
)

const (
	killUseConstant               = "kill [flags] pid"
	killShortDescription          = "Send a signal to a process through the kill command"
	killLongDescription           = "kill runs the system kill command for a process identifier and can treat a missing process as a warning."
	killSignalFlagName            = "signal"
	killSignalFlagShorthand       = "s"
	killSignalFlagUsage           = "Signal to deliver."
	killIgnoreMissingFlagName     = "ignore-missing"
	killIgnoreMissingFlagUsage    = "Log a warning instead of failing when the process does not exist"
	invalidProcessIdentifierError = "invalid process identifier %q: %w"
)

// KillCommandBuilder assembles the kill command.
type KillCommandBuilder struct {
	LoggerProvider         LoggerProvider
	ConsoleLoggerProvider  LoggerProvider
	ReapingContextProvider ReapingContextProvider
}

type killFlagValues struct {
	signalName    string
	ignoreMissing bool
}

// Build constructs the kill command.
func (builder *KillCommandBuilder) Build() (*cobra.Command, error) {
	values := &killFlagValues{}
	command := &cobra.Command{
		Use:   killUseConstant,
		Short: killShortDescription,
		Long:  killLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, values)
		},
	}

	flagutils.AddChoiceFlag(command.Flags(), &values.signalName, killSignalFlagName, killSignalFlagShorthand, string(signals.KillSignalKill), signals.KillSignalNames(), killSignalFlagUsage)
	command.Flags().BoolVar(&values.ignoreMissing, killIgnoreMissingFlagName, false, killIgnoreMissingFlagUsage)

	return command, nil
}

func (builder *KillCommandBuilder) run(command *cobra.Command, arguments []string, values *killFlagValues) error {
	processIdentifier, parseError := strconv.Atoi(arguments[0])
	if parseError != nil {
		return fmt.Errorf(invalidProcessIdentifierError, arguments[0], parseError)
	}

	signal, signalError := signals.ParseKillSignal(values.signalName)
	if signalError != nil {
		return signalError
	}

	reapingContext, reapingContextError := resolveReapingContext(builder.ReapingContextProvider)
	if reapingContextError != nil {
		return reapingContextError
	}

	logger := resolveLogger(builder.LoggerProvider)
	returner := reapingContext.Returners(logger).Silent.WithEventObserver(commandEventObserver(builder.ConsoleLoggerProvider))
	killer := signals.NewKiller(logger, returner)

	return killer.Kill(command.Context(), signals.Pid(processIdentifier), signal, signals.KillOptions{IgnoreNoSuchProcess: values.ignoreMissing})
}
