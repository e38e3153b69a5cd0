package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/procshell/cmd/cli/process"
	"github.com/temirov/procshell/cmd/cli/shellinfo"
	"github.com/temirov/procshell/internal/execshell"
	"github.com/temirov/procshell/internal/reaper"
	"github.com/temirov/procshell/internal/shellcontext"
	"github.com/temirov/procshell/internal/shutdown"
	"github.com/temirov/procshell/internal/utils"
	flagutils "github.com/temirov/procshell/internal/utils/flags"
)

const (
	applicationNameConstant                 = "procshell"
	applicationShortDescriptionConstant     = "Launch and supervise shell commands"
	applicationLongDescriptionConstant      = "procshell runs commands with controlled output capture, escapes text for shell dialects and stops every launched process together with its descendants on exit."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	shellConfigurationKeyConstant           = "shell"
	reaperConfigurationKeyConstant          = "reaper"
	contextConfigurationKeyConstant         = "context"
	reaperShortPollIntervalKeyConstant      = reaperConfigurationKeyConstant + ".short_poll_interval"
	reaperIdlePollIntervalKeyConstant       = reaperConfigurationKeyConstant + ".idle_poll_interval"
	reaperGracePeriodKeyConstant            = reaperConfigurationKeyConstant + ".grace_period"
	reaperForcedExitTimeoutKeyConstant      = reaperConfigurationKeyConstant + ".forced_exit_timeout"
	environmentPrefixConstant               = "PROCSHELL"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationDialectFieldConstant       = "dialect"
	invocationIdentifierFieldConstant       = "invocation_id"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	registryCreationErrorTemplateConstant   = "unable to start process registry: %w"
	executionContextErrorTemplateConstant   = "unable to resolve execution context: %w"
	interruptedMessageConstant              = "interrupted by signal"
	shutdownCompletedMessageConstant        = "Shutdown completed"
	defaultConfigurationSearchPathConstant  = "."
	interruptedExitCodeConstant             = 130
	genericFailureExitCodeConstant          = 1
)

// ErrInterrupted reports that SIGINT or SIGTERM ended the command.
var ErrInterrupted = errors.New(interruptedMessageConstant)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Shell   process.ShellConfiguration     `mapstructure:"shell"`
	Reaper  reaper.Options                 `mapstructure:"reaper"`
	Context shellinfo.ContextConfiguration `mapstructure:"context"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, structured
// logger, and the process registry shared by every command.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	shutdownCoordinator    *shutdown.Coordinator
	registry               *reaper.Registry
	executionContext       shellcontext.ExecutionContext
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		executionContext:       shellcontext.UnknownExecutionContext(shellcontext.DialectUnixDirectCommandsOnly),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logLevelFlagValue, logLevelFlagNameConstant, "", "", utils.LogLevelNames(), logLevelFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logFormatFlagValue, logFormatFlagNameConstant, "", "", utils.LogFormatNames(), logFormatFlagUsageConstant)

	diagnosticLoggerProvider := func() *zap.Logger {
		return application.logger
	}
	consoleLoggerProvider := func() *zap.Logger {
		return application.consoleLogger
	}

	runBuilder := process.RunCommandBuilder{
		LoggerProvider:         diagnosticLoggerProvider,
		ConsoleLoggerProvider:  consoleLoggerProvider,
		ReapingContextProvider: application.reapingContext,
		ConfigurationProvider: func() process.ShellConfiguration {
			return application.configuration.Shell
		},
	}
	runCommand, runBuildError := runBuilder.Build()
	if runBuildError == nil {
		cobraCommand.AddCommand(runCommand)
	}

	spawnBuilder := process.SpawnCommandBuilder{
		LoggerProvider:         diagnosticLoggerProvider,
		ReapingContextProvider: application.reapingContext,
	}
	spawnCommand, spawnBuildError := spawnBuilder.Build()
	if spawnBuildError == nil {
		cobraCommand.AddCommand(spawnCommand)
	}

	killBuilder := process.KillCommandBuilder{
		LoggerProvider:         diagnosticLoggerProvider,
		ConsoleLoggerProvider:  consoleLoggerProvider,
		ReapingContextProvider: application.reapingContext,
	}
	killCommand, killBuildError := killBuilder.Build()
	if killBuildError == nil {
		cobraCommand.AddCommand(killCommand)
	}

	escapeBuilder := shellinfo.EscapeCommandBuilder{}
	escapeCommand, escapeBuildError := escapeBuilder.Build()
	if escapeBuildError == nil {
		cobraCommand.AddCommand(escapeCommand)
	}

	contextBuilder := shellinfo.ContextCommandBuilder{
		ConfigurationProvider: func() shellinfo.ContextConfiguration {
			return application.configuration.Context
		},
	}
	contextCommand, contextBuildError := contextBuilder.Build()
	if contextBuildError == nil {
		cobraCommand.AddCommand(contextCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// RootCommand exposes the Cobra root so callers can set arguments and streams.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Configuration returns the configuration resolved by the last execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute runs the command hierarchy until it finishes or a termination signal
// arrives, stops every registered process and flushes the logger.
func (application *Application) Execute() error {
	return application.ExecuteContext(context.Background())
}

// ExecuteContext behaves like Execute under a caller-provided context.
func (application *Application) ExecuteContext(parentContext context.Context) error {
	executionContext, cancelExecution := context.WithCancel(parentContext)
	defer cancelExecution()
	signalContext, stopSignals := signal.NotifyContext(executionContext, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	var group run.Group
	group.Add(
		func() error {
			return application.rootCommand.ExecuteContext(executionContext)
		},
		func(error) {
			cancelExecution()
		},
	)
	group.Add(
		func() error {
			<-signalContext.Done()
			if executionContext.Err() != nil {
				return nil
			}
			return ErrInterrupted
		},
		func(error) {
			stopSignals()
		},
	)

	executionError := group.Run()

	application.shutdown()

	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// ExitCode maps an execution error to the status the program should exit with.
// Failed commands keep their own exit code and signals map to 130.
func ExitCode(executionError error) int {
	if executionError == nil {
		return 0
	}
	if errors.Is(executionError, ErrInterrupted) {
		return interruptedExitCodeConstant
	}
	var exitCoder interface{ ExitCode() int }
	if errors.As(executionError, &exitCoder) && exitCoder.ExitCode() > 0 {
		return exitCoder.ExitCode()
	}
	return genericFailureExitCodeConstant
}

func (application *Application) reapingContext() (execshell.ReapingContext, error) {
	if application.registry == nil {
		return execshell.ReapingContext{}, process.ErrReapingContextUnavailable
	}
	return execshell.ReapingContext{
		ExecutionContext: application.executionContext,
		Registry:         application.registry,
	}, nil
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	executionContext, executionContextError := application.configuration.Context.ResolveExecutionContext()
	if executionContextError != nil {
		return fmt.Errorf(executionContextErrorTemplateConstant, executionContextError)
	}
	application.executionContext = executionContext

	if application.registry == nil {
		coordinator := shutdown.NewCoordinator(application.logger)
		registry, registryError := reaper.New(application.logger, coordinator, application.configuration.Reaper)
		if registryError != nil {
			return fmt.Errorf(registryCreationErrorTemplateConstant, registryError)
		}
		application.shutdownCoordinator = coordinator
		application.registry = registry
	}

	invocationIdentifier := uuid.NewString()
	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(invocationIdentifierFieldConstant, invocationIdentifier),
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationDialectFieldConstant, string(executionContext.Dialect())),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithInvocationIdentifier(updatedContext, invocationIdentifier)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// shutdown stops every process the registry still tracks. A later execution
// starts a fresh registry.
func (application *Application) shutdown() {
	if application.shutdownCoordinator == nil {
		return
	}
	application.shutdownCoordinator.Shutdown()
	application.logger.Debug(shutdownCompletedMessageConstant)
	application.shutdownCoordinator = nil
	application.registry = nil
}

func defaultConfigurationValues() map[string]any {
	reaperDefaults := reaper.DefaultOptions()
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:    string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:   string(utils.LogFormatConsole),
		reaperShortPollIntervalKeyConstant: reaperDefaults.ShortPollInterval,
		reaperIdlePollIntervalKeyConstant:  reaperDefaults.IdlePollInterval,
		reaperGracePeriodKeyConstant:       reaperDefaults.GracePeriod,
		reaperForcedExitTimeoutKeyConstant: reaperDefaults.ForcedExitTimeout,
	}
	for configurationKey, configurationValue := range process.DefaultConfigurationValues(shellConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range shellinfo.DefaultConfigurationValues(contextConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	return defaultValues
}

func (application *Application) flushLogger() error {
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if syncError := application.syncLoggerInstance(logger); syncError != nil {
			return syncError
		}
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
