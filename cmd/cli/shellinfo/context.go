package shellinfo

import (
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/procshell/internal/shellcontext"
	flagutils "github.com/temirov/procshell/internal/utils/flags"
)

const (
	contextUseConstant            = "context"
	contextShortDescription       = "Describe the execution context used for launched commands"
	contextLongDescription        = "context prints what is known about the shell dialect, path convention and sandbox of the current host. Flags override the configured values."
	contextPlatformFlagName       = "platform"
	contextPlatformFlagUsage      = "Platform preset to start from (defaults to the configured platform)"
	contextDialectFlagName        = "dialect"
	contextDialectFlagUsage       = "Shell dialect (defaults to the configured dialect)"
	contextContainerFlagName      = "container"
	contextContainerFlagUsage     = "Whether commands run inside a container"
	contextJobSchedulerFlagName   = "job-scheduler"
	contextJobSchedulerFlagUsage  = "Whether commands run inside a batch-job allocation"
	contextNeedsModulesFlagName   = "needs-modules"
	contextNeedsModulesFlagUsage  = "Whether environment modules must be loaded"
	yamlIndentationSpacesConstant = 2
)

// ConfigurationProvider yields the persisted context configuration.
type ConfigurationProvider func() ContextConfiguration

// ContextCommandBuilder assembles the context command.
type ContextCommandBuilder struct {
	ConfigurationProvider ConfigurationProvider
}

type contextFlagValues struct {
	platform       string
	dialect        string
	inContainer    shellcontext.Tristate
	inJobScheduler shellcontext.Tristate
	needsModules   shellcontext.Tristate
}

// Build constructs the context command.
func (builder *ContextCommandBuilder) Build() (*cobra.Command, error) {
	values := &contextFlagValues{}
	command := &cobra.Command{
		Use:   contextUseConstant,
		Short: contextShortDescription,
		Long:  contextLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, values)
		},
	}

	flagutils.AddChoiceFlag(command.Flags(), &values.platform, contextPlatformFlagName, "", "", PlatformNames(), contextPlatformFlagUsage)
	flagutils.AddChoiceFlag(command.Flags(), &values.dialect, contextDialectFlagName, "", "", shellcontext.DialectNames(), contextDialectFlagUsage)
	flagutils.AddTristateFlag(command.Flags(), &values.inContainer, contextContainerFlagName, contextContainerFlagUsage)
	flagutils.AddTristateFlag(command.Flags(), &values.inJobScheduler, contextJobSchedulerFlagName, contextJobSchedulerFlagUsage)
	flagutils.AddTristateFlag(command.Flags(), &values.needsModules, contextNeedsModulesFlagName, contextNeedsModulesFlagUsage)

	return command, nil
}

func (builder *ContextCommandBuilder) run(command *cobra.Command, values *contextFlagValues) error {
	configuration := DefaultContextConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if len(strings.TrimSpace(values.platform)) > 0 {
		configuration.Platform = values.platform
	}
	if len(strings.TrimSpace(values.dialect)) > 0 {
		configuration.Dialect = values.dialect
	}

	baseContext, resolveError := configuration.ResolveExecutionContext()
	if resolveError != nil {
		return resolveError
	}
	executionContext := values.apply(baseContext)

	encoder := yaml.NewEncoder(command.OutOrStdout())
	encoder.SetIndent(yamlIndentationSpacesConstant)
	if encodeError := encoder.Encode(executionContext.Describe()); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}

// apply overlays the known flag values. Entering a container or a job allocation
// also applies the implications of doing so.
func (values *contextFlagValues) apply(baseContext shellcontext.ExecutionContext) shellcontext.ExecutionContext {
	executionContext := shellcontext.NewExecutionContext(
		baseContext.Dialect(),
		baseContext.PathConvention(),
		overlayTristate(values.inContainer, baseContext.InContainer()),
		overlayTristate(values.inJobScheduler, baseContext.InJobScheduler()),
		overlayTristate(values.needsModules, baseContext.NeedsModules()),
	)
	if values.inContainer == shellcontext.TristateTrue {
		executionContext = executionContext.EnterContainer()
	}
	if values.inJobScheduler == shellcontext.TristateTrue {
		executionContext = executionContext.EnterJobScheduler()
	}
	return executionContext
}

func overlayTristate(override shellcontext.Tristate, fallback shellcontext.Tristate) shellcontext.Tristate {
	if override.Known() {
		return override
	}
	return fallback
}
