package shellinfo

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/procshell/internal/escape"
	"github.com/temirov/procshell/internal/shellcontext"
	flagutils "github.com/temirov/procshell/internal/utils/flags"
)

const (
	escapeUseConstant              = "escape [flags] [--] text..."
	escapeExampleConstant          = "  procshell escape 'a b' '$HOME'\n  procshell escape --dialect powershell -- -Dname.key=1"
	escapeShortDescription         = "Escape text for a shell dialect"
	escapeLongDescription          = "escape prints each argument escaped so that the chosen shell reads it back as one literal token. Put -- before text that starts with a dash."
	escapeContextFlagName          = "context"
	escapeContextFlagUsage         = "Escape context."
	escapeStrategyFlagName         = "strategy"
	escapeStrategyFlagUsage        = "Escape strategy."
	escapeDialectFlagName          = "dialect"
	escapeDialectFlagUsage         = "Take the escape context from a shell dialect instead of --context"
	escapeJoinFlagName             = "join"
	escapeJoinFlagUsage            = "Print the escaped arguments on one line separated by spaces"
	defaultEscapeContextName       = "unix-unquoted"
	defaultEscapeStrategyName      = "char"
	quoteStrategyName              = "quote"
	noneStrategyName               = "none"
	missingEscapeCharacterMessage  = "escape context has no escape character"
	missingEscapeCharacterTemplate = "%w: %s supports only the quote and none strategies"
	argumentSeparatorConstant      = " "
	lineTerminatorConstant         = "\n"
)

// ErrMissingEscapeCharacter indicates a character strategy was requested for a context that cannot escape characters.
var ErrMissingEscapeCharacter = errors.New(missingEscapeCharacterMessage)

// EscapeCommandBuilder assembles the escape command.
type EscapeCommandBuilder struct{}

type escapeFlagValues struct {
	contextName  string
	strategyName string
	dialectName  string
	join         bool
}

// Build constructs the escape command.
func (builder *EscapeCommandBuilder) Build() (*cobra.Command, error) {
	values := &escapeFlagValues{}
	command := &cobra.Command{
		Use:     escapeUseConstant,
		Short:   escapeShortDescription,
		Long:    escapeLongDescription,
		Example: escapeExampleConstant,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runEscape(command.OutOrStdout(), arguments, values)
		},
	}

	flagutils.AddChoiceFlag(command.Flags(), &values.contextName, escapeContextFlagName, "", defaultEscapeContextName, escape.ContextNames(), escapeContextFlagUsage)
	flagutils.AddChoiceFlag(command.Flags(), &values.strategyName, escapeStrategyFlagName, "", defaultEscapeStrategyName, escape.StrategyNames(), escapeStrategyFlagUsage)
	flagutils.AddChoiceFlag(command.Flags(), &values.dialectName, escapeDialectFlagName, "", "", shellcontext.DialectNames(), escapeDialectFlagUsage)
	command.Flags().BoolVar(&values.join, escapeJoinFlagName, false, escapeJoinFlagUsage)

	return command, nil
}

func runEscape(writer io.Writer, arguments []string, values *escapeFlagValues) error {
	escapeContext, contextError := values.resolveContext()
	if contextError != nil {
		return contextError
	}

	strategy, strategyError := resolveStrategy(escapeContext, values.strategyName)
	if strategyError != nil {
		return strategyError
	}

	escapedArguments := escape.EscapeEach(strategy, arguments)
	separator := lineTerminatorConstant
	if values.join {
		separator = argumentSeparatorConstant
	}
	_, writeError := io.WriteString(writer, strings.Join(escapedArguments, separator)+lineTerminatorConstant)
	return writeError
}

func (values *escapeFlagValues) resolveContext() (escape.Context, error) {
	if len(strings.TrimSpace(values.dialectName)) == 0 {
		return escape.LookupContext(values.contextName)
	}
	dialect, dialectError := shellcontext.ParseDialect(values.dialectName)
	if dialectError != nil {
		return escape.Context{}, dialectError
	}
	return dialect.EscapeContext(), nil
}

// resolveStrategy reports a missing escape character as an error rather than
// letting the escape package panic.
func resolveStrategy(escapeContext escape.Context, strategyName string) (escape.Strategy, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(strategyName))
	if _, hasEscapeCharacter := escapeContext.EscapeCharacter(); !hasEscapeCharacter {
		if normalizedName != quoteStrategyName && normalizedName != noneStrategyName {
			return nil, fmt.Errorf(missingEscapeCharacterTemplate, ErrMissingEscapeCharacter, escapeContext.Name())
		}
	}
	return escape.ResolveStrategy(escapeContext, normalizedName)
}
