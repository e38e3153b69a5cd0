package execshell

import (
	"strings"

	"github.com/temirov/procshell/internal/escape"
)

const (
	pipeOperatorConstant        = "|"
	redirectOperatorConstant    = ">"
	conjunctionOperatorConstant = "&&"
	shellCommandFlagConstant    = "-c"
)

type commandToken struct {
	text     string
	operator bool
}

// Command is an ordered list of command-line tokens. Operators joining commands are
// kept apart from ordinary tokens so rendering never escapes them.
type Command struct {
	tokens []commandToken
}

// NewCommand builds a Command from literal tokens.
func NewCommand(arguments ...string) Command {
	tokens := make([]commandToken, 0, len(arguments))
	for _, argument := range arguments {
		tokens = append(tokens, commandToken{text: argument})
	}
	return Command{tokens: tokens}
}

// Arguments returns every token, operators included.
func (command Command) Arguments() []string {
	arguments := make([]string, 0, len(command.tokens))
	for _, token := range command.tokens {
		arguments = append(arguments, token.text)
	}
	return arguments
}

// PipedTo feeds the output of command into consumer.
func (command Command) PipedTo(consumer Command) Command {
	return command.joined(pipeOperatorConstant, consumer)
}

// PipedToFile redirects the output of command into filePath.
func (command Command) PipedToFile(filePath string) Command {
	return command.joined(redirectOperatorConstant, NewCommand(filePath))
}

// And runs consumer only when command succeeds.
func (command Command) And(consumer Command) Command {
	return command.joined(conjunctionOperatorConstant, consumer)
}

func (command Command) joined(operator string, consumer Command) Command {
	tokens := make([]commandToken, 0, len(command.tokens)+len(consumer.tokens)+1)
	tokens = append(tokens, command.tokens...)
	tokens = append(tokens, commandToken{text: operator, operator: true})
	tokens = append(tokens, consumer.tokens...)
	return Command{tokens: tokens}
}

// RawWithNoEscaping joins the tokens with spaces.
func (command Command) RawWithNoEscaping() string {
	return strings.Join(command.Arguments(), commandArgumentsSeparatorConstant)
}

// Render escapes every non-operator token once with strategy and joins the result with spaces.
func (command Command) Render(strategy escape.Strategy) string {
	if strategy == nil {
		strategy = escape.None
	}
	renderedTokens := make([]string, 0, len(command.tokens))
	for _, token := range command.tokens {
		if token.operator {
			renderedTokens = append(renderedTokens, token.text)
			continue
		}
		renderedTokens = append(renderedTokens, strategy.Escape(token.text))
	}
	return strings.Join(renderedTokens, commandArgumentsSeparatorConstant)
}

// WrappedInShell hands the rendered command line to shellProgram via -c, which is
// how operators such as pipes take effect.
func (command Command) WrappedInShell(shellProgram string, strategy escape.Strategy) Command {
	return NewCommand(shellProgram, shellCommandFlagConstant, command.Render(strategy))
}

// CommandReturner builds Command values without running anything.
type CommandReturner struct{}

// SendCommand returns the tokens as a Command.
func (CommandReturner) SendCommand(arguments ...string) Command {
	return NewCommand(arguments...)
}
