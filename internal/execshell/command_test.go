package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/procshell/internal/escape"
	"github.com/temirov/procshell/internal/execshell"
)

func TestCommandCompositionKeepsOperatorsUnescaped(testInstance *testing.T) {
	command := execshell.CommandReturner{}.SendCommand("echo", "a b").
		PipedTo(execshell.NewCommand("grep", "$x")).
		And(execshell.NewCommand("touch", "done")).
		PipedToFile("out file.txt")

	require.Equal(testInstance, []string{"echo", "a b", "|", "grep", "$x", "&&", "touch", "done", ">", "out file.txt"}, command.Arguments())
	require.Equal(testInstance, "echo a b | grep $x && touch done > out file.txt", command.RawWithNoEscaping())
	require.Equal(testInstance, `echo a\ b | grep \$x && touch done > out\ file.txt`, command.Render(escape.UnixUnquoted.WithEscapeCharacter()))
	require.Equal(testInstance, command.RawWithNoEscaping(), command.Render(nil))
}

func TestWrappedInShellRendersSingleScriptArgument(testInstance *testing.T) {
	command := execshell.NewCommand("printf", "%s", "hello world").PipedTo(execshell.NewCommand("tr", "a-z", "A-Z"))

	wrapped := command.WrappedInShell("/bin/sh", escape.UnixUnquoted.WithEscapeCharacter())

	require.Equal(testInstance, []string{"/bin/sh", "-c", `printf %s hello\ world | tr a-z A-Z`}, wrapped.Arguments())
}
