package escape_test

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/procshell/internal/escape"
)

const (
	testPosixShellPathConstant      = "/bin/sh"
	testPrintfCommandPrefixConstant = "printf %s "
	testRoundTripTimeout            = 5 * time.Second
)

func TestStrategiesEscapeText(testInstance *testing.T) {
	testCases := []struct {
		name     string
		strategy escape.Strategy
		input    string
		expected string
	}{
		{
			name:     "none_identity",
			strategy: escape.None,
			input:    `a b "c" $d`,
			expected: `a b "c" $d`,
		},
		{
			name:     "no_escaping_quotes_identity",
			strategy: escape.NoEscaping.WithQuotes(),
			input:    `a b $c`,
			expected: `a b $c`,
		},
		{
			name:     "unix_quotes_wrap_when_special",
			strategy: escape.UnixUnquoted.WithQuotes(),
			input:    "hello world",
			expected: `"hello world"`,
		},
		{
			name:     "unix_quotes_untouched_when_plain",
			strategy: escape.UnixUnquoted.WithQuotes(),
			input:    "hello",
			expected: "hello",
		},
		{
			name:     "unix_unquoted_escape_character",
			strategy: escape.UnixUnquoted.WithEscapeCharacter(),
			input:    `a {b} "c" $d\e`,
			expected: `a\ \{b\}\ \"c\"\ \$d\\e`,
		},
		{
			name:     "unix_double_quoted_leaves_spaces",
			strategy: escape.UnixDoubleQuoted.WithEscapeCharacter(),
			input:    `say "$x"`,
			expected: `say \"\$x\"`,
		},
		{
			name:     "windows_command_prompt",
			strategy: escape.WindowsCommandPrompt.WithEscapeCharacter(),
			input:    "key=value with space",
			expected: "key^=value^ with^ space",
		},
		{
			name:     "windows_powershell",
			strategy: escape.WindowsPowerShell.WithEscapeCharacter(),
			input:    "-Dproperty.name=1",
			expected: "-Dproperty`.name`=1",
		},
		{
			name:     "newlines_become_literal",
			strategy: escape.UnixDoubleQuoted.WithEscapeCharacterAndNewlines(),
			input:    "first\n$second",
			expected: `first\n\$second`,
		},
		{
			name:     "empty_input",
			strategy: escape.UnixUnquoted.WithEscapeCharacter(),
			input:    "",
			expected: "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.strategy.Escape(testCase.input))
		})
	}
}

func TestCharacterStrategiesRequireEscapeCharacter(testInstance *testing.T) {
	require.Panics(testInstance, func() {
		escape.NoEscaping.WithEscapeCharacter()
	})
	require.Panics(testInstance, func() {
		escape.NoEscaping.WithEscapeCharacterAndNewlines()
	})
	require.NotPanics(testInstance, func() {
		escape.NoEscaping.WithQuotes()
	})
}

func TestEscapeEachPreservesOrder(testInstance *testing.T) {
	escapedTexts := escape.EscapeEach(escape.UnixUnquoted.WithEscapeCharacter(), []string{"a b", "c", "$d"})
	require.Equal(testInstance, []string{`a\ b`, "c", `\$d`}, escapedTexts)
}

func TestLookupContextAndResolveStrategy(testInstance *testing.T) {
	for _, contextName := range escape.ContextNames() {
		resolvedContext, lookupError := escape.LookupContext(contextName)
		require.NoError(testInstance, lookupError)
		require.Equal(testInstance, contextName, resolvedContext.Name())
	}

	_, lookupError := escape.LookupContext("fish")
	require.Error(testInstance, lookupError)

	strategy, resolveError := escape.ResolveStrategy(escape.UnixUnquoted, "char")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, `a\ b`, strategy.Escape("a b"))

	_, resolveError = escape.ResolveStrategy(escape.UnixUnquoted, "unknown")
	require.Error(testInstance, resolveError)
}

func TestUnixEscapingRoundTripsThroughShell(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("posix shell unavailable")
	}
	if _, lookupError := exec.LookPath(testPosixShellPathConstant); lookupError != nil {
		testInstance.Skip("posix shell unavailable")
	}

	inputs := []string{
		"plain",
		"with space",
		"{brace,expansion}",
		`"quoted"`,
		`back\slash`,
		"$HOME",
		`mixed {a} "b" $c \d`,
	}

	testCases := []struct {
		name    string
		wrap    func(escaped string) string
		escaper escape.Strategy
	}{
		{
			name:    "unquoted",
			wrap:    func(escaped string) string { return escaped },
			escaper: escape.UnixUnquoted.WithEscapeCharacter(),
		},
		{
			name:    "double_quoted",
			wrap:    func(escaped string) string { return `"` + escaped + `"` },
			escaper: escape.UnixDoubleQuoted.WithEscapeCharacter(),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			for _, input := range inputs {
				executionContext, cancel := context.WithTimeout(context.Background(), testRoundTripTimeout)
				commandLine := testPrintfCommandPrefixConstant + testCase.wrap(testCase.escaper.Escape(input))
				output, runError := exec.CommandContext(executionContext, testPosixShellPathConstant, "-c", commandLine).Output()
				cancel()
				require.NoError(testInstance, runError, commandLine)
				require.Equal(testInstance, input, string(output), commandLine)
			}
		})
	}
}
