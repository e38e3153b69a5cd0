package escape

import (
	"fmt"
	"strings"
)

const (
	noEscapingContextNameConstant            = "none"
	unixUnquotedContextNameConstant          = "unix-unquoted"
	unixDoubleQuotedContextNameConstant      = "unix-double-quoted"
	windowsCommandPromptContextNameConstant  = "windows-cmd"
	windowsPowerShellContextNameConstant     = "windows-powershell"
	unixEscapeCharacterConstant              = '\\'
	windowsCommandPromptEscapeCharacter      = '^'
	windowsPowerShellEscapeCharacterConstant = '`'
	missingEscapeCharacterTemplateConstant   = "escape context %q has no escape character; only quote wrapping is supported"
	unknownContextNameTemplateConstant       = "unknown escape context %q"
)

// Context is the set of characters a dialect treats specially together with the
// character used to neutralize them. The zero value escapes nothing.
type Context struct {
	name               string
	charactersToEscape []rune
	escapeCharacter    rune
	hasEscapeCharacter bool
}

// NewContext builds a Context that prefixes charactersToEscape with escapeCharacter.
func NewContext(name string, escapeCharacter rune, charactersToEscape ...rune) Context {
	duplicatedCharacters := make([]rune, len(charactersToEscape))
	copy(duplicatedCharacters, charactersToEscape)
	return Context{
		name:               name,
		charactersToEscape: duplicatedCharacters,
		escapeCharacter:    escapeCharacter,
		hasEscapeCharacter: true,
	}
}

var (
	// NoEscaping treats every character literally and defines no escape character.
	NoEscaping = Context{name: noEscapingContextNameConstant}

	// UnixUnquoted covers tokens passed to a POSIX shell outside of any quotes.
	// Braces are included because `echo {a,b}` expands.
	UnixUnquoted = NewContext(unixUnquotedContextNameConstant, unixEscapeCharacterConstant, ' ', '{', '}', '"', '\\', '$')

	// UnixDoubleQuoted covers text placed inside a double-quoted POSIX shell string.
	UnixDoubleQuoted = NewContext(unixDoubleQuotedContextNameConstant, unixEscapeCharacterConstant, '"', '\\', '$')

	// WindowsCommandPrompt covers cmd.exe arguments.
	WindowsCommandPrompt = NewContext(windowsCommandPromptContextNameConstant, windowsCommandPromptEscapeCharacter, ' ', '=')

	// WindowsPowerShell covers PowerShell arguments. The period is escaped because
	// PowerShell splits `-Dkey.value` style options at it.
	WindowsPowerShell = NewContext(windowsPowerShellContextNameConstant, windowsPowerShellEscapeCharacterConstant, ' ', '=', '.')
)

var contextsByName = map[string]Context{
	noEscapingContextNameConstant:           NoEscaping,
	unixUnquotedContextNameConstant:         UnixUnquoted,
	unixDoubleQuotedContextNameConstant:     UnixDoubleQuoted,
	windowsCommandPromptContextNameConstant: WindowsCommandPrompt,
	windowsPowerShellContextNameConstant:    WindowsPowerShell,
}

// ContextNames lists the names accepted by LookupContext.
func ContextNames() []string {
	return []string{
		noEscapingContextNameConstant,
		unixUnquotedContextNameConstant,
		unixDoubleQuotedContextNameConstant,
		windowsCommandPromptContextNameConstant,
		windowsPowerShellContextNameConstant,
	}
}

// LookupContext resolves one of the predefined contexts by name.
func LookupContext(name string) (Context, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))
	context, exists := contextsByName[normalizedName]
	if !exists {
		return Context{}, fmt.Errorf(unknownContextNameTemplateConstant, name)
	}
	return context, nil
}

// Name returns the context identifier.
func (context Context) Name() string {
	if len(context.name) == 0 {
		return noEscapingContextNameConstant
	}
	return context.name
}

// CharactersToEscape returns a copy of the special characters.
func (context Context) CharactersToEscape() []rune {
	duplicatedCharacters := make([]rune, len(context.charactersToEscape))
	copy(duplicatedCharacters, context.charactersToEscape)
	return duplicatedCharacters
}

// EscapeCharacter returns the escape character and whether the context defines one.
func (context Context) EscapeCharacter() (rune, bool) {
	return context.escapeCharacter, context.hasEscapeCharacter
}

// WithQuotes derives the quote-wrapping strategy.
func (context Context) WithQuotes() Strategy {
	return quoteStrategy{context: context}
}

// WithEscapeCharacter derives the per-character escaping strategy. It panics when
// the context has no escape character.
func (context Context) WithEscapeCharacter() Strategy {
	context.mustHaveEscapeCharacter()
	return escapeCharacterStrategy{context: context}
}

// WithEscapeCharacterAndNewlines derives the per-character strategy that also
// rewrites newlines as a literal backslash-n. It panics when the context has no
// escape character.
func (context Context) WithEscapeCharacterAndNewlines() Strategy {
	context.mustHaveEscapeCharacter()
	return escapeCharacterAndNewlineStrategy{base: escapeCharacterStrategy{context: context}}
}

func (context Context) mustHaveEscapeCharacter() {
	if !context.hasEscapeCharacter {
		panic(fmt.Sprintf(missingEscapeCharacterTemplateConstant, context.Name()))
	}
}

func (context Context) requiresEscaping(character rune) bool {
	for _, candidate := range context.charactersToEscape {
		if candidate == character {
			return true
		}
	}
	return false
}

func (context Context) containsCharacterToEscape(text string) bool {
	for _, character := range text {
		if context.requiresEscaping(character) {
			return true
		}
	}
	return false
}
