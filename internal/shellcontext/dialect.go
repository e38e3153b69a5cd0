package shellcontext

import (
	"fmt"
	"strings"

	"github.com/temirov/procshell/internal/escape"
)

const (
	dialectUnixDirectCommandsOnlyStringConstant = "unix-direct"
	dialectBashStringConstant                   = "bash"
	dialectBashPosixModeStringConstant          = "bash-posix"
	dialectBashShModeStringConstant             = "bash-sh"
	dialectZshStringConstant                    = "zsh"
	dialectZshPosixModeStringConstant           = "zsh-posix"
	dialectDashStringConstant                   = "dash"
	dialectPowerShellStringConstant             = "powershell"
	unsupportedDialectTemplateConstant          = "unsupported shell dialect: %s"
	unixForceFlagConstant                       = "-f"
	powerShellForceFlagConstant                 = "-Force"
)

// Dialect identifies the language that interprets a command line.
//
// The unix dialects form a taxonomy: every unix shell accepts direct commands,
// Bourne-like shells include every Bash-like shell, and some shells additionally
// run in a POSIX-compliant mode. PowerShell stands outside the unix family.
type Dialect string

// Supported dialects.
const (
	DialectUnixDirectCommandsOnly Dialect = Dialect(dialectUnixDirectCommandsOnlyStringConstant)
	DialectBash                   Dialect = Dialect(dialectBashStringConstant)
	DialectBashPosixMode          Dialect = Dialect(dialectBashPosixModeStringConstant)
	DialectBashShMode             Dialect = Dialect(dialectBashShModeStringConstant)
	DialectZsh                    Dialect = Dialect(dialectZshStringConstant)
	DialectZshPosixMode           Dialect = Dialect(dialectZshPosixModeStringConstant)
	DialectDash                   Dialect = Dialect(dialectDashStringConstant)
	DialectPowerShell             Dialect = Dialect(dialectPowerShellStringConstant)
)

var supportedDialects = []Dialect{
	DialectUnixDirectCommandsOnly,
	DialectBash,
	DialectBashPosixMode,
	DialectBashShMode,
	DialectZsh,
	DialectZshPosixMode,
	DialectDash,
	DialectPowerShell,
}

// DialectNames lists every dialect accepted by ParseDialect.
func DialectNames() []string {
	names := make([]string, 0, len(supportedDialects))
	for _, dialect := range supportedDialects {
		names = append(names, string(dialect))
	}
	return names
}

// ParseDialect resolves a dialect name case-insensitively.
func ParseDialect(value string) (Dialect, error) {
	normalizedValue := Dialect(strings.ToLower(strings.TrimSpace(value)))
	for _, dialect := range supportedDialects {
		if dialect == normalizedValue {
			return dialect, nil
		}
	}
	return "", fmt.Errorf(unsupportedDialectTemplateConstant, value)
}

// IsUnixDirectCommands reports whether plain unix executables can be invoked.
func (dialect Dialect) IsUnixDirectCommands() bool {
	switch dialect {
	case DialectUnixDirectCommandsOnly:
		return true
	default:
		return dialect.IsUnixShell()
	}
}

// IsUnixShell reports whether the dialect is an actual unix shell language.
func (dialect Dialect) IsUnixShell() bool {
	switch dialect {
	case DialectBash, DialectBashPosixMode, DialectBashShMode, DialectZsh, DialectZshPosixMode, DialectDash:
		return true
	default:
		return false
	}
}

// IsBourneLike reports membership in the Bourne shell family.
func (dialect Dialect) IsBourneLike() bool {
	switch dialect {
	case DialectBashShMode, DialectDash:
		return true
	default:
		return dialect.IsBashLike()
	}
}

// IsBourneCompliant reports whether the shell emulates the Bourne shell.
func (dialect Dialect) IsBourneCompliant() bool {
	return dialect == DialectBashShMode
}

// IsPosixCompliant reports whether the shell runs in POSIX mode.
func (dialect Dialect) IsPosixCompliant() bool {
	switch dialect {
	case DialectBashPosixMode, DialectZshPosixMode, DialectDash:
		return true
	default:
		return false
	}
}

// IsBashLike reports whether Bash extensions are available.
func (dialect Dialect) IsBashLike() bool {
	switch dialect {
	case DialectBash, DialectBashPosixMode, DialectZsh, DialectZshPosixMode:
		return true
	default:
		return false
	}
}

// EscapeContext returns the characters the dialect treats specially in an
// unquoted token. Direct command invocation passes argv untouched.
func (dialect Dialect) EscapeContext() escape.Context {
	switch {
	case dialect == DialectPowerShell:
		return escape.WindowsPowerShell
	case dialect.IsUnixShell():
		return escape.UnixUnquoted
	default:
		return escape.NoEscaping
	}
}

// ForceFlag returns the flag that forces removal in the dialect's rm equivalent.
func (dialect Dialect) ForceFlag() string {
	if dialect == DialectPowerShell {
		return powerShellForceFlagConstant
	}
	return unixForceFlagConstant
}

func (dialect Dialect) isUnixFamily() bool {
	return dialect.IsUnixDirectCommands()
}
