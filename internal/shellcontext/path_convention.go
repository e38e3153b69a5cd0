package shellcontext

import (
	"fmt"
	"path"
	"strings"
)

const (
	pathConventionUnknownStringConstant     = "unknown"
	pathConventionLinuxDirectStringConstant = "linux-direct"
	pathConventionMacHomebrewStringConstant = "mac-homebrew"
	pathConventionWindowsStringConstant     = "windows"
	homebrewBinaryDirectoryConstant         = "/opt/homebrew/bin"
	unsupportedPathConventionTemplate       = "unsupported path convention: %s"
)

// PathConvention describes how programs are located on the host.
type PathConvention string

// Supported path conventions.
const (
	PathConventionUnknown     PathConvention = PathConvention(pathConventionUnknownStringConstant)
	PathConventionLinuxDirect PathConvention = PathConvention(pathConventionLinuxDirectStringConstant)
	PathConventionMacHomebrew PathConvention = PathConvention(pathConventionMacHomebrewStringConstant)
	PathConventionWindows     PathConvention = PathConvention(pathConventionWindowsStringConstant)
)

// ParsePathConvention resolves a convention name. An empty string is unknown.
func ParsePathConvention(value string) (PathConvention, error) {
	switch PathConvention(strings.ToLower(strings.TrimSpace(value))) {
	case "", PathConventionUnknown:
		return PathConventionUnknown, nil
	case PathConventionLinuxDirect:
		return PathConventionLinuxDirect, nil
	case PathConventionMacHomebrew:
		return PathConventionMacHomebrew, nil
	case PathConventionWindows:
		return PathConventionWindows, nil
	default:
		return PathConventionUnknown, fmt.Errorf(unsupportedPathConventionTemplate, value)
	}
}

// Known reports whether the convention has been established.
func (convention PathConvention) Known() bool {
	switch convention {
	case PathConventionLinuxDirect, PathConventionMacHomebrew, PathConventionWindows:
		return true
	default:
		return false
	}
}

// ResolveProgram returns the command token used to invoke programName. Homebrew
// installs live outside the default macOS PATH, so they are addressed absolutely.
func (convention PathConvention) ResolveProgram(programName string) string {
	if convention == PathConventionMacHomebrew && !strings.Contains(programName, "/") {
		return path.Join(homebrewBinaryDirectoryConstant, programName)
	}
	return programName
}

func (convention PathConvention) normalized() PathConvention {
	if convention.Known() {
		return convention
	}
	return PathConventionUnknown
}
