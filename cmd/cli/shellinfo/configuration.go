package shellinfo

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/temirov/procshell/internal/shellcontext"
)

const (
	platformAutomaticConstant         = "auto"
	platformLinuxConstant             = "linux"
	platformMacConstant               = "mac"
	platformWindowsConstant           = "windows"
	platformUnknownConstant           = "unknown"
	unsupportedPlatformTemplate       = "unsupported platform: %s"
	contextPlatformConfigurationKey   = "platform"
	contextDialectConfigurationKey    = "dialect"
	configurationKeySeparatorConstant = "."
)

// ContextConfiguration stores the persisted description of the execution environment.
type ContextConfiguration struct {
	Platform string `mapstructure:"platform"`
	Dialect  string `mapstructure:"dialect"`
}

// PlatformNames lists the values accepted for the platform setting.
func PlatformNames() []string {
	return []string{platformAutomaticConstant, platformLinuxConstant, platformMacConstant, platformWindowsConstant, platformUnknownConstant}
}

// DefaultContextConfiguration detects the platform and keeps its default dialect.
func DefaultContextConfiguration() ContextConfiguration {
	return ContextConfiguration{Platform: platformAutomaticConstant}
}

// DefaultConfigurationValues exposes the defaults keyed under prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultContextConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + contextPlatformConfigurationKey: defaults.Platform,
		prefix + configurationKeySeparatorConstant + contextDialectConfigurationKey:  defaults.Dialect,
	}
}

// ResolveExecutionContext builds the execution context the configuration describes.
// A configured dialect replaces the platform's default dialect.
func (configuration ContextConfiguration) ResolveExecutionContext() (shellcontext.ExecutionContext, error) {
	baseContext, platformError := executionContextForPlatform(configuration.Platform, runtime.GOOS)
	if platformError != nil {
		return shellcontext.ExecutionContext{}, platformError
	}

	if len(strings.TrimSpace(configuration.Dialect)) == 0 {
		return baseContext, nil
	}
	dialect, dialectError := shellcontext.ParseDialect(configuration.Dialect)
	if dialectError != nil {
		return shellcontext.ExecutionContext{}, dialectError
	}
	if dialect == baseContext.Dialect() {
		return baseContext, nil
	}
	return baseContext.SwitchToDialect(dialect)
}

func executionContextForPlatform(platform string, operatingSystem string) (shellcontext.ExecutionContext, error) {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "", platformAutomaticConstant:
		return shellcontext.ContextForOperatingSystem(operatingSystem), nil
	case platformLinuxConstant:
		return shellcontext.DefaultLinuxExecutionContext(), nil
	case platformMacConstant:
		return shellcontext.DefaultMacExecutionContext(), nil
	case platformWindowsConstant:
		return shellcontext.DefaultWindowsExecutionContext(), nil
	case platformUnknownConstant:
		return shellcontext.UnknownExecutionContext(shellcontext.DialectUnixDirectCommandsOnly), nil
	default:
		return shellcontext.ExecutionContext{}, fmt.Errorf(unsupportedPlatformTemplate, platform)
	}
}
