package process

import (
	"github.com/temirov/procshell/internal/execshell"
)

const (
	shellVerbosityConfigurationKey    = "verbosity"
	shellOutBeforeErrConfigurationKey = "out_before_err"
	configurationKeySeparator         = "."
	defaultVerbosityPresetName        = "silent"
)

// ShellConfiguration stores the persisted defaults for launched commands.
type ShellConfiguration struct {
	Verbosity    string `mapstructure:"verbosity"`
	OutBeforeErr bool   `mapstructure:"out_before_err"`
}

// DefaultShellConfiguration returns the defaults applied without a configuration file.
func DefaultShellConfiguration() ShellConfiguration {
	return ShellConfiguration{Verbosity: defaultVerbosityPresetName}
}

// DefaultConfigurationValues exposes the defaults keyed under prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultShellConfiguration()
	return map[string]any{
		prefix + configurationKeySeparator + shellVerbosityConfigurationKey:    defaults.Verbosity,
		prefix + configurationKeySeparator + shellOutBeforeErrConfigurationKey: defaults.OutBeforeErr,
	}
}

// ResolveVerbosity turns the configured preset and ordering flag into a ShellVerbosity.
func (configuration ShellConfiguration) ResolveVerbosity() (execshell.ShellVerbosity, error) {
	presetName := configuration.Verbosity
	if len(presetName) == 0 {
		presetName = defaultVerbosityPresetName
	}
	verbosity, resolveError := execshell.ResolveVerbosityPreset(presetName)
	if resolveError != nil {
		return execshell.ShellVerbosity{}, resolveError
	}
	return verbosity.WithOutBeforeErr(configuration.OutBeforeErr), nil
}
