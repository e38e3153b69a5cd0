package signals

import (
	"fmt"
	"strings"
)

const (
	killSignalTerminateStringConstant = "TERM"
	killSignalInterruptStringConstant = "INT"
	killSignalKillStringConstant      = "KILL"
	signalNamePrefixConstant          = "SIG"
	signalFlagPrefixConstant          = "-"
	unsupportedSignalTemplateConstant = "unsupported kill signal: %s"
)

// KillSignal names a signal understood by the kill command.
type KillSignal string

// Supported signals.
const (
	KillSignalTerminate KillSignal = KillSignal(killSignalTerminateStringConstant)
	KillSignalInterrupt KillSignal = KillSignal(killSignalInterruptStringConstant)
	KillSignalKill      KillSignal = KillSignal(killSignalKillStringConstant)
)

// KillSignalNames lists the names accepted by ParseKillSignal.
func KillSignalNames() []string {
	return []string{killSignalTerminateStringConstant, killSignalInterruptStringConstant, killSignalKillStringConstant}
}

// ParseKillSignal accepts TERM, INT and KILL in any case, with or without the SIG prefix.
func ParseKillSignal(value string) (KillSignal, error) {
	normalizedValue := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), signalNamePrefixConstant)
	switch KillSignal(normalizedValue) {
	case KillSignalTerminate, KillSignalInterrupt, KillSignalKill:
		return KillSignal(normalizedValue), nil
	default:
		return "", fmt.Errorf(unsupportedSignalTemplateConstant, value)
	}
}

// Flag renders the signal as a kill command option such as -TERM.
func (signal KillSignal) Flag() string {
	return signalFlagPrefixConstant + string(signal)
}
