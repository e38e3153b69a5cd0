package shellcontext

import (
	"fmt"
	"strings"
)

const (
	tristateUnknownStringConstant       = "unknown"
	tristateTrueStringConstant          = "true"
	tristateFalseStringConstant         = "false"
	unsupportedTristateTemplateConstant = "unsupported tristate value: %s"
)

// Tristate is a boolean fact that may not be known yet.
type Tristate string

// Tristate values.
const (
	TristateUnknown Tristate = Tristate(tristateUnknownStringConstant)
	TristateTrue    Tristate = Tristate(tristateTrueStringConstant)
	TristateFalse   Tristate = Tristate(tristateFalseStringConstant)
)

// KnownTristate converts a known boolean.
func KnownTristate(value bool) Tristate {
	if value {
		return TristateTrue
	}
	return TristateFalse
}

// ParseTristate accepts unknown, true or false. An empty string is unknown.
func ParseTristate(value string) (Tristate, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", tristateUnknownStringConstant:
		return TristateUnknown, nil
	case tristateTrueStringConstant:
		return TristateTrue, nil
	case tristateFalseStringConstant:
		return TristateFalse, nil
	default:
		return TristateUnknown, fmt.Errorf(unsupportedTristateTemplateConstant, value)
	}
}

// Value reports the boolean and whether it is known.
func (state Tristate) Value() (bool, bool) {
	switch state {
	case TristateTrue:
		return true, true
	case TristateFalse:
		return false, true
	default:
		return false, false
	}
}

// Known reports whether the fact has been established.
func (state Tristate) Known() bool {
	_, known := state.Value()
	return known
}

func (state Tristate) normalized() Tristate {
	if state.Known() {
		return state
	}
	return TristateUnknown
}
