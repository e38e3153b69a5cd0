package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/temirov/procshell/internal/shellcontext"
)

const (
	tristateFlagTypeName        = "tristate"
	tristateImplicitValue       = "true"
	tristateParseErrorTemplate  = "invalid tristate value %q (use yes, no or unknown)"
	tristateUsagePlaceholder    = "`<yes|no|UNKNOWN>`"
	tristateUsageTemplate       = "%s %s"
	tristateUnknownShortLiteral = "?"
)

var (
	affirmativeLiterals = map[string]struct{}{"true": {}, "yes": {}, "on": {}, "1": {}, "t": {}, "y": {}}
	negativeLiterals    = map[string]struct{}{"false": {}, "no": {}, "off": {}, "0": {}, "f": {}, "n": {}}
)

// AddTristateFlag registers a flag that records a yes/no fact which may stay
// unknown. A bare flag means yes.
func AddTristateFlag(flagSet *pflag.FlagSet, target *shellcontext.Tristate, name string, description string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}
	*target = shellcontext.TristateUnknown
	flagSet.Var(&tristateValue{target: target}, name, fmt.Sprintf(tristateUsageTemplate, tristateUsagePlaceholder, strings.TrimSpace(description)))
	if registeredFlag := flagSet.Lookup(name); registeredFlag != nil {
		registeredFlag.NoOptDefVal = tristateImplicitValue
	}
}

// ParseTristateLiteral accepts the yes/no spellings of AddTristateFlag.
func ParseTristateLiteral(rawValue string) (shellcontext.Tristate, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if _, affirmative := affirmativeLiterals[normalizedValue]; affirmative {
		return shellcontext.TristateTrue, nil
	}
	if _, negative := negativeLiterals[normalizedValue]; negative {
		return shellcontext.TristateFalse, nil
	}
	if normalizedValue == tristateUnknownShortLiteral {
		return shellcontext.TristateUnknown, nil
	}
	parsedState, parseError := shellcontext.ParseTristate(normalizedValue)
	if parseError != nil {
		return shellcontext.TristateUnknown, fmt.Errorf(tristateParseErrorTemplate, rawValue)
	}
	return parsedState, nil
}

type tristateValue struct {
	target *shellcontext.Tristate
}

func (value *tristateValue) Set(rawValue string) error {
	parsedState, parseError := ParseTristateLiteral(rawValue)
	if parseError != nil {
		return parseError
	}
	*value.target = parsedState
	return nil
}

func (value *tristateValue) String() string {
	if value == nil || value.target == nil {
		return string(shellcontext.TristateUnknown)
	}
	return string(*value.target)
}

func (value *tristateValue) Type() string {
	return tristateFlagTypeName
}
