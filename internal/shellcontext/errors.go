package shellcontext

import (
	"errors"
	"fmt"
)

const (
	valueUnknownMessageConstant              = "value required but unknown"
	valueUnknownTemplateConstant             = "%s: %s"
	dialectSwitchUnsupportedMessageConstant  = "dialect switch crosses the unix and powershell families"
	dialectSwitchUnsupportedTemplateConstant = "%w: %s to %s"
)

// ErrValueUnknown matches every ValueUnknownError.
var ErrValueUnknown = errors.New(valueUnknownMessageConstant)

// ErrDialectSwitchUnsupported indicates a dialect change that would invalidate the host description.
var ErrDialectSwitchUnsupported = errors.New(dialectSwitchUnsupportedMessageConstant)

// ValueUnknownError reports a context fact that a caller required but that has not been established.
type ValueUnknownError struct {
	FieldName string
}

// Error describes the missing fact.
func (unknownError ValueUnknownError) Error() string {
	return fmt.Sprintf(valueUnknownTemplateConstant, valueUnknownMessageConstant, unknownError.FieldName)
}

// Is allows errors.Is(err, ErrValueUnknown).
func (unknownError ValueUnknownError) Is(target error) bool {
	return target == ErrValueUnknown
}

func newDialectSwitchError(from Dialect, to Dialect) error {
	return fmt.Errorf(dialectSwitchUnsupportedTemplateConstant, ErrDialectSwitchUnsupported, from, to)
}
