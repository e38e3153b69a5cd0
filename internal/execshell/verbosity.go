package execshell

import (
	"fmt"
	"strings"
)

const (
	printInSequenceNoneStringConstant        = "none"
	printInSequenceLinesStringConstant       = "lines"
	printInSequenceCharactersStringConstant  = "chars"
	unsupportedPrintInSequenceTemplate       = "unsupported print-in-sequence mode: %s"
	verbositySilentPresetNameConstant        = "silent"
	verbosityJustStartPresetNameConstant     = "just-start"
	verbosityStreamPresetNameConstant        = "stream"
	verbosityStreamCharsPresetNameConstant   = "stream-chars"
	verbosityStartAndExplainPresetConstant   = "start-and-explain"
	unsupportedVerbosityPresetTemplateString = "unsupported verbosity preset: %s"
)

// PrintInSequence selects how streamed output is echoed while the process runs.
type PrintInSequence string

// Supported echo modes.
const (
	PrintInSequenceNone       PrintInSequence = PrintInSequence(printInSequenceNoneStringConstant)
	PrintInSequenceLines      PrintInSequence = PrintInSequence(printInSequenceLinesStringConstant)
	PrintInSequenceCharacters PrintInSequence = PrintInSequence(printInSequenceCharactersStringConstant)
)

// ParsePrintInSequence resolves an echo mode; empty means none.
func ParsePrintInSequence(value string) (PrintInSequence, error) {
	switch PrintInSequence(strings.ToLower(strings.TrimSpace(value))) {
	case "", PrintInSequenceNone:
		return PrintInSequenceNone, nil
	case PrintInSequenceLines:
		return PrintInSequenceLines, nil
	case PrintInSequenceCharacters:
		return PrintInSequenceCharacters, nil
	default:
		return PrintInSequenceNone, fmt.Errorf(unsupportedPrintInSequenceTemplate, value)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (mode *PrintInSequence) UnmarshalText(text []byte) error {
	parsedMode, parseError := ParsePrintInSequence(string(text))
	if parseError != nil {
		return parseError
	}
	*mode = parsedMode
	return nil
}

// ShellVerbosity controls what a command announces and echoes.
type ShellVerbosity struct {
	PrintRunning    bool            `mapstructure:"print_running"`
	DoNotPrintArgs  bool            `mapstructure:"do_not_print_args"`
	PrintInSequence PrintInSequence `mapstructure:"print_in_sequence"`
	ExplainOutput   bool            `mapstructure:"explain_output"`
	OutBeforeErr    bool            `mapstructure:"out_before_err"`
}

// Verbosity presets.
var (
	VerbositySilent                = ShellVerbosity{PrintInSequence: PrintInSequenceNone}
	VerbosityJustStart             = ShellVerbosity{PrintRunning: true, PrintInSequence: PrintInSequenceNone}
	VerbosityStream                = ShellVerbosity{PrintRunning: true, PrintInSequence: PrintInSequenceLines}
	VerbosityStreamChars           = ShellVerbosity{PrintRunning: true, PrintInSequence: PrintInSequenceCharacters}
	VerbosityStartAndExplainOutput = ShellVerbosity{PrintRunning: true, PrintInSequence: PrintInSequenceNone, ExplainOutput: true}
)

var verbosityPresets = map[string]ShellVerbosity{
	verbositySilentPresetNameConstant:      VerbositySilent,
	verbosityJustStartPresetNameConstant:   VerbosityJustStart,
	verbosityStreamPresetNameConstant:      VerbosityStream,
	verbosityStreamCharsPresetNameConstant: VerbosityStreamChars,
	verbosityStartAndExplainPresetConstant: VerbosityStartAndExplainOutput,
}

// VerbosityPresetNames lists the names accepted by ResolveVerbosityPreset.
func VerbosityPresetNames() []string {
	return []string{
		verbositySilentPresetNameConstant,
		verbosityJustStartPresetNameConstant,
		verbosityStreamPresetNameConstant,
		verbosityStreamCharsPresetNameConstant,
		verbosityStartAndExplainPresetConstant,
	}
}

// ResolveVerbosityPreset maps a configuration name to a preset.
func ResolveVerbosityPreset(name string) (ShellVerbosity, error) {
	preset, exists := verbosityPresets[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return ShellVerbosity{}, fmt.Errorf(unsupportedVerbosityPresetTemplateString, name)
	}
	return preset, nil
}

// WithArgumentsHidden returns a copy that announces commands without their arguments.
func (verbosity ShellVerbosity) WithArgumentsHidden() ShellVerbosity {
	verbosity.DoNotPrintArgs = true
	return verbosity
}

// WithOutBeforeErr returns a copy with the stdout-first ordering toggled.
func (verbosity ShellVerbosity) WithOutBeforeErr(outBeforeErr bool) ShellVerbosity {
	verbosity.OutBeforeErr = outBeforeErr
	return verbosity
}

func (verbosity ShellVerbosity) printMode() PrintInSequence {
	switch verbosity.PrintInSequence {
	case PrintInSequenceLines, PrintInSequenceCharacters:
		return verbosity.PrintInSequence
	default:
		return PrintInSequenceNone
	}
}
