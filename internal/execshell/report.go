package execshell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	reportTitleConstant                 = "Shell Error"
	reportWorkingDirectoryTemplate      = "Working Dir: %s"
	reportEnvironmentHeaderConstant     = "Env:"
	reportEnvironmentEntryTemplate      = "%q: %q"
	reportFullCommandHeaderConstant     = "Full Command:"
	reportCopyableCommandHeaderConstant = "Full Command (copyable):"
	reportErrorCodeTemplateConstant     = "Error Code: %d"
	reportStandardOutputHeaderConstant  = "Full Std Out:"
	reportStandardErrorHeaderConstant   = "Full Std Err:"
	reportOutputMissingConstant         = "shell result did not include output"
	reportSeparatorBarConstant          = "----------------------------------------------------------------"
	reportUnsetWorkingDirectoryConstant = "<inherited>"
	reportListOpenConstant              = "["
	reportListCloseConstant             = "]"
	reportListSeparatorConstant         = ", "
	reportLineSeparatorConstant         = "\n"
)

// ErrorReport is the human-readable post-mortem of a failed command.
type ErrorReport struct {
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	Arguments            []string
	Result               ExecutionResult
}

// NewErrorReport assembles the report for command and result.
func NewErrorReport(command ShellCommand, result ExecutionResult) ErrorReport {
	return ErrorReport{
		WorkingDirectory:     command.Details.WorkingDirectory,
		EnvironmentVariables: command.Details.EnvironmentVariables,
		Arguments:            append([]string{}, command.Details.Arguments...),
		Result:               result,
	}
}

// Text renders the report. An empty report renders as an empty string.
func (report ErrorReport) Text() string {
	if len(report.Arguments) == 0 && report.Result.ExitCode == 0 && !report.Result.OutputCaptured {
		return ""
	}

	workingDirectory := report.WorkingDirectory
	if len(workingDirectory) == 0 {
		workingDirectory = reportUnsetWorkingDirectoryConstant
	}

	lines := []string{
		reportTitleConstant,
		"",
		fmt.Sprintf(reportWorkingDirectoryTemplate, workingDirectory),
		"",
		reportEnvironmentHeaderConstant,
		reportSeparatorBarConstant,
	}
	lines = append(lines, report.environmentLines()...)
	lines = append(lines,
		reportSeparatorBarConstant,
		"",
		reportFullCommandHeaderConstant,
		reportSeparatorBarConstant,
		report.quotedArguments(),
		reportSeparatorBarConstant,
		"",
		reportCopyableCommandHeaderConstant,
		reportSeparatorBarConstant,
		strings.Join(report.Arguments, commandArgumentsSeparatorConstant),
		reportSeparatorBarConstant,
		"",
		fmt.Sprintf(reportErrorCodeTemplateConstant, report.Result.ExitCode),
		"",
	)

	if report.Result.OutputCaptured {
		lines = append(lines,
			reportStandardOutputHeaderConstant,
			reportSeparatorBarConstant,
			report.Result.StandardOutput,
			reportSeparatorBarConstant,
			"",
			reportStandardErrorHeaderConstant,
			reportSeparatorBarConstant,
			report.Result.StandardError,
			reportSeparatorBarConstant,
		)
	} else {
		lines = append(lines, reportOutputMissingConstant)
	}

	return strings.Join(lines, reportLineSeparatorConstant)
}

func (report ErrorReport) environmentLines() []string {
	keys := make([]string, 0, len(report.EnvironmentVariables))
	for key := range report.EnvironmentVariables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	environmentLines := make([]string, 0, len(keys))
	for _, key := range keys {
		environmentLines = append(environmentLines, fmt.Sprintf(reportEnvironmentEntryTemplate, key, report.EnvironmentVariables[key]))
	}
	return environmentLines
}

func (report ErrorReport) quotedArguments() string {
	quotedArguments := make([]string, 0, len(report.Arguments))
	for _, argument := range report.Arguments {
		quotedArguments = append(quotedArguments, strconv.Quote(argument))
	}
	return reportListOpenConstant + strings.Join(quotedArguments, reportListSeparatorConstant) + reportListCloseConstant
}
