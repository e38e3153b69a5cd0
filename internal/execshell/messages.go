package execshell

import (
	"fmt"
	"strings"
)

const (
	startedTemplateConstant                 = "running command(%d): %s%s"
	startedHiddenArgumentsMessageConstant   = "running command (hidden args)"
	outputExplanationTemplateConstant       = "output: %s"
	outputNotCapturedLabelConstant          = "<not captured>"
	successTemplateConstant                 = "Completed %s"
	failureTemplateConstant                 = "%s failed with exit code %d%s"
	executionFailureTemplateConstant        = "%s failed: %s"
	hiddenArgumentsLabelConstant            = "command (hidden args)"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	reproductionWorkingDirectoryTemplate    = "cd %s; "
	reproductionEnvironmentEntryTemplate    = "%s=%s "
	reproductionInstructionTemplateConstant = "COPY AND PASTE THIS TO REPLICATE IN TERMINAL: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the announcement printed before a command runs.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	if command.Verbosity.DoNotPrintArgs {
		return startedHiddenArgumentsMessageConstant
	}
	arguments := command.Details.Arguments
	return fmt.Sprintf(startedTemplateConstant, len(arguments), strings.Join(arguments, commandArgumentsSeparatorConstant), formatter.formatWorkingDirectorySuffix(command))
}

// BuildOutputExplanationMessage formats the captured output of a finished command.
func (formatter CommandMessageFormatter) BuildOutputExplanationMessage(result ExecutionResult) string {
	if !result.OutputCaptured {
		return fmt.Sprintf(outputExplanationTemplateConstant, outputNotCapturedLabelConstant)
	}
	return fmt.Sprintf(outputExplanationTemplateConstant, result.Output())
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(successTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return fmt.Sprintf(failureTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return fmt.Sprintf(executionFailureTemplateConstant, formatter.formatCommandLabel(command), formatter.describeFailure(failure))
}

// BuildReproductionCommand renders a shell line that replays details: the working
// directory change, the configured environment in key order, then the arguments.
func (formatter CommandMessageFormatter) BuildReproductionCommand(details CommandDetails) string {
	var builder strings.Builder
	if len(details.WorkingDirectory) > 0 {
		builder.WriteString(fmt.Sprintf(reproductionWorkingDirectoryTemplate, details.WorkingDirectory))
	}
	for _, assignment := range sortedEnvironmentAssignments(details.EnvironmentVariables) {
		builder.WriteString(fmt.Sprintf(reproductionEnvironmentEntryTemplate, assignment.key, assignment.value))
	}
	builder.WriteString(strings.Join(details.Arguments, commandArgumentsSeparatorConstant))
	return builder.String()
}

// BuildReproductionMessage wraps BuildReproductionCommand in an instruction.
func (formatter CommandMessageFormatter) BuildReproductionMessage(details CommandDetails) string {
	return fmt.Sprintf(reproductionInstructionTemplateConstant, formatter.BuildReproductionCommand(details))
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	if command.Verbosity.DoNotPrintArgs {
		return hiddenArgumentsLabelConstant
	}
	commandLabel := strings.Join(command.Details.Arguments, commandArgumentsSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
