package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/procshell/internal/execshell"
	"github.com/temirov/procshell/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant = "/tmp/project"
	testCommandLabelConstant            = "make build (in /tmp/project)"
	testExecutionFailureReasonConstant  = "execution failed"
	testStandardErrorMessageConstant    = "missing target"
	testStartMessageExpectation         = "running command(2): make build (in /tmp/project)"
	testHiddenStartMessageExpectation   = "running command (hidden args)"
	testSuccessMessageExpectation       = "Completed " + testCommandLabelConstant
	testFailureMessageExpectation       = testCommandLabelConstant + " failed with exit code 2: " + testStandardErrorMessageConstant
	testExecutionFailureExpectation     = testCommandLabelConstant + " failed: " + testExecutionFailureReasonConstant
	testExplanationMessageExpectation   = "output: built\n"
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Details: execshell.CommandDetails{
			Arguments:        []string{"make", "build"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
		Verbosity: execshell.VerbosityJustStart,
	}
	hiddenCommand := command
	hiddenCommand.Verbosity = command.Verbosity.WithArgumentsHidden()

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(command)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectation,
		},
		{
			name: "command_started_hidden_arguments",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(hiddenCommand)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testHiddenStartMessageExpectation,
		},
		{
			name: "command_output_explained",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandOutputExplained(command, execshell.ExecutionResult{StandardOutput: "built\n", OutputCaptured: true})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testExplanationMessageExpectation,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: testSuccessMessageExpectation,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 2, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectation,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestNilConsoleCommandEventLoggerIsSafe(testInstance *testing.T) {
	var eventLogger *ui.ConsoleCommandEventLogger
	require.NotPanics(testInstance, func() {
		eventLogger.CommandStarted(execshell.ShellCommand{})
		eventLogger.CommandCompleted(execshell.ShellCommand{}, execshell.ExecutionResult{})
	})
}
