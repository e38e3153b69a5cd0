package main_test

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/require"
)

const (
	binaryNameConstant                 = "procshell"
	integrationCommandTimeout          = 30 * time.Second
	integrationInfoMessageConstant     = "configuration initialized"
	integrationLogLevelEnvKeyConstant  = "PROCSHELL_COMMON_LOG_LEVEL"
	integrationConfigFileNameConstant  = "config.yaml"
	integrationConfigTemplateConstant  = "common:\n  log_level: %s\n"
	integrationHelpUsagePrefixConstant = "Usage:"
	integrationHelpDescriptionSnippet  = "procshell runs commands with controlled output capture"
	integrationSubtestNameTemplate     = "%d_%s"
	integrationDescendantExitTimeout   = 15 * time.Second
	integrationDescendantPollInterval  = 50 * time.Millisecond
	integrationInterruptedExitCode     = 130
	integrationBackgroundSleepScript   = "sleep 60 & echo $!; wait"
	integrationBuildFailureTemplate    = "build failed: %v\n%s"
	integrationUnexpectedExitTemplate  = "unexpected exit: %v\n%s"
)

var builtBinaryPath string

func TestMain(m *testing.M) {
	if runtime.GOOS == "windows" {
		os.Exit(m.Run())
	}

	buildDirectory, directoryError := os.MkdirTemp("", "procshell-binary-*")
	if directoryError != nil {
		fmt.Fprintln(os.Stderr, directoryError)
		os.Exit(1)
	}

	builtBinaryPath = filepath.Join(buildDirectory, binaryNameConstant)
	buildCommand := exec.Command("go", "build", "-o", builtBinaryPath, ".")
	buildOutput, buildError := buildCommand.CombinedOutput()
	if buildError != nil {
		fmt.Fprintf(os.Stderr, integrationBuildFailureTemplate, buildError, buildOutput)
		_ = os.RemoveAll(buildDirectory)
		os.Exit(1)
	}

	exitCode := m.Run()
	_ = os.RemoveAll(buildDirectory)
	os.Exit(exitCode)
}

func requireBinary(testInstance *testing.T) {
	testInstance.Helper()
	if len(builtBinaryPath) == 0 {
		testInstance.Skip("binary is only built on unix hosts")
	}
}

func runBinary(testInstance *testing.T, environment []string, arguments ...string) (string, int) {
	testInstance.Helper()
	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, builtBinaryPath, arguments...)
	command.Env = append(os.Environ(), environment...)
	outputBytes, runError := command.CombinedOutput()
	outputText := string(outputBytes)
	if runError == nil {
		return outputText, 0
	}

	var exitError *exec.ExitError
	require.Truef(testInstance, errors.As(runError, &exitError), integrationUnexpectedExitTemplate, runError, outputText)
	return outputText, exitError.ExitCode()
}

func TestCLIIntegrationDisplaysHelpWhenNoArgumentsProvided(testInstance *testing.T) {
	requireBinary(testInstance)

	outputText, exitCode := runBinary(testInstance, nil)
	require.Equal(testInstance, 0, exitCode, outputText)
	require.Contains(testInstance, outputText, integrationHelpUsagePrefixConstant)
	require.Contains(testInstance, outputText, integrationHelpDescriptionSnippet)
}

func TestCLIIntegrationLogLevels(testInstance *testing.T) {
	requireBinary(testInstance)

	testCases := []struct {
		name                string
		configurationLevel  string
		environmentLevel    string
		expectedInfoVisible bool
	}{
		{
			name:                "default_info",
			expectedInfoVisible: true,
		},
		{
			name:                "config_error",
			configurationLevel:  "error",
			expectedInfoVisible: false,
		},
		{
			name:                "environment_overrides_config",
			configurationLevel:  "error",
			environmentLevel:    "debug",
			expectedInfoVisible: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			arguments := []string{}
			if len(testCase.configurationLevel) > 0 {
				configurationPath := filepath.Join(testInstance.TempDir(), integrationConfigFileNameConstant)
				configurationContent := fmt.Sprintf(integrationConfigTemplateConstant, testCase.configurationLevel)
				require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))
				arguments = append(arguments, "--config", configurationPath)
			}
			var environment []string
			if len(testCase.environmentLevel) > 0 {
				environment = append(environment, integrationLogLevelEnvKeyConstant+"="+testCase.environmentLevel)
			}
			arguments = append(arguments, "escape", "a b")

			outputText, exitCode := runBinary(testInstance, environment, arguments...)
			require.Equal(testInstance, 0, exitCode, outputText)
			require.Contains(testInstance, outputText, "a\\ b")
			if testCase.expectedInfoVisible {
				require.Contains(testInstance, outputText, integrationInfoMessageConstant)
			} else {
				require.NotContains(testInstance, outputText, integrationInfoMessageConstant)
			}
		})
	}
}

func TestCLIIntegrationPropagatesExitCode(testInstance *testing.T) {
	requireBinary(testInstance)

	outputText, exitCode := runBinary(testInstance, nil, "--log-level", "error", "run", "--", "sh", "-c", "echo failing >&2; exit 7")
	require.Equal(testInstance, 7, exitCode, outputText)
	require.Contains(testInstance, outputText, "Error Code: 7")
	require.Contains(testInstance, outputText, "failing")
}

func TestCLIIntegrationInterruptStopsDescendants(testInstance *testing.T) {
	requireBinary(testInstance)

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, builtBinaryPath, "--log-level", "error", "run", "--stream", "--verbosity", "stream", "--", "sh", "-c", integrationBackgroundSleepScript)
	standardOutput, pipeError := command.StdoutPipe()
	require.NoError(testInstance, pipeError)
	require.NoError(testInstance, command.Start())

	outputReader := bufio.NewReader(standardOutput)
	firstLine, readError := outputReader.ReadString('\n')
	require.NoError(testInstance, readError)
	descendantIdentifier, parseError := strconv.Atoi(strings.TrimSpace(firstLine))
	require.NoError(testInstance, parseError, firstLine)

	require.NoError(testInstance, command.Process.Signal(syscall.SIGINT))
	waitError := command.Wait()

	var exitError *exec.ExitError
	require.ErrorAs(testInstance, waitError, &exitError)
	require.Equal(testInstance, integrationInterruptedExitCode, exitError.ExitCode())

	require.Eventually(testInstance, func() bool {
		return !isProcessRunning(int32(descendantIdentifier))
	}, integrationDescendantExitTimeout, integrationDescendantPollInterval)
}

func isProcessRunning(processIdentifier int32) bool {
	candidate, lookupError := process.NewProcess(processIdentifier)
	if lookupError != nil {
		return false
	}
	statuses, statusError := candidate.Status()
	if statusError != nil {
		return false
	}
	for _, status := range statuses {
		if status == process.Zombie {
			return false
		}
	}
	return true
}
