package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/procshell/internal/utils"
)

const (
	testInvalidLogLevelConstant  = "verbose"
	testInvalidLogFormatConstant = "xml"
	testLogMessageConstant       = "logger_factory_test_message"
	testConsoleMessageConstant   = "running command(1): true"
)

// captureStandardError runs operation while os.Stderr points at a pipe and returns what was written.
func captureStandardError(testInstance *testing.T, operation func()) []byte {
	testInstance.Helper()
	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStandardError := os.Stderr
	os.Stderr = pipeWriter
	operation()
	os.Stderr = originalStandardError

	require.NoError(testInstance, pipeWriter.Close())
	capturedOutput, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return bytes.TrimSpace(capturedOutput)
}

func syncLogger(testInstance *testing.T, logger *zap.Logger) {
	syncError := logger.Sync()
	if syncError != nil {
		require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
	}
}

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		expectError         bool
		expectStructuredLog bool
	}{
		{name: "debug_structured", requestedLogLevel: utils.LogLevelDebug, requestedLogFormat: utils.LogFormatStructured, expectStructuredLog: true},
		{name: "info_structured", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatStructured, expectStructuredLog: true},
		{name: "info_console", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatConsole},
		{name: "mixed_case_values", requestedLogLevel: utils.LogLevel(" INFO "), requestedLogFormat: utils.LogFormat("Structured"), expectStructuredLog: true},
		{name: "unsupported_log_level", requestedLogLevel: utils.LogLevel(testInvalidLogLevelConstant), requestedLogFormat: utils.LogFormatStructured, expectError: true},
		{name: "unsupported_log_format", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var logger *zap.Logger
			var creationError error
			capturedOutput := captureStandardError(testInstance, func() {
				logger, creationError = utils.NewLoggerFactory().CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
				if creationError != nil {
					return
				}
				logger.Info(testLogMessageConstant)
				syncLogger(testInstance, logger)
			})

			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}

			require.NoError(testInstance, creationError)
			require.Contains(testInstance, string(capturedOutput), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(capturedOutput))
		})
	}
}

func TestLoggerFactoryCreateLoggerOutputs(testInstance *testing.T) {
	var outputs utils.LoggerOutputs
	var creationError error
	capturedOutput := captureStandardError(testInstance, func() {
		outputs, creationError = utils.NewLoggerFactory().CreateLoggerOutputs(utils.LogLevelInfo, utils.LogFormatStructured)
		if creationError != nil {
			return
		}
		outputs.ConsoleLogger.Debug("suppressed below info")
		outputs.ConsoleLogger.Info(testConsoleMessageConstant)
		syncLogger(testInstance, outputs.ConsoleLogger)
	})

	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, outputs.DiagnosticLogger)
	require.Equal(testInstance, testConsoleMessageConstant, string(capturedOutput))

	_, creationError = utils.NewLoggerFactory().CreateLoggerOutputs(utils.LogLevel(testInvalidLogLevelConstant), utils.LogFormatConsole)
	require.Error(testInstance, creationError)
}
