package signals_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/procshell/internal/execshell"
	"github.com/temirov/procshell/internal/reaper"
	"github.com/temirov/procshell/internal/shellcontext"
	"github.com/temirov/procshell/internal/shutdown"
	"github.com/temirov/procshell/internal/signals"
)

const (
	testMissingProcessIdentifier = signals.Pid(99999999)
	testExitTimeout              = 10 * time.Second
)

func newReapingContext(testInstance *testing.T) execshell.ReapingContext {
	testInstance.Helper()
	if runtime.GOOS == "windows" {
		testInstance.Skip("kill command unavailable")
	}
	coordinator := shutdown.NewCoordinator(zap.NewNop())
	registry, creationError := reaper.New(zap.NewNop(), coordinator, reaper.DefaultOptions())
	require.NoError(testInstance, creationError)
	testInstance.Cleanup(coordinator.Shutdown)
	return execshell.ReapingContext{ExecutionContext: shellcontext.DefaultLinuxExecutionContext(), Registry: registry}
}

func TestParseKillSignal(testInstance *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expected     signals.KillSignal
		expectError  bool
		expectedFlag string
	}{
		{name: "plain", input: "TERM", expected: signals.KillSignalTerminate, expectedFlag: "-TERM"},
		{name: "prefixed_lowercase", input: "sigint", expected: signals.KillSignalInterrupt, expectedFlag: "-INT"},
		{name: "padded", input: " kill ", expected: signals.KillSignalKill, expectedFlag: "-KILL"},
		{name: "unsupported", input: "HUP", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			signal, parseError := signals.ParseKillSignal(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, signal)
			require.Equal(testInstance, testCase.expectedFlag, signal.Flag())
		})
	}
}

func TestPidArguments(testInstance *testing.T) {
	require.Equal(testInstance, []string{"kill", "-TERM", "42"}, signals.Pid(42).Arguments(signals.KillSignalTerminate))
	require.Equal(testInstance, []string{"kill", "42"}, signals.Pid(42).Arguments(""))
}

func TestKillRejectsInvalidProcessIdentifier(testInstance *testing.T) {
	killer := signals.NewKiller(nil, execshell.Returner{})
	require.Error(testInstance, killer.Kill(context.Background(), 0, signals.KillSignalKill, signals.KillOptions{}))
}

func TestTerminateStopsRunningProcess(testInstance *testing.T) {
	reapingContext := newReapingContext(testInstance)
	handle, startError := execshell.StartProcess(reapingContext.Registry, execshell.ShellCommand{
		Details: execshell.CommandDetails{Arguments: []string{"sleep", "30"}},
	}, execshell.StartOptions{})
	require.NoError(testInstance, startError)

	killer := signals.NewKiller(zap.NewNop(), reapingContext.Returners(zap.NewNop()).Silent)
	require.NoError(testInstance, killer.Terminate(context.Background(), signals.Pid(handle.PID())))

	waitContext, cancel := context.WithTimeout(context.Background(), testExitTimeout)
	defer cancel()
	exitCode, waitError := handle.WaitContext(waitContext)
	require.NoError(testInstance, waitError)
	require.Equal(testInstance, 128+15, exitCode)
}

func TestMissingProcessHandling(testInstance *testing.T) {
	reapingContext := newReapingContext(testInstance)
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	killer := signals.NewKiller(zap.New(observerCore), reapingContext.Returners(zap.NewNop()).Silent)

	killError := killer.Kill(context.Background(), testMissingProcessIdentifier, signals.KillSignalKill, signals.KillOptions{})
	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, killError, &failedError)
	require.Equal(testInstance, 1, failedError.ExitCode())

	killError = killer.Kill(context.Background(), testMissingProcessIdentifier, signals.KillSignalKill, signals.KillOptions{IgnoreNoSuchProcess: true})
	require.NoError(testInstance, killError)

	warnings := observedLogs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(testInstance, warnings, 1)
	require.Equal(testInstance, int64(testMissingProcessIdentifier), warnings[0].ContextMap()["pid"])
}
