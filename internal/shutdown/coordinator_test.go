package shutdown_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/procshell/internal/shutdown"
)

const testConcurrentCallerCountConstant = 8

func TestShutdownRunsPendingTasksOnce(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zap.DebugLevel)
	coordinator := shutdown.NewCoordinator(zap.New(observerCore))

	var executionCount atomic.Int32
	for range 3 {
		coordinator.DuringShutdown(func() { executionCount.Add(1) })
	}
	require.Equal(testInstance, 3, coordinator.PendingCount())
	require.False(testInstance, coordinator.Started())

	coordinator.Shutdown()
	coordinator.Shutdown()

	require.True(testInstance, coordinator.Started())
	require.Equal(testInstance, int32(3), executionCount.Load())
	require.Zero(testInstance, coordinator.PendingCount())
	require.Len(testInstance, observedLogs.All(), 2)
}

func TestCancelledTaskNeverRuns(testInstance *testing.T) {
	coordinator := shutdown.NewCoordinator(nil)

	var executed atomic.Bool
	task := coordinator.DuringShutdown(func() { executed.Store(true) })
	require.True(testInstance, task.Cancel())
	require.False(testInstance, task.Cancel())
	require.True(testInstance, task.Cancelled())

	task.RunNowInsteadOfLater()
	coordinator.Shutdown()

	require.False(testInstance, executed.Load())
	require.Zero(testInstance, coordinator.PendingCount())
}

func TestRunNowInsteadOfLaterRunsOnceAndBlocksConcurrentCallers(testInstance *testing.T) {
	coordinator := shutdown.NewCoordinator(nil)

	release := make(chan struct{})
	var executionCount atomic.Int32
	task := coordinator.DuringShutdown(func() {
		executionCount.Add(1)
		<-release
	})

	var waitGroup sync.WaitGroup
	var returnedCount atomic.Int32
	for range testConcurrentCallerCountConstant {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			task.RunNowInsteadOfLater()
			returnedCount.Add(1)
		}()
	}

	require.Eventually(testInstance, func() bool { return executionCount.Load() == 1 }, time.Second, time.Millisecond)
	require.Zero(testInstance, returnedCount.Load())
	close(release)
	waitGroup.Wait()

	require.Equal(testInstance, int32(1), executionCount.Load())
	require.Equal(testInstance, int32(testConcurrentCallerCountConstant), returnedCount.Load())
	require.False(testInstance, task.Cancel())

	coordinator.Shutdown()
	require.Equal(testInstance, int32(1), executionCount.Load())
}

func TestTasksScheduledAfterShutdownRunImmediately(testInstance *testing.T) {
	coordinator := shutdown.NewCoordinator(nil)
	coordinator.Shutdown()

	var executed atomic.Bool
	task := coordinator.DuringShutdown(func() { executed.Store(true) })

	require.True(testInstance, executed.Load())
	select {
	case <-task.Done():
	default:
		testInstance.Fatal("task should be complete")
	}
}
