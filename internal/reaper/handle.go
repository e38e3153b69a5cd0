package reaper

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/temirov/procshell/internal/shutdown"
)

const signalledExitCodeOffsetConstant = 128

// SpawnedProcess is a started command together with the parent ends of its pipes.
// Pipes that were not requested are nil.
type SpawnedProcess struct {
	Command        *exec.Cmd
	StandardInput  io.WriteCloser
	StandardOutput io.ReadCloser
	StandardError  io.ReadCloser
}

// ProcessHandle is a registered child process.
type ProcessHandle struct {
	identifier     uuid.UUID
	command        *exec.Cmd
	processID      int
	standardInput  io.WriteCloser
	standardOutput io.ReadCloser
	standardError  io.ReadCloser

	errorReaderOnce sync.Once
	errorReader     *bufio.Reader
	closePipesOnce  sync.Once

	done     chan struct{}
	exitCode int
	waitErr  error

	shutdownTask *shutdown.Task
}

func newProcessHandle(spawnedProcess SpawnedProcess) *ProcessHandle {
	return &ProcessHandle{
		identifier:     uuid.New(),
		command:        spawnedProcess.Command,
		processID:      spawnedProcess.Command.Process.Pid,
		standardInput:  spawnedProcess.StandardInput,
		standardOutput: spawnedProcess.StandardOutput,
		standardError:  spawnedProcess.StandardError,
		done:           make(chan struct{}),
		exitCode:       -1,
	}
}

// awaitExit reaps the process. It must run exactly once per handle.
func (handle *ProcessHandle) awaitExit() {
	processState, waitError := handle.command.Process.Wait()
	if waitError != nil {
		handle.waitErr = waitError
	} else {
		handle.exitCode = exitCodeFromState(processState)
	}
	close(handle.done)
}

func exitCodeFromState(processState *os.ProcessState) int {
	if waitStatus, isWaitStatus := processState.Sys().(syscall.WaitStatus); isWaitStatus && waitStatus.Signaled() {
		return signalledExitCodeOffsetConstant + int(waitStatus.Signal())
	}
	return processState.ExitCode()
}

// ID identifies the handle in logs.
func (handle *ProcessHandle) ID() string {
	return handle.identifier.String()
}

// PID returns the operating system process identifier.
func (handle *ProcessHandle) PID() int {
	return handle.processID
}

// Arguments returns the argv the process was started with.
func (handle *ProcessHandle) Arguments() []string {
	return append([]string{}, handle.command.Args...)
}

// StandardInput returns the write end of the child's stdin, or nil.
func (handle *ProcessHandle) StandardInput() io.WriteCloser {
	return handle.standardInput
}

// StandardOutput returns the read end of the child's stdout, or nil.
func (handle *ProcessHandle) StandardOutput() io.ReadCloser {
	return handle.standardOutput
}

// StandardError returns the read end of the child's stderr, or nil.
func (handle *ProcessHandle) StandardError() io.ReadCloser {
	return handle.standardError
}

// ErrorReader returns a buffered reader over stderr. Every call returns the same reader.
func (handle *ProcessHandle) ErrorReader() *bufio.Reader {
	handle.errorReaderOnce.Do(func() {
		if handle.standardError != nil {
			handle.errorReader = bufio.NewReader(handle.standardError)
		}
	})
	return handle.errorReader
}

// Done is closed once the process has exited and been reaped.
func (handle *ProcessHandle) Done() <-chan struct{} {
	return handle.done
}

// Exited reports whether the process has exited.
func (handle *ProcessHandle) Exited() bool {
	select {
	case <-handle.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the process exits and returns its exit code. Processes
// terminated by a signal report 128 plus the signal number.
func (handle *ProcessHandle) Wait() (int, error) {
	<-handle.done
	return handle.exitCode, handle.waitErr
}

// WaitContext is Wait bounded by executionContext. The process keeps running when
// the context ends first.
func (handle *ProcessHandle) WaitContext(executionContext context.Context) (int, error) {
	select {
	case <-handle.done:
		return handle.exitCode, handle.waitErr
	case <-executionContext.Done():
		return -1, executionContext.Err()
	}
}

// Kill forcefully stops the process without touching its descendants.
func (handle *ProcessHandle) Kill() error {
	killError := handle.command.Process.Kill()
	if errors.Is(killError, os.ErrProcessDone) {
		return nil
	}
	return killError
}

// KillTree forcefully stops the process together with every process still in its
// process group, including children orphaned by an exited primary. Processes not
// started in their own group fall back to Kill.
func (handle *ProcessHandle) KillTree() error {
	isGroupLeader, groupKillError := killProcessGroup(handle.command)
	if !isGroupLeader {
		return handle.Kill()
	}
	if groupKillError != nil {
		return errors.Join(groupKillError, handle.Kill())
	}
	return nil
}

// RunShutdownNowInsteadOfLater runs the scheduled shutdown task on the calling
// goroutine. It returns once the task finished, or immediately when the task was
// cancelled because the process exited.
func (handle *ProcessHandle) RunShutdownNowInsteadOfLater() {
	handle.shutdownTask.RunNowInsteadOfLater()
}

// ClosePipes closes every parent-side pipe end.
func (handle *ProcessHandle) ClosePipes() {
	handle.closePipesOnce.Do(func() {
		for _, closer := range []io.Closer{handle.standardInput, handle.standardOutput, handle.standardError} {
			if closer != nil {
				_ = closer.Close()
			}
		}
	})
}

// Use runs operation with handle and afterwards runs the shutdown task and closes the pipes.
func Use[T any](handle *ProcessHandle, operation func(*ProcessHandle) (T, error)) (T, error) {
	defer handle.ClosePipes()
	defer handle.RunShutdownNowInsteadOfLater()
	return operation(handle)
}
