package signals

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/procshell/internal/execshell"
)

const (
	killCommandNameConstant             = "kill"
	noSuchProcessFragmentConstant       = "no such process"
	noSuchProcessExitCodeConstant       = 1
	alternateNoSuchProcessExitCode      = 47202
	invalidProcessIdentifierTemplate    = "invalid process identifier: %d"
	noSuchProcessWarningMessageConstant = "No such process when sending signal"
	signalSentMessageConstant           = "Sent signal"
	processIdentifierFieldConstant      = "pid"
	signalFieldConstant                 = "signal"
	exitCodeFieldConstant               = "exit_code"
)

// Pid identifies an operating system process.
type Pid int

// Arguments builds the kill command line for signal. An empty signal leaves the
// choice to the kill command.
func (pid Pid) Arguments(signal KillSignal) []string {
	arguments := []string{killCommandNameConstant}
	if len(signal) > 0 {
		arguments = append(arguments, signal.Flag())
	}
	return append(arguments, strconv.Itoa(int(pid)))
}

// KillOptions adjusts a single delivery.
type KillOptions struct {
	IgnoreNoSuchProcess bool
}

// Killer sends signals by running the kill command through a Returner.
type Killer struct {
	logger   *zap.Logger
	returner execshell.Returner
}

// NewKiller constructs a Killer. A nil logger discards warnings.
func NewKiller(logger *zap.Logger, returner execshell.Returner) *Killer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Killer{logger: logger, returner: returner}
}

// Kill delivers signal to pid. With IgnoreNoSuchProcess a failure that reports a
// missing process is logged as a warning instead of returned.
func (killer *Killer) Kill(executionContext context.Context, pid Pid, signal KillSignal, options KillOptions) error {
	if pid <= 0 {
		return fmt.Errorf(invalidProcessIdentifierTemplate, pid)
	}

	_, executionError := killer.returner.SendCommand(executionContext, pid.Arguments(signal)...)
	if executionError == nil {
		killer.logger.Debug(signalSentMessageConstant, zap.Int(processIdentifierFieldConstant, int(pid)), zap.String(signalFieldConstant, string(signal)))
		return nil
	}

	var failedError execshell.CommandFailedError
	if options.IgnoreNoSuchProcess && errors.As(executionError, &failedError) && reportsMissingProcess(failedError) {
		killer.logger.Warn(
			noSuchProcessWarningMessageConstant,
			zap.Int(processIdentifierFieldConstant, int(pid)),
			zap.String(signalFieldConstant, string(signal)),
			zap.Int(exitCodeFieldConstant, failedError.ExitCode()),
		)
		return nil
	}
	return executionError
}

// Terminate sends TERM.
func (killer *Killer) Terminate(executionContext context.Context, pid Pid) error {
	return killer.Kill(executionContext, pid, KillSignalTerminate, KillOptions{})
}

// Interrupt sends INT.
func (killer *Killer) Interrupt(executionContext context.Context, pid Pid) error {
	return killer.Kill(executionContext, pid, KillSignalInterrupt, KillOptions{})
}

// shells disagree on the exit status for a missing process, so both observed
// codes are accepted.
func reportsMissingProcess(failedError execshell.CommandFailedError) bool {
	if failedError.ExitCode() == alternateNoSuchProcessExitCode {
		return true
	}
	if failedError.ExitCode() != noSuchProcessExitCodeConstant {
		return false
	}
	output, captured := failedError.Output()
	return captured && strings.Contains(strings.ToLower(output), noSuchProcessFragmentConstant)
}
