package reaper

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

const (
	gracefulTerminationFailedMessageConstant  = "Graceful termination request failed"
	processForcedKillMessageConstant          = "Process did not exit gracefully within the grace period and is being killed"
	descendantSnapshotFailedMessageConstant   = "Unable to snapshot process descendants"
	descendantForcedKillMessageConstant       = "Descendant did not exit gracefully within the grace period and is being killed"
	descendantSignalFailedMessageConstant     = "Unable to signal descendant"
	descendantSurvivedKillTemplateConstant    = "descendant process %d survived a forced kill for %s"
	gracePeriodFieldConstant                  = "grace_period"
	descendantProcessIdentifierFieldConstant  = "descendant_pid"
	descendantCountFieldConstant              = "descendants"
	descendantSnapshotCapturedMessageConstant = "Captured process descendants"
)

// shutdownProcess stops handle, escalating from a graceful request to a kill, and
// then does the same for the descendants captured before any signal was sent.
func (registry *Registry) shutdownProcess(handle *ProcessHandle, destroyDescendants bool) {
	if handle.Exited() {
		return
	}

	var descendants []*process.Process
	if destroyDescendants {
		descendants = registry.snapshotDescendants(handle.PID())
	}

	if terminationError := requestGracefulTermination(handle.command.Process); terminationError != nil && !handle.Exited() {
		registry.logger.Warn(gracefulTerminationFailedMessageConstant, zap.Int(processIdentifierFieldConstant, handle.PID()), zap.Error(terminationError))
	}

	graceTimer := time.NewTimer(registry.options.GracePeriod)
	select {
	case <-handle.done:
		graceTimer.Stop()
	case <-graceTimer.C:
		registry.logger.Warn(
			processForcedKillMessageConstant,
			zap.Int(processIdentifierFieldConstant, handle.PID()),
			zap.Duration(gracePeriodFieldConstant, registry.options.GracePeriod),
		)
		_ = handle.Kill()
		<-handle.done
	}

	for _, descendant := range descendants {
		registry.stopDescendant(descendant)
	}
}

// snapshotDescendants walks the process tree breadth first.
func (registry *Registry) snapshotDescendants(rootProcessID int) []*process.Process {
	rootProcess, lookupError := process.NewProcess(int32(rootProcessID))
	if lookupError != nil {
		registry.logger.Debug(descendantSnapshotFailedMessageConstant, zap.Int(processIdentifierFieldConstant, rootProcessID), zap.Error(lookupError))
		return nil
	}

	var descendants []*process.Process
	frontier := []*process.Process{rootProcess}
	visited := map[int32]struct{}{rootProcess.Pid: {}}
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		children, childrenError := current.Children()
		if childrenError != nil {
			if !errors.Is(childrenError, process.ErrorNoChildren) {
				registry.logger.Debug(descendantSnapshotFailedMessageConstant, zap.Int(processIdentifierFieldConstant, int(current.Pid)), zap.Error(childrenError))
			}
			continue
		}
		for _, child := range children {
			if _, seen := visited[child.Pid]; seen {
				continue
			}
			visited[child.Pid] = struct{}{}
			descendants = append(descendants, child)
			frontier = append(frontier, child)
		}
	}

	registry.logger.Debug(descendantSnapshotCapturedMessageConstant, zap.Int(processIdentifierFieldConstant, rootProcessID), zap.Int(descendantCountFieldConstant, len(descendants)))
	return descendants
}

func (registry *Registry) stopDescendant(descendant *process.Process) {
	if !isDescendantAlive(descendant) {
		return
	}
	if terminateError := descendant.Terminate(); terminateError != nil && isDescendantAlive(descendant) {
		registry.logger.Debug(descendantSignalFailedMessageConstant, zap.Int32(descendantProcessIdentifierFieldConstant, descendant.Pid), zap.Error(terminateError))
	}
	if registry.waitForDescendantExit(descendant, registry.options.GracePeriod) {
		return
	}

	registry.logger.Warn(
		descendantForcedKillMessageConstant,
		zap.Int32(descendantProcessIdentifierFieldConstant, descendant.Pid),
		zap.Duration(gracePeriodFieldConstant, registry.options.GracePeriod),
	)
	if killError := descendant.Kill(); killError != nil && isDescendantAlive(descendant) {
		registry.logger.Error(descendantSignalFailedMessageConstant, zap.Int32(descendantProcessIdentifierFieldConstant, descendant.Pid), zap.Error(killError))
	}
	if !registry.waitForDescendantExit(descendant, registry.options.ForcedExitTimeout) {
		panic(fmt.Sprintf(descendantSurvivedKillTemplateConstant, descendant.Pid, registry.options.ForcedExitTimeout))
	}
}

func (registry *Registry) waitForDescendantExit(descendant *process.Process, timeout time.Duration) bool {
	waitContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ticker := time.NewTicker(registry.options.ShortPollInterval)
	defer ticker.Stop()
	for {
		if !isDescendantAlive(descendant) {
			return true
		}
		select {
		case <-waitContext.Done():
			return !isDescendantAlive(descendant)
		case <-ticker.C:
		}
	}
}

// isDescendantAlive treats zombies as exited: they only wait for their parent to reap them.
func isDescendantAlive(descendant *process.Process) bool {
	running, runningError := descendant.IsRunning()
	if runningError != nil || !running {
		return false
	}
	statuses, statusError := descendant.Status()
	if statusError != nil {
		return true
	}
	return !slices.Contains(statuses, process.Zombie)
}
