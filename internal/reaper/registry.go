package reaper

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/procshell/internal/shutdown"
)

const (
	processNotStartedMessageConstant        = "process must be started before registration"
	coordinatorNotConfiguredMessageConstant = "shutdown coordinator not configured"
	registeredProcessMessageConstant        = "Registered process"
	releasedProcessMessageConstant          = "Released exited process"
	reaperStoppedMessageConstant            = "Process reaper stopped"
	handleIdentifierFieldConstant           = "handle_id"
	processIdentifierFieldConstant          = "pid"
	exitCodeFieldConstant                   = "exit_code"
	destroyDescendantsFieldConstant         = "destroy_descendants"
	trackedCountFieldConstant               = "tracked"
)

// ErrProcessNotStarted indicates a command without an OS process.
var ErrProcessNotStarted = errors.New(processNotStartedMessageConstant)

// ErrCoordinatorNotConfigured indicates a missing shutdown coordinator.
var ErrCoordinatorNotConfigured = errors.New(coordinatorNotConfiguredMessageConstant)

// Registry owns the poll goroutine and the shutdown tasks of registered processes.
type Registry struct {
	logger      *zap.Logger
	coordinator *shutdown.Coordinator
	options     Options

	pending      pendingQueue
	trackedCount atomic.Int64

	shuttingDown atomic.Bool
	stopOnce     sync.Once
	stop         chan struct{}
	loopDone     chan struct{}
}

// New starts a Registry whose lifetime ends with coordinator's shutdown.
func New(logger *zap.Logger, coordinator *shutdown.Coordinator, options Options) (*Registry, error) {
	if coordinator == nil {
		return nil, ErrCoordinatorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := &Registry{
		logger:      logger,
		coordinator: coordinator,
		options:     options.withDefaults(),
		stop:        make(chan struct{}),
		loopDone:    make(chan struct{}),
	}

	go registry.pollLoop()
	coordinator.DuringShutdown(registry.stopPolling)

	return registry, nil
}

// Options returns the effective options.
func (registry *Registry) Options() Options {
	return registry.options
}

// TrackedCount returns the number of processes the poll goroutine currently watches.
func (registry *Registry) TrackedCount() int {
	return int(registry.trackedCount.Load())
}

// Register schedules a shutdown task for a started process and hands it to the
// poll goroutine. With destroyDescendants the task also stops every descendant that
// exists when the task begins.
func (registry *Registry) Register(spawnedProcess SpawnedProcess, destroyDescendants bool) (*ProcessHandle, error) {
	if spawnedProcess.Command == nil || spawnedProcess.Command.Process == nil {
		return nil, ErrProcessNotStarted
	}

	handle := newProcessHandle(spawnedProcess)
	go handle.awaitExit()

	handle.shutdownTask = registry.coordinator.DuringShutdown(func() {
		registry.shutdownProcess(handle, destroyDescendants)
	})
	registry.pending.push(handle)

	registry.logger.Debug(
		registeredProcessMessageConstant,
		zap.String(handleIdentifierFieldConstant, handle.ID()),
		zap.Int(processIdentifierFieldConstant, handle.PID()),
		zap.Bool(destroyDescendantsFieldConstant, destroyDescendants),
	)
	return handle, nil
}

func (registry *Registry) pollLoop() {
	defer close(registry.loopDone)

	tracked := map[*ProcessHandle]struct{}{}
	interval := registry.options.ShortPollInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-registry.stop:
			registry.logger.Debug(reaperStoppedMessageConstant, zap.Int(trackedCountFieldConstant, len(tracked)))
			return
		case <-timer.C:
		}
		if registry.shuttingDown.Load() {
			return
		}

		for _, handle := range registry.pending.drain() {
			tracked[handle] = struct{}{}
		}

		for handle := range tracked {
			if !handle.Exited() {
				continue
			}
			handle.shutdownTask.Cancel()
			delete(tracked, handle)
			registry.logger.Debug(
				releasedProcessMessageConstant,
				zap.String(handleIdentifierFieldConstant, handle.ID()),
				zap.Int(processIdentifierFieldConstant, handle.PID()),
				zap.Int(exitCodeFieldConstant, handle.exitCode),
			)
		}
		registry.trackedCount.Store(int64(len(tracked)))

		interval = registry.options.IdlePollInterval
		if len(tracked) > 0 {
			interval = registry.options.ShortPollInterval
		}
		timer.Reset(interval)
	}
}

func (registry *Registry) stopPolling() {
	registry.shuttingDown.Store(true)
	registry.stopOnce.Do(func() { close(registry.stop) })
	<-registry.loopDone
}
