package shutdown

import (
	"sync"

	"go.uber.org/zap"
)

const (
	shutdownStartedMessageConstant   = "Running shutdown tasks"
	shutdownCompletedMessageConstant = "Shutdown tasks completed"
	shutdownTaskPanicMessageConstant = "Shutdown task panicked"
	pendingTaskCountFieldConstant    = "pending_tasks"
	panicValueFieldConstant          = "panic"
)

// Coordinator owns the set of pending shutdown tasks for one program.
type Coordinator struct {
	logger       *zap.Logger
	mutex        sync.Mutex
	started      bool
	nextTaskID   uint64
	pendingTasks map[uint64]*Task
	shutdownOnce sync.Once
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{logger: logger, pendingTasks: map[uint64]*Task{}}
}

// DuringShutdown schedules action to run at shutdown. Once shutdown has started the
// action runs immediately on the calling goroutine.
func (coordinator *Coordinator) DuringShutdown(action func()) *Task {
	coordinator.mutex.Lock()
	coordinator.nextTaskID++
	task := &Task{identifier: coordinator.nextTaskID, action: action, coordinator: coordinator, completed: make(chan struct{})}
	if coordinator.started {
		coordinator.mutex.Unlock()
		task.RunNowInsteadOfLater()
		return task
	}
	coordinator.pendingTasks[task.identifier] = task
	coordinator.mutex.Unlock()
	return task
}

// Started reports whether Shutdown has been called.
func (coordinator *Coordinator) Started() bool {
	coordinator.mutex.Lock()
	defer coordinator.mutex.Unlock()
	return coordinator.started
}

// PendingCount returns the number of scheduled tasks that have not run or been cancelled.
func (coordinator *Coordinator) PendingCount() int {
	coordinator.mutex.Lock()
	defer coordinator.mutex.Unlock()
	return len(coordinator.pendingTasks)
}

// Shutdown runs every pending task concurrently and returns once all of them have
// finished. Calls after the first are no-ops.
func (coordinator *Coordinator) Shutdown() {
	coordinator.shutdownOnce.Do(func() {
		coordinator.mutex.Lock()
		coordinator.started = true
		tasks := make([]*Task, 0, len(coordinator.pendingTasks))
		for _, task := range coordinator.pendingTasks {
			tasks = append(tasks, task)
		}
		coordinator.mutex.Unlock()

		coordinator.logger.Debug(shutdownStartedMessageConstant, zap.Int(pendingTaskCountFieldConstant, len(tasks)))

		var waitGroup sync.WaitGroup
		for _, task := range tasks {
			waitGroup.Add(1)
			go func(task *Task) {
				defer waitGroup.Done()
				task.RunNowInsteadOfLater()
			}(task)
		}
		waitGroup.Wait()

		coordinator.logger.Debug(shutdownCompletedMessageConstant)
	})
}

func (coordinator *Coordinator) forget(task *Task) {
	coordinator.mutex.Lock()
	delete(coordinator.pendingTasks, task.identifier)
	coordinator.mutex.Unlock()
}

func (coordinator *Coordinator) recoverTaskPanic() {
	if recovered := recover(); recovered != nil {
		coordinator.logger.Error(shutdownTaskPanicMessageConstant, zap.Any(panicValueFieldConstant, recovered))
		panic(recovered)
	}
}
