package shutdown

import (
	"sync"
)

// Task is a unit of shutdown work that runs at most once.
type Task struct {
	identifier  uint64
	action      func()
	coordinator *Coordinator
	mutex       sync.Mutex
	claimed     bool
	cancelled   bool
	completed   chan struct{}
}

// Cancel prevents a task that has not started from ever running. It reports
// whether the cancellation took effect.
func (task *Task) Cancel() bool {
	if task == nil {
		return false
	}
	task.mutex.Lock()
	if task.claimed {
		task.mutex.Unlock()
		return false
	}
	task.claimed = true
	task.cancelled = true
	close(task.completed)
	task.mutex.Unlock()
	task.coordinator.forget(task)
	return true
}

// RunNowInsteadOfLater runs the task on the calling goroutine unless it already ran
// or was cancelled. Concurrent callers wait until the running invocation finishes.
func (task *Task) RunNowInsteadOfLater() {
	if task == nil {
		return
	}
	task.mutex.Lock()
	if task.claimed {
		task.mutex.Unlock()
		<-task.completed
		return
	}
	task.claimed = true
	task.mutex.Unlock()

	task.coordinator.forget(task)
	defer close(task.completed)
	defer task.coordinator.recoverTaskPanic()
	if task.action != nil {
		task.action()
	}
}

// Cancelled reports whether Cancel took effect.
func (task *Task) Cancelled() bool {
	if task == nil {
		return false
	}
	task.mutex.Lock()
	defer task.mutex.Unlock()
	return task.cancelled
}

// Done is closed once the task has run or was cancelled.
func (task *Task) Done() <-chan struct{} {
	return task.completed
}
