package reaper

import "sync/atomic"

type pendingNode struct {
	handle *ProcessHandle
	next   *pendingNode
}

// pendingQueue is a multi-producer single-consumer queue. Producers push with a
// compare-and-swap; the poll goroutine takes everything at once.
type pendingQueue struct {
	head atomic.Pointer[pendingNode]
}

func (queue *pendingQueue) push(handle *ProcessHandle) {
	node := &pendingNode{handle: handle}
	for {
		currentHead := queue.head.Load()
		node.next = currentHead
		if queue.head.CompareAndSwap(currentHead, node) {
			return
		}
	}
}

// drain returns queued handles in registration order.
func (queue *pendingQueue) drain() []*ProcessHandle {
	node := queue.head.Swap(nil)
	var handles []*ProcessHandle
	for ; node != nil; node = node.next {
		handles = append(handles, node.handle)
	}
	for left, right := 0, len(handles)-1; left < right; left, right = left+1, right-1 {
		handles[left], handles[right] = handles[right], handles[left]
	}
	return handles
}
