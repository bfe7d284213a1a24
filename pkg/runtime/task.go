package runtime

import (
	"fmt"
	"sync"
)

//-----------------------------------------------------------------------------
// Concurrency handles (spawn/await)
//-----------------------------------------------------------------------------

type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskResolved
	TaskFailed
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskResolved:
		return "resolved"
	case TaskFailed:
		return "failed"
	default:
		return fmt.Sprintf("task_status_%d", int(s))
	}
}

// TaskHandle is the completion cell of a spawned call. It is written once
// by the task and read by any number of awaiters.
type TaskHandle struct {
	id      uint64
	mu      sync.Mutex
	status  TaskStatus
	result  Value
	err     error
	awaited bool
	done    *sync.Cond
}

func NewTaskHandle(id uint64) *TaskHandle {
	h := &TaskHandle{id: id}
	h.done = sync.NewCond(&h.mu)
	return h
}

func (h *TaskHandle) Kind() Kind { return KindTask }

func (h *TaskHandle) ID() uint64 { return h.id }

func (h *TaskHandle) Status() TaskStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Await blocks until the task completes and returns its outcome. Every call
// after completion returns the same result.
func (h *TaskHandle) Await() (Value, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for h.status == TaskPending {
		h.done.Wait()
	}
	h.awaited = true
	return h.result, h.err
}

// Awaited reports whether any caller has observed the outcome.
func (h *TaskHandle) Awaited() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.awaited
}

// Err returns the failure without blocking or marking the task awaited.
func (h *TaskHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Resolve stores the task's value. Only the first completion wins.
func (h *TaskHandle) Resolve(val Value) bool {
	if val == nil {
		val = Nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != TaskPending {
		return false
	}
	h.status = TaskResolved
	h.result = val
	h.done.Broadcast()
	return true
}

// Fail stores the task's error. Only the first completion wins.
func (h *TaskHandle) Fail(err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != TaskPending {
		return false
	}
	h.status = TaskFailed
	h.err = err
	h.done.Broadcast()
	return true
}
