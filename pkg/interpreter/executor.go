package interpreter

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/samjay22/Lux/pkg/runtime"
)

// Task represents a unit of asynchronous Lux work executed by an Executor.
type Task func() (runtime.Value, error)

// Executor abstracts the underlying scheduling strategy used for spawn.
type Executor interface {
	Spawn(task Task) *runtime.TaskHandle
	// Flush blocks until every spawned task has completed.
	Flush()
}

// taskHelper is implemented by executors whose tasks cannot block on each
// other without help; await from inside a task calls it before blocking.
type taskHelper interface {
	helpUntilDone(handle *runtime.TaskHandle)
}

// TaskPanicError is the failure recorded when a task panics.
type TaskPanicError struct {
	Value any
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

type executorBase struct {
	ids atomic.Uint64
}

func (b *executorBase) newHandle() *runtime.TaskHandle {
	return runtime.NewTaskHandle(b.ids.Add(1))
}

func (b *executorBase) safeInvoke(task Task) (result runtime.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &TaskPanicError{Value: r}
		}
	}()
	return task()
}

func (b *executorBase) applyOutcome(handle *runtime.TaskHandle, result runtime.Value, err error) {
	if err != nil {
		handle.Fail(err)
		return
	}
	handle.Resolve(result)
}

func (b *executorBase) run(handle *runtime.TaskHandle, task Task) {
	result, err := b.safeInvoke(task)
	b.applyOutcome(handle, result, err)
}

// GoroutineExecutor runs each task on its own goroutine.
type GoroutineExecutor struct {
	executorBase
	wg sync.WaitGroup
}

func NewGoroutineExecutor() *GoroutineExecutor {
	return &GoroutineExecutor{}
}

func (e *GoroutineExecutor) Spawn(task Task) *runtime.TaskHandle {
	handle := e.newHandle()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(handle, task)
	}()
	return handle
}

func (e *GoroutineExecutor) Flush() {
	e.wg.Wait()
}

type serialTask struct {
	handle *runtime.TaskHandle
	task   Task
}

// SerialExecutor executes tasks on a single worker goroutine to provide deterministic scheduling for tests.
type SerialExecutor struct {
	executorBase

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []serialTask
	closed bool
	active bool
}

func NewSerialExecutor() *SerialExecutor {
	exec := &SerialExecutor{}
	exec.cond = sync.NewCond(&exec.mu)
	go exec.loop()
	return exec
}

func (e *SerialExecutor) Spawn(task Task) *runtime.TaskHandle {
	handle := e.newHandle()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		handle.Fail(fmt.Errorf("serial executor closed"))
		return handle
	}
	e.queue = append(e.queue, serialTask{handle: handle, task: task})
	e.cond.Broadcast()
	return handle
}

func (e *SerialExecutor) next() (serialTask, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return serialTask{}, false
	}
	task := e.queue[0]
	e.queue = e.queue[1:]
	return task, true
}

func (e *SerialExecutor) loop() {
	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.closed {
			e.cond.Wait()
		}
		if e.closed && len(e.queue) == 0 {
			e.mu.Unlock()
			return
		}
		task := e.queue[0]
		e.queue = e.queue[1:]
		e.active = true
		e.mu.Unlock()

		e.run(task.handle, task.task)

		e.mu.Lock()
		e.active = false
		e.cond.Broadcast()
		e.mu.Unlock()
	}
}

// helpUntilDone runs queued tasks inline on the worker until handle
// completes, so a task awaiting a later task cannot stall the queue.
func (e *SerialExecutor) helpUntilDone(handle *runtime.TaskHandle) {
	for handle.Status() == runtime.TaskPending {
		task, ok := e.next()
		if !ok {
			return
		}
		e.run(task.handle, task.task)
	}
}

func (e *SerialExecutor) Close() {
	e.mu.Lock()
	e.closed = true
	e.cond.Broadcast()
	e.mu.Unlock()
}

func (e *SerialExecutor) Flush() {
	e.mu.Lock()
	for (len(e.queue) > 0 || e.active) && !e.closed {
		e.cond.Wait()
	}
	e.mu.Unlock()
}
