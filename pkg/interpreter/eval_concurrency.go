package interpreter

import (
	"errors"
	"fmt"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/runtime"
)

// evaluateSpawnExpression evaluates the callee and arguments in the
// spawning context, then hands the call to the executor. The task runs
// with its own call depth in the closure's captured environment.
func (i *Interpreter) evaluateSpawnExpression(expr *ast.SpawnExpression, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	call := expr.Call
	callee, err := i.evaluateExpression(call.Callee, env, state)
	if err != nil {
		return nil, err
	}
	args, err := i.evaluateArguments(call.Arguments, env, state)
	if err != nil {
		return nil, err
	}
	taskState := i.newState(state.source, true)
	handle := i.executor.Spawn(func() (runtime.Value, error) {
		result, err := i.callValue(callee, args, call, taskState)
		i.logger.Debug("task completed", "callee", runtime.TypeName(callee), "failed", err != nil)
		return result, err
	})
	i.trackTask(handle)
	i.logger.Debug("task spawned",
		"task", handle.ID(),
		"callee", runtime.TypeName(callee),
		"source", state.source,
		"line", expr.Span().Start.Line)
	return handle, nil
}

func (i *Interpreter) trackTask(handle *runtime.TaskHandle) {
	i.tasksMu.Lock()
	i.tasks = append(i.tasks, handle)
	i.tasksMu.Unlock()
}

// evaluateAwaitExpression blocks on a task handle, or on every handle held
// by a table, in which case the results come back in a new table under the
// same keys.
func (i *Interpreter) evaluateAwaitExpression(expr *ast.AwaitExpression, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env, state)
	if err != nil {
		return nil, err
	}
	switch v := operand.(type) {
	case *runtime.TaskHandle:
		return i.awaitHandle(v, expr, state)
	case *runtime.Table:
		results := runtime.NewTable()
		for _, entry := range v.Entries() {
			val := entry.Value
			if handle, ok := val.(*runtime.TaskHandle); ok {
				if val, err = i.awaitHandle(handle, expr, state); err != nil {
					return nil, err
				}
			}
			results.RawSet(entry.Key, val)
		}
		return results, nil
	default:
		return nil, i.fail(state, expr, ErrType, "cannot await a %s value", runtime.TypeName(operand))
	}
}

// awaitHandle re-raises a task failure at the await site with the original
// kind, wrapping the task's error.
func (i *Interpreter) awaitHandle(handle *runtime.TaskHandle, node ast.Node, state *evalState) (runtime.Value, error) {
	if state.inTask {
		if helper, ok := i.executor.(taskHelper); ok {
			helper.helpUntilDone(handle)
		}
	}
	val, err := handle.Await()
	if err == nil {
		return val, nil
	}
	kind := ErrInternal
	var rt *RuntimeError
	if errors.As(err, &rt) {
		kind = rt.Kind
	}
	wrapped := i.fail(state, node, kind, "awaited task #%d failed: %s", handle.ID(), err.Error())
	wrapped.Cause = err
	return nil, wrapped
}

// flushTasks waits for the executor to drain and reports the failures of
// tasks nobody awaited.
func (i *Interpreter) flushTasks() ErrorList {
	i.executor.Flush()
	i.tasksMu.Lock()
	tasks := i.tasks
	i.tasks = nil
	i.tasksMu.Unlock()

	var errs ErrorList
	for _, handle := range tasks {
		if handle.Status() != runtime.TaskFailed || handle.Awaited() {
			continue
		}
		err := handle.Err()
		rt := i.asRuntimeError(err, nil, nil)
		errs = append(errs, &RuntimeError{
			Kind:    rt.Kind,
			Message: fmt.Sprintf("unawaited task #%d failed: %s", handle.ID(), rt.Message),
			Source:  rt.Source,
			Pos:     rt.Pos,
			Cause:   err,
		})
	}
	return errs
}
