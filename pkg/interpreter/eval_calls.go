package interpreter

import (
	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/runtime"
)

// nativeCall is the NativeCallContext.State handed to builtins.
type nativeCall struct {
	state *evalState
	node  ast.Node
}

// callValue invokes any callable value: closures, natives, and tables whose
// metatable defines __call.
func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value, node ast.Node, state *evalState) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.callFunction(fn, args, node, state)
	case *runtime.NativeFunctionValue:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, i.fail(state, node, ErrArity, "%s expects %d arguments, got %d", fn.Name, fn.Arity, len(args))
		}
		ctx := &runtime.NativeCallContext{State: &nativeCall{state: state, node: node}}
		result, err := fn.Impl(ctx, args)
		if err != nil {
			return nil, i.asRuntimeError(err, state, node)
		}
		if result == nil {
			result = runtime.Nil
		}
		return result, nil
	case *runtime.Table:
		handler, ok := fn.Metamethod("__call")
		if !ok {
			return nil, i.fail(state, node, ErrDispatch, "attempt to call a table without a __call metamethod")
		}
		if !runtime.IsCallable(handler) {
			return nil, i.fail(state, node, ErrDispatch, "__call metamethod is a %s, not a function", runtime.TypeName(handler))
		}
		withSelf := make([]runtime.Value, 0, len(args)+1)
		withSelf = append(withSelf, fn)
		withSelf = append(withSelf, args...)
		return i.callValue(handler, withSelf, node, state)
	default:
		return nil, i.fail(state, node, ErrType, "attempt to call a %s value", runtime.TypeName(callee))
	}
}

func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value, node ast.Node, state *evalState) (runtime.Value, error) {
	decl := fn.Declaration
	if len(args) != len(decl.Params) {
		return nil, i.fail(state, node, ErrArity, "%s expects %d arguments, got %d", describeFunction(fn), len(decl.Params), len(args))
	}
	if state.depth+1 > i.maxCallDepth {
		return nil, i.fail(state, node, ErrStackOverflow, "call depth exceeded %d calling %s", i.maxCallDepth, describeFunction(fn))
	}
	inner := state.call(fn.Source)
	frame := runtime.NewEnvironment(fn.Closure)
	for idx, param := range decl.Params {
		frame.Define(param.Name.Name, args[idx])
	}
	_, err := i.evaluateStatements(decl.Body.Statements, frame, inner)
	if err != nil {
		switch sig := err.(type) {
		case returnSignal:
			return sig.value, nil
		case breakSignal, continueSignal:
			return nil, i.asRuntimeError(sig, inner, node)
		default:
			return nil, err
		}
	}
	return runtime.Nil, nil
}

func describeFunction(fn *runtime.FunctionValue) string {
	if fn.Name == "" {
		return "anonymous function"
	}
	return "function '" + fn.Name + "'"
}

// nativeState recovers the caller's state from a native call context. A
// native invoked from Go without one gets a fresh top-level state.
func (i *Interpreter) nativeState(ctx *runtime.NativeCallContext) *nativeCall {
	if ctx != nil {
		if call, ok := ctx.State.(*nativeCall); ok && call != nil {
			return call
		}
	}
	return &nativeCall{state: i.newState(i.sourceName, false)}
}
