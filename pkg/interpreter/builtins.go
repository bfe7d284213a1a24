package interpreter

import (
	"strings"

	"github.com/samjay22/Lux/pkg/runtime"
)

type builtinFunc func(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error)

type builtin struct {
	name  string
	arity int
	impl  builtinFunc
}

var builtins = []builtin{
	{"print", -1, builtinPrint},
	{"setmetatable", 2, builtinSetmetatable},
	{"getmetatable", 1, builtinGetmetatable},
	{"tostring", 1, builtinTostring},
	{"type", 1, builtinType},
	{"rawget", 2, builtinRawget},
	{"rawset", 3, builtinRawset},
	{"rawequal", 2, builtinRawequal},
	{"rawlen", 1, builtinRawlen},
}

func (i *Interpreter) registerBuiltins(env *runtime.Environment) {
	for _, b := range builtins {
		impl := b.impl
		env.Define(b.name, &runtime.NativeFunctionValue{
			Name:  b.name,
			Arity: b.arity,
			Impl: func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
				return impl(i, i.nativeState(ctx), args)
			},
		})
	}
}

func (i *Interpreter) expectTable(call *nativeCall, fn string, v runtime.Value) (*runtime.Table, error) {
	table, ok := v.(*runtime.Table)
	if !ok {
		return nil, i.fail(call.state, call.node, ErrType, "%s expects a table, got %s", fn, runtime.TypeName(v))
	}
	return table, nil
}

func (i *Interpreter) tableKey(call *nativeCall, v runtime.Value) (runtime.TableKey, error) {
	key, err := runtime.KeyOf(v)
	if err != nil {
		return key, i.fail(call.state, call.node, ErrIndex, "%s", err.Error())
	}
	return key, nil
}

// builtinPrint writes its arguments separated by tabs.
func builtinPrint(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error) {
	parts := make([]string, len(args))
	for idx, arg := range args {
		s, err := i.stringifyValue(arg, call.node, call.state)
		if err != nil {
			return nil, err
		}
		parts[idx] = s
	}
	i.write(strings.Join(parts, "\t") + "\n")
	return runtime.Nil, nil
}

func builtinSetmetatable(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error) {
	table, err := i.expectTable(call, "setmetatable", args[0])
	if err != nil {
		return nil, err
	}
	switch mt := args[1].(type) {
	case *runtime.Table:
		table.SetMetatable(mt)
	case runtime.NilValue:
		table.SetMetatable(nil)
	default:
		return nil, i.fail(call.state, call.node, ErrIndex, "metatable must be a table or nil, got %s", runtime.TypeName(mt))
	}
	return table, nil
}

func builtinGetmetatable(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error) {
	table, err := i.expectTable(call, "getmetatable", args[0])
	if err != nil {
		return nil, err
	}
	if mt := table.Metatable(); mt != nil {
		return mt, nil
	}
	return runtime.Nil, nil
}

func builtinTostring(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error) {
	s, err := i.stringifyValue(args[0], call.node, call.state)
	if err != nil {
		return nil, err
	}
	return runtime.StringValue{Val: s}, nil
}

func builtinType(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error) {
	return runtime.StringValue{Val: runtime.TypeName(args[0])}, nil
}

func builtinRawget(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error) {
	table, err := i.expectTable(call, "rawget", args[0])
	if err != nil {
		return nil, err
	}
	key, err := i.tableKey(call, args[1])
	if err != nil {
		return nil, err
	}
	if v, ok := table.RawGet(key); ok {
		return v, nil
	}
	return runtime.Nil, nil
}

func builtinRawset(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error) {
	table, err := i.expectTable(call, "rawset", args[0])
	if err != nil {
		return nil, err
	}
	key, err := i.tableKey(call, args[1])
	if err != nil {
		return nil, err
	}
	table.RawSet(key, args[2])
	return table, nil
}

func builtinRawequal(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error) {
	return runtime.BoolValue{Val: rawEquals(args[0], args[1])}, nil
}

func builtinRawlen(i *Interpreter, call *nativeCall, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case *runtime.Table:
		return runtime.IntValue{Val: v.Len()}, nil
	case runtime.StringValue:
		return runtime.IntValue{Val: int64(len(v.Val))}, nil
	default:
		return nil, i.fail(call.state, call.node, ErrType, "rawlen expects a table or string, got %s", runtime.TypeName(v))
	}
}
