package interpreter

import (
	"math"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/runtime"
)

var arithmeticMetamethods = map[string][]string{
	"+": {"__add", "__concat"},
	"-": {"__sub"},
	"*": {"__mul"},
	"/": {"__div"},
	"%": {"__mod"},
}

// index reads object[key]. A missing key follows __index: a function is
// called with (table, key), a table is searched in turn, anything else
// yields nil.
func (i *Interpreter) index(object, key runtime.Value, node ast.Node, state *evalState) (runtime.Value, error) {
	table, ok := object.(*runtime.Table)
	if !ok {
		return nil, i.fail(state, node, ErrType, "attempt to index a %s value", runtime.TypeName(object))
	}
	k, err := runtime.KeyOf(key)
	if err != nil {
		return nil, i.fail(state, node, ErrIndex, "%s", err.Error())
	}
	current := table
	for depth := 0; ; depth++ {
		if depth > maxMetaChain {
			return nil, i.fail(state, node, ErrIndex, "__index chain longer than %d tables", maxMetaChain)
		}
		if val, ok := current.RawGet(k); ok {
			return val, nil
		}
		handler, ok := current.Metamethod("__index")
		if !ok {
			return runtime.Nil, nil
		}
		switch h := handler.(type) {
		case *runtime.Table:
			current = h
		case *runtime.FunctionValue, *runtime.NativeFunctionValue:
			return i.callValue(h, []runtime.Value{current, key}, node, state)
		default:
			return runtime.Nil, nil
		}
	}
}

// setIndex writes object[key] = value. Present keys are overwritten in
// place; a missing key consults __newindex (function called with
// (table, key, value), table written in turn) and otherwise is inserted.
func (i *Interpreter) setIndex(object, key, value runtime.Value, node ast.Node, state *evalState) error {
	table, ok := object.(*runtime.Table)
	if !ok {
		return i.fail(state, node, ErrType, "attempt to index a %s value", runtime.TypeName(object))
	}
	k, err := runtime.KeyOf(key)
	if err != nil {
		return i.fail(state, node, ErrIndex, "%s", err.Error())
	}
	current := table
	for depth := 0; ; depth++ {
		if depth > maxMetaChain {
			return i.fail(state, node, ErrIndex, "__newindex chain longer than %d tables", maxMetaChain)
		}
		if current.SetExisting(k, value) {
			return nil
		}
		handler, ok := current.Metamethod("__newindex")
		if !ok {
			current.RawSet(k, value)
			return nil
		}
		switch h := handler.(type) {
		case *runtime.Table:
			current = h
		case *runtime.FunctionValue, *runtime.NativeFunctionValue:
			_, err := i.callValue(h, []runtime.Value{current, key, value}, node, state)
			return err
		default:
			return i.fail(state, node, ErrDispatch, "__newindex metamethod is a %s, not a function or table", runtime.TypeName(handler))
		}
	}
}

// metamethodFor returns the first metamethod among names defined by the
// left operand's metatable, then the right's.
func (i *Interpreter) metamethodFor(names []string, operands []runtime.Value, node ast.Node, state *evalState) (runtime.Value, bool, error) {
	for _, name := range names {
		for _, operand := range operands {
			table, ok := operand.(*runtime.Table)
			if !ok {
				continue
			}
			handler, ok := table.Metamethod(name)
			if !ok {
				continue
			}
			if !runtime.IsCallable(handler) {
				return nil, false, i.fail(state, node, ErrDispatch, "%s metamethod is a %s, not a function", name, runtime.TypeName(handler))
			}
			return handler, true, nil
		}
	}
	return nil, false, nil
}

func (i *Interpreter) binaryOp(op string, left, right runtime.Value, node ast.Node, state *evalState) (runtime.Value, error) {
	switch op {
	case "+", "-", "*", "/", "%":
		return i.arithmetic(op, left, right, node, state)
	case "==":
		eq, err := i.equals(left, right, node, state)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: eq}, nil
	case "!=":
		eq, err := i.equals(left, right, node, state)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: !eq}, nil
	case "<":
		return i.compare(op, "__lt", left, right, node, state)
	case "<=":
		return i.compare(op, "__le", left, right, node, state)
	case ">":
		return i.compare(op, "__lt", right, left, node, state)
	case ">=":
		return i.compare(op, "__le", right, left, node, state)
	default:
		return nil, i.fail(state, node, ErrInternal, "unknown binary operator %s", op)
	}
}

func (i *Interpreter) arithmetic(op string, left, right runtime.Value, node ast.Node, state *evalState) (runtime.Value, error) {
	if l, ok := left.(runtime.IntValue); ok {
		if r, ok := right.(runtime.IntValue); ok {
			return i.intArithmetic(op, l.Val, r.Val, node, state)
		}
	}
	if l, ok := toFloat(left); ok {
		if r, ok := toFloat(right); ok {
			return floatArithmetic(op, l, r), nil
		}
	}
	if op == "+" {
		if l, ok := left.(runtime.StringValue); ok {
			if r, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: l.Val + r.Val}, nil
			}
		}
	}
	handler, ok, err := i.metamethodFor(arithmeticMetamethods[op], []runtime.Value{left, right}, node, state)
	if err != nil {
		return nil, err
	}
	if ok {
		return i.callValue(handler, []runtime.Value{left, right}, node, state)
	}
	return nil, i.fail(state, node, ErrType, "unsupported operand kinds for '%s': %s and %s", op, runtime.TypeName(left), runtime.TypeName(right))
}

func (i *Interpreter) intArithmetic(op string, l, r int64, node ast.Node, state *evalState) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.IntValue{Val: l + r}, nil
	case "-":
		return runtime.IntValue{Val: l - r}, nil
	case "*":
		return runtime.IntValue{Val: l * r}, nil
	case "/":
		if r == 0 {
			return nil, i.fail(state, node, ErrArithmetic, "integer division by zero")
		}
		return runtime.IntValue{Val: l / r}, nil
	default:
		if r == 0 {
			return nil, i.fail(state, node, ErrArithmetic, "integer modulo by zero")
		}
		return runtime.IntValue{Val: l % r}, nil
	}
}

func floatArithmetic(op string, l, r float64) runtime.Value {
	switch op {
	case "+":
		return runtime.FloatValue{Val: l + r}
	case "-":
		return runtime.FloatValue{Val: l - r}
	case "*":
		return runtime.FloatValue{Val: l * r}
	case "/":
		return runtime.FloatValue{Val: l / r}
	default:
		return runtime.FloatValue{Val: math.Mod(l, r)}
	}
}

func toFloat(v runtime.Value) (float64, bool) {
	switch n := v.(type) {
	case runtime.IntValue:
		return float64(n.Val), true
	case runtime.FloatValue:
		return n.Val, true
	default:
		return 0, false
	}
}

func (i *Interpreter) negate(operand runtime.Value, node ast.Node, state *evalState) (runtime.Value, error) {
	switch v := operand.(type) {
	case runtime.IntValue:
		return runtime.IntValue{Val: -v.Val}, nil
	case runtime.FloatValue:
		return runtime.FloatValue{Val: -v.Val}, nil
	}
	handler, ok, err := i.metamethodFor([]string{"__unm"}, []runtime.Value{operand}, node, state)
	if err != nil {
		return nil, err
	}
	if ok {
		return i.callValue(handler, []runtime.Value{operand}, node, state)
	}
	return nil, i.fail(state, node, ErrType, "unsupported operand kind for unary '-': %s", runtime.TypeName(operand))
}

func (i *Interpreter) length(operand runtime.Value, node ast.Node, state *evalState) (runtime.Value, error) {
	switch v := operand.(type) {
	case runtime.StringValue:
		return runtime.IntValue{Val: int64(len(v.Val))}, nil
	case *runtime.Table:
		handler, ok, err := i.metamethodFor([]string{"__len"}, []runtime.Value{v}, node, state)
		if err != nil {
			return nil, err
		}
		if ok {
			return i.callValue(handler, []runtime.Value{v}, node, state)
		}
		return runtime.IntValue{Val: v.Len()}, nil
	default:
		return nil, i.fail(state, node, ErrType, "unsupported operand kind for '#': %s", runtime.TypeName(operand))
	}
}

// rawEquals compares without metamethods: numbers by value across int and
// float, everything else by value or identity.
func rawEquals(left, right runtime.Value) bool {
	if l, ok := toFloat(left); ok {
		if r, ok := toFloat(right); ok {
			li, lInt := left.(runtime.IntValue)
			ri, rInt := right.(runtime.IntValue)
			if lInt && rInt {
				return li.Val == ri.Val
			}
			return l == r
		}
		return false
	}
	return left == right
}

func (i *Interpreter) equals(left, right runtime.Value, node ast.Node, state *evalState) (bool, error) {
	if rawEquals(left, right) {
		return true, nil
	}
	lt, ok := left.(*runtime.Table)
	if !ok {
		return false, nil
	}
	rt, ok := right.(*runtime.Table)
	if !ok {
		return false, nil
	}
	handler, ok, err := i.sharedMetamethod("__eq", lt, rt, node, state)
	if err != nil || !ok {
		return false, err
	}
	result, err := i.callValue(handler, []runtime.Value{left, right}, node, state)
	if err != nil {
		return false, err
	}
	return runtime.Truthy(result), nil
}

// sharedMetamethod finds name only when both tables have the same metatable.
func (i *Interpreter) sharedMetamethod(name string, left, right *runtime.Table, node ast.Node, state *evalState) (runtime.Value, bool, error) {
	mt := left.Metatable()
	if mt == nil || mt != right.Metatable() {
		return nil, false, nil
	}
	handler, ok := mt.RawGet(runtime.StringKey(name))
	if !ok {
		return nil, false, nil
	}
	if !runtime.IsCallable(handler) {
		return nil, false, i.fail(state, node, ErrDispatch, "%s metamethod is a %s, not a function", name, runtime.TypeName(handler))
	}
	return handler, true, nil
}

// compare evaluates left < right or left <= right; callers swap operands
// for > and >=. op is the operator as written, for messages.
func (i *Interpreter) compare(op, metamethod string, left, right runtime.Value, node ast.Node, state *evalState) (runtime.Value, error) {
	orEqual := metamethod == "__le"
	li, lInt := left.(runtime.IntValue)
	ri, rInt := right.(runtime.IntValue)
	if lInt && rInt {
		if orEqual {
			return runtime.BoolValue{Val: li.Val <= ri.Val}, nil
		}
		return runtime.BoolValue{Val: li.Val < ri.Val}, nil
	}
	if l, ok := toFloat(left); ok {
		if r, ok := toFloat(right); ok {
			if orEqual {
				return runtime.BoolValue{Val: l <= r}, nil
			}
			return runtime.BoolValue{Val: l < r}, nil
		}
	}
	if l, ok := left.(runtime.StringValue); ok {
		if r, ok := right.(runtime.StringValue); ok {
			if orEqual {
				return runtime.BoolValue{Val: l.Val <= r.Val}, nil
			}
			return runtime.BoolValue{Val: l.Val < r.Val}, nil
		}
	}
	if lt, ok := left.(*runtime.Table); ok {
		if rt, ok := right.(*runtime.Table); ok {
			handler, found, err := i.sharedMetamethod(metamethod, lt, rt, node, state)
			if err != nil {
				return nil, err
			}
			if found {
				result, err := i.callValue(handler, []runtime.Value{left, right}, node, state)
				if err != nil {
					return nil, err
				}
				return runtime.BoolValue{Val: runtime.Truthy(result)}, nil
			}
		}
	}
	if op == ">" || op == ">=" {
		left, right = right, left
	}
	return nil, i.fail(state, node, ErrType, "cannot compare %s %s %s", runtime.TypeName(left), op, runtime.TypeName(right))
}
