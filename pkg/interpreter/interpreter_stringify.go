package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/runtime"
)

// stringifyValue renders val the way print and tostring show it, calling
// __tostring on tables that define it.
func (i *Interpreter) stringifyValue(val runtime.Value, node ast.Node, state *evalState) (string, error) {
	return i.stringify(val, node, state, make(map[*runtime.Table]bool), false)
}

// ToString renders val as the tostring builtin does.
func (i *Interpreter) ToString(val runtime.Value) (string, error) {
	return i.stringifyValue(val, nil, i.newState(i.sourceName, false))
}

func (i *Interpreter) stringify(val runtime.Value, node ast.Node, state *evalState, seen map[*runtime.Table]bool, nested bool) (string, error) {
	table, ok := val.(*runtime.Table)
	if !ok {
		if s, ok := val.(runtime.StringValue); ok && nested {
			return ast.QuoteString(s.Val), nil
		}
		return valueToString(val), nil
	}
	handler, ok, err := i.metamethodFor([]string{"__tostring"}, []runtime.Value{table}, node, state)
	if err != nil {
		return "", err
	}
	if ok {
		result, err := i.callValue(handler, []runtime.Value{table}, node, state)
		if err != nil {
			return "", err
		}
		s, ok := result.(runtime.StringValue)
		if !ok {
			return "", i.fail(state, node, ErrType, "__tostring must return a string, got %s", runtime.TypeName(result))
		}
		return s.Val, nil
	}
	if seen[table] {
		return "<cycle>", nil
	}
	seen[table] = true
	defer delete(seen, table)

	// The border prints as a sequence, everything else as key = value in
	// insertion order.
	border := table.Len()
	var seq []string
	var rest []string
	for _, entry := range table.Entries() {
		if !entry.Key.IsString && entry.Key.Int >= 1 && entry.Key.Int <= border {
			continue
		}
		rendered, err := i.stringify(entry.Value, node, state, seen, true)
		if err != nil {
			return "", err
		}
		switch {
		case entry.Key.IsString && ast.IsIdentifierName(entry.Key.Str):
			rest = append(rest, entry.Key.Str+" = "+rendered)
		default:
			rest = append(rest, "["+entry.Key.String()+"] = "+rendered)
		}
	}
	for idx := int64(1); idx <= border; idx++ {
		v, _ := table.RawGet(runtime.IntKey(idx))
		rendered, err := i.stringify(v, node, state, seen, true)
		if err != nil {
			return "", err
		}
		seq = append(seq, rendered)
	}
	return "{" + strings.Join(append(seq, rest...), ", ") + "}", nil
}

// valueToString is the metamethod-free rendering of scalars and handles.
func valueToString(val runtime.Value) string {
	switch v := val.(type) {
	case nil, runtime.NilValue:
		return "nil"
	case runtime.BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case runtime.IntValue:
		return strconv.FormatInt(v.Val, 10)
	case runtime.FloatValue:
		return formatFloat(v.Val)
	case runtime.StringValue:
		return v.Val
	case *runtime.Table:
		return fmt.Sprintf("<table %p>", v)
	case *runtime.FunctionValue:
		if v.Name == "" {
			return "<fn>"
		}
		return "<fn " + v.Name + ">"
	case *runtime.NativeFunctionValue:
		return "<native fn " + v.Name + ">"
	case *runtime.TaskHandle:
		return fmt.Sprintf("<task #%d>", v.ID())
	default:
		return fmt.Sprintf("<%s>", val.Kind())
	}
}

// formatFloat uses the shortest %g form and keeps a ".0" on integral
// values so they read back as floats.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
