package runtime

import (
	"fmt"

	"github.com/samjay22/Lux/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTable
	KindFunction
	KindNativeFunction
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindTask:
		return "task"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind { return KindInt }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// Nil is the canonical nil value.
var Nil Value = NilValue{}

//-----------------------------------------------------------------------------
// Functions & closures
//-----------------------------------------------------------------------------

// FunctionValue is a user-defined closure. Name is empty for anonymous
// function literals; Source names the file the literal came from.
type FunctionValue struct {
	Name        string
	Source      string
	Declaration *ast.FunctionLiteral
	Closure     *Environment
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// NativeCallContext is handed to native functions. State carries the
// interpreter's per-execution bookkeeping so natives can call back into
// user code.
type NativeCallContext struct {
	Env   *Environment
	State any
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeFunctionValue wraps a Go builtin. Arity < 0 means variadic.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }

//-----------------------------------------------------------------------------
// Utility helpers
//-----------------------------------------------------------------------------

// Truthy reports whether v counts as true in a condition. Only nil and
// false are falsy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, NilValue:
		return false
	case BoolValue:
		return val.Val
	default:
		return true
	}
}

// IsNil reports whether v is absent or the nil value.
func IsNil(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NilValue)
	return ok
}

// TypeName is the name the language exposes for v's kind; native and user
// functions are both "function".
func TypeName(v Value) string {
	if v == nil {
		return KindNil.String()
	}
	if v.Kind() == KindNativeFunction {
		return KindFunction.String()
	}
	return v.Kind().String()
}

// IsCallable reports whether v is a function value of either flavour.
func IsCallable(v Value) bool {
	switch v.(type) {
	case *FunctionValue, *NativeFunctionValue:
		return true
	default:
		return false
	}
}
