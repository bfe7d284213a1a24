package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samjay22/Lux/pkg/ast"
)

// ErrorKind classifies runtime failures.
type ErrorKind string

const (
	ErrUndefinedVariable ErrorKind = "UndefinedVariable"
	ErrType              ErrorKind = "TypeError"
	ErrArity             ErrorKind = "ArityError"
	ErrIndex             ErrorKind = "IndexError"
	ErrDispatch          ErrorKind = "DispatchError"
	ErrArithmetic        ErrorKind = "ArithmeticError"
	ErrStackOverflow     ErrorKind = "StackOverflow"
	ErrControlFlow       ErrorKind = "ControlFlowError"
	ErrInternal          ErrorKind = "InternalError"
)

// RuntimeError is raised by evaluation. Pos is the start of the node that
// failed; Cause holds the underlying error when one exists (for example the
// failure of an awaited task).
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Source  string
	Pos     ast.Position
	Cause   error
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteByte(':')
	}
	if e.Pos.Line > 0 {
		fmt.Fprintf(&b, "%d:%d:", e.Pos.Line, e.Pos.Column)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	return b.String()
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// ErrorList collects the runtime errors of one run: the error that stopped
// the main program, if any, followed by failures of tasks nobody awaited.
type ErrorList []*RuntimeError

func (l ErrorList) Error() string {
	parts := make([]string, len(l))
	for i, err := range l {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "\n")
}

func (l ErrorList) Unwrap() []error {
	out := make([]error, len(l))
	for i, err := range l {
		out[i] = err
	}
	return out
}

// KindOf reports the kind of the first RuntimeError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var rt *RuntimeError
	if errors.As(err, &rt) {
		return rt.Kind, true
	}
	return "", false
}

func (i *Interpreter) fail(state *evalState, node ast.Node, kind ErrorKind, format string, args ...any) *RuntimeError {
	err := &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if state != nil {
		err.Source = state.source
	}
	if node != nil {
		err.Pos = node.Span().Start
	}
	return err
}

// asRuntimeError converts whatever escaped evaluation into a RuntimeError.
// Control signals that reach this point were used outside their construct.
func (i *Interpreter) asRuntimeError(err error, state *evalState, node ast.Node) *RuntimeError {
	switch sig := err.(type) {
	case *RuntimeError:
		return sig
	case breakSignal:
		return i.fail(state, sig.node, ErrControlFlow, "break outside of a loop")
	case continueSignal:
		return i.fail(state, sig.node, ErrControlFlow, "continue outside of a loop")
	case returnSignal:
		return i.fail(state, node, ErrControlFlow, "return outside of a function")
	}
	var rt *RuntimeError
	if errors.As(err, &rt) {
		return rt
	}
	wrapped := i.fail(state, node, ErrInternal, "%v", err)
	wrapped.Cause = err
	return wrapped
}
