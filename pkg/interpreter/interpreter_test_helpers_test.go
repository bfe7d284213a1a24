package interpreter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/samjay22/Lux/pkg/parser"
	"github.com/samjay22/Lux/pkg/runtime"
)

type runResult struct {
	value  runtime.Value
	env    *runtime.Environment
	stdout string
	err    error
}

func runSource(t *testing.T, src string, opts ...Option) runResult {
	t.Helper()
	program, err := parser.ParseSource(src, "test.lux")
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, src)
	}
	var out bytes.Buffer
	interp := New(append([]Option{WithOutput(&out), WithSourceName("test.lux")}, opts...)...)
	env := interp.NewGlobalEnvironment()
	value, err := interp.ExecuteIn(program, env)
	return runResult{value: value, env: env, stdout: out.String(), err: err}
}

func mustRun(t *testing.T, src string, opts ...Option) runResult {
	t.Helper()
	res := runSource(t, src, opts...)
	if res.err != nil {
		t.Fatalf("run: %v\n%s", res.err, src)
	}
	return res
}

// expectKind runs src and requires the first runtime error to have kind.
func expectKind(t *testing.T, src string, kind ErrorKind, opts ...Option) *RuntimeError {
	t.Helper()
	res := runSource(t, src, opts...)
	if res.err == nil {
		t.Fatalf("expected %s, program succeeded\n%s", kind, src)
	}
	var rt *RuntimeError
	if !errors.As(res.err, &rt) {
		t.Fatalf("expected *RuntimeError, got %T: %v", res.err, res.err)
	}
	if rt.Kind != kind {
		t.Fatalf("expected %s, got %s: %v", kind, rt.Kind, rt)
	}
	return rt
}

func expectOutput(t *testing.T, src string, want string, opts ...Option) {
	t.Helper()
	res := mustRun(t, src, opts...)
	if res.stdout != want {
		t.Fatalf("stdout = %q, want %q", res.stdout, want)
	}
}

func lookup(t *testing.T, env *runtime.Environment, name string) runtime.Value {
	t.Helper()
	v, err := env.Resolve(name)
	if err != nil {
		t.Fatalf("resolve %s: %v", name, err)
	}
	return v
}

func tableOf(t *testing.T, v runtime.Value) *runtime.Table {
	t.Helper()
	table, ok := v.(*runtime.Table)
	if !ok {
		t.Fatalf("expected table, got %#v", v)
	}
	return table
}

func serialExecutor(t *testing.T) *SerialExecutor {
	t.Helper()
	exec := NewSerialExecutor()
	t.Cleanup(exec.Close)
	return exec
}

func lines(s ...string) string {
	return strings.Join(s, "\n") + "\n"
}
