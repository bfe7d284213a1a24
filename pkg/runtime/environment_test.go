package runtime

import (
	"errors"
	"testing"
)

func TestEnvironmentResolveWalksChain(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", IntValue{Val: 1})
	child := global.Extend()
	child.Define("y", IntValue{Val: 2})

	if v, err := child.Resolve("x"); err != nil || v != (IntValue{Val: 1}) {
		t.Fatalf("Resolve(x) = %#v, %v", v, err)
	}
	_, err := global.Resolve("y")
	var undefined *UndefinedVariableError
	if !errors.As(err, &undefined) || undefined.Name != "y" {
		t.Fatalf("expected undefined y, got %v", err)
	}
}

func TestEnvironmentAssignUpdatesNearestBinding(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", IntValue{Val: 1})
	child := global.Extend()
	if err := child.Assign("x", IntValue{Val: 5}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if child.HasOwn("x") {
		t.Fatalf("assignment must not create a binding in the child frame")
	}
	if v, _ := global.Resolve("x"); v != (IntValue{Val: 5}) {
		t.Fatalf("global x = %#v", v)
	}
	var undefined *UndefinedVariableError
	if err := child.Assign("nope", Nil); !errors.As(err, &undefined) {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
}

func TestEnvironmentDeclareReportsRedeclaration(t *testing.T) {
	env := NewEnvironment(nil)
	if env.Declare("a", IntValue{Val: 1}, false) {
		t.Fatalf("first declaration is not a redeclaration")
	}
	if !env.Declare("a", IntValue{Val: 2}, false) {
		t.Fatalf("second declaration should report redeclaration")
	}
	if v, _ := env.Resolve("a"); v != (IntValue{Val: 2}) {
		t.Fatalf("redeclaration should overwrite, got %#v", v)
	}
	if keys := env.Keys(); len(keys) != 1 {
		t.Fatalf("keys = %v", keys)
	}
}

func TestEnvironmentConstBindings(t *testing.T) {
	env := NewEnvironment(nil)
	env.Declare("limit", IntValue{Val: 3}, true)
	var constErr *ConstAssignmentError
	if err := env.Extend().Assign("limit", IntValue{Val: 4}); !errors.As(err, &constErr) {
		t.Fatalf("expected const assignment error, got %v", err)
	}
}

func TestEnvironmentCloneFrameIsIndependent(t *testing.T) {
	global := NewEnvironment(nil)
	loop := global.Extend()
	loop.Define("i", IntValue{Val: 0})
	clone := loop.CloneFrame()
	if clone.Parent() != global {
		t.Fatalf("clone should share the parent")
	}
	if err := clone.Assign("i", IntValue{Val: 1}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if v, _ := loop.Resolve("i"); v != (IntValue{Val: 0}) {
		t.Fatalf("original frame changed: %#v", v)
	}
	if v, _ := clone.Resolve("i"); v != (IntValue{Val: 1}) {
		t.Fatalf("clone frame = %#v", v)
	}
}
