package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/samjay22/Lux/pkg/interpreter"
)

func newTestSession() (*replSession, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	interp := interpreter.New(interpreter.WithOutput(out))
	return newReplSession(interp, out, errOut), out, errOut
}

func TestReplKeepsBindingsAcrossChunks(t *testing.T) {
	s, out, errOut := newTestSession()
	for _, line := range []string{
		"local total := 0",
		"fn add(n) {",
		"    total = total + n",
		"    return total",
		"}",
		"add(2)",
		"add(3)",
		"print(total)",
	} {
		s.feed(line)
	}
	if errOut.Len() != 0 {
		t.Fatalf("stderr = %q", errOut.String())
	}
	if out.String() != "2\n5\n5\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestReplEchoesExpressionValues(t *testing.T) {
	s, out, _ := newTestSession()
	s.feed(`local v := setmetatable({}, {__tostring = fn(t) { return "<v>" }})`)
	s.feed("v")
	s.feed(`"text"`)
	s.feed("nil")
	s.feed("1.5 * 2")
	if out.String() != "<v>\ntext\n3.0\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestReplReportsErrorsAndContinues(t *testing.T) {
	s, out, errOut := newTestSession()
	s.feed("missing + 1")
	s.feed("local x := )")
	s.feed("1 + 1")
	if !strings.Contains(errOut.String(), "<repl:1>:1:1: UndefinedVariable") {
		t.Fatalf("stderr = %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "<repl:2>:1:12: ParseError") {
		t.Fatalf("stderr = %q", errOut.String())
	}
	if out.String() != "2\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestReplResetDropsPartialInput(t *testing.T) {
	s, out, _ := newTestSession()
	if !s.feed("fn broken() {") {
		t.Fatalf("expected continuation")
	}
	if !s.reset() {
		t.Fatalf("reset should report dropped input")
	}
	s.feed("40 + 2")
	if out.String() != "42\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestNeedsMoreInput(t *testing.T) {
	cases := map[string]bool{
		"print(1)":          false,
		"fn f() {":          true,
		"local t := {1, 2,": true,
		"f(":                true,
		`"open string`:      true,
		"/* open comment":   true,
		"x }":               false,
		"local y := 1 $ 2":  false,
		"if a { if b { } }": false,
		"t[":                true,
	}
	for src, want := range cases {
		if got := needsMoreInput(src); got != want {
			t.Fatalf("needsMoreInput(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestCompleteWord(t *testing.T) {
	got := completeWord("local v := set", replCompletions)
	if len(got) != 1 || got[0] != "local v := setmetatable" {
		t.Fatalf("completeWord = %v", got)
	}
	if got := completeWord("x + ", replCompletions); got != nil {
		t.Fatalf("expected no completions, got %v", got)
	}
	got = completeWord("raw", replCompletions)
	if len(got) != 4 {
		t.Fatalf("expected the four raw builtins, got %v", got)
	}
}
