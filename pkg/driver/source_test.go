package driver

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/samjay22/Lux/pkg/lexer"
	"github.com/samjay22/Lux/pkg/parser"
)

func TestLoadAndCompile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.lux")
	writeFile(t, path, "local x := 1\nprint(x + 2)")
	src, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if !filepath.IsAbs(src.Path) || src.Text != "local x := 1\nprint(x + 2)\n" {
		t.Fatalf("source = %+v", src)
	}
	program, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
}

func TestLoadSourceMissing(t *testing.T) {
	if _, err := LoadSource(filepath.Join(t.TempDir(), "nope.lux")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestCompileReportsSyntaxErrors(t *testing.T) {
	_, err := Compile(NewSource("bad.lux", "local x := \"unterminated"))
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) || !IsSyntaxError(err) {
		t.Fatalf("expected LexError, got %v", err)
	}

	_, err = Compile(NewSource("bad.lux", "local := 1\nlocal y := )"))
	var list parser.ErrorList
	if !errors.As(err, &list) || len(list) != 2 || !IsSyntaxError(err) {
		t.Fatalf("expected two parse errors, got %v", err)
	}
	if list[0].Source != "bad.lux" {
		t.Fatalf("parse error source = %q", list[0].Source)
	}
}

func TestTokens(t *testing.T) {
	tokens, err := Tokens(NewSource("t.lux", "a := 1"))
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if len(tokens) != 4 || tokens[3].Kind != lexer.EOF {
		t.Fatalf("tokens = %v", tokens)
	}
}
