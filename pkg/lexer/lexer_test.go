package lexer

import (
	"errors"
	"testing"
)

func kindsOf(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, src string, want ...Kind) []Token {
	t.Helper()
	tokens, err := Tokenize(src, "test.lux")
	if err != nil {
		t.Fatalf("tokenize %q: %v", src, err)
	}
	got := kindsOf(tokens)
	want = append(want, EOF)
	if len(got) != len(want) {
		t.Fatalf("tokenize %q: got %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokenize %q: token %d = %s, want %s", src, i, got[i], want[i])
		}
	}
	return tokens
}

func TestTokenizeDeclaration(t *testing.T) {
	tokens := assertKinds(t, "local x: int = 42",
		Local, Identifier, Colon, TypeInt, Assign, Integer)
	if tokens[5].Lexeme != "42" {
		t.Fatalf("integer lexeme = %q", tokens[5].Lexeme)
	}
}

func TestTokenizeKeywords(t *testing.T) {
	assertKinds(t, "local const fn async await spawn if else while for break continue return",
		Local, Const, Fn, Async, Await, Spawn, If, Else, While, For, Break, Continue, Return)
	assertKinds(t, "int float string bool table nil true false and or not setmetatable getmetatable",
		TypeInt, TypeFloat, TypeString, TypeBool, TypeTable, Nil, True, False, And, Or, Not, Setmetatable, Getmetatable)
}

func TestTokenizeOperators(t *testing.T) {
	assertKinds(t, "+ - * / % == != < <= > >= = := # & -> ( ) { } [ ] , . : ;",
		Plus, Minus, Star, Slash, Percent, Equal, NotEqual, Less, LessEqual, Greater, GreaterEqual,
		Assign, InferAssign, Hash, Ampersand, Arrow, LeftParen, RightParen, LeftBrace, RightBrace,
		LeftBracket, RightBracket, Comma, Dot, Colon, Semicolon)
}

func TestTokenizeNumbers(t *testing.T) {
	tokens := assertKinds(t, "3.14 10 7.", Float, Integer, Integer, Dot)
	if tokens[0].Lexeme != "3.14" {
		t.Fatalf("float lexeme = %q", tokens[0].Lexeme)
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens := assertKinds(t, `"a\tb\n\"q\"\\"`, String)
	if want := "a\tb\n\"q\"\\"; tokens[0].Literal != want {
		t.Fatalf("literal = %q, want %q", tokens[0].Literal, want)
	}
	if tokens[0].Lexeme != `"a\tb\n\"q\"\\"` {
		t.Fatalf("lexeme should keep raw text, got %q", tokens[0].Lexeme)
	}
}

func TestTokenizeComments(t *testing.T) {
	assertKinds(t, "a // line comment\n/* block /* nested */ still comment */ b", Identifier, Identifier)
}

func TestTokenPositions(t *testing.T) {
	tokens := assertKinds(t, "local x\n  := 5", Local, Identifier, InferAssign, Integer)
	cases := []Position{
		{Line: 1, Column: 1, Offset: 0},
		{Line: 1, Column: 7, Offset: 6},
		{Line: 2, Column: 3, Offset: 10},
		{Line: 2, Column: 6, Offset: 13},
	}
	for i, want := range cases {
		if tokens[i].Pos != want {
			t.Fatalf("token %d position = %+v, want %+v", i, tokens[i].Pos, want)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		pos  Position
	}{
		{"unterminated string", "x = \"abc", Position{Line: 1, Column: 5, Offset: 4}},
		{"unterminated comment", "/* /* */", Position{Line: 1, Column: 1, Offset: 0}},
		{"illegal bang", "a ! b", Position{Line: 1, Column: 3, Offset: 2}},
		{"illegal character", "\n  @", Position{Line: 2, Column: 3, Offset: 3}},
		{"bad escape", `"\q"`, Position{Line: 1, Column: 2, Offset: 1}},
		{"integer overflow", "99999999999999999999", Position{Line: 1, Column: 1, Offset: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize(tc.src, "bad.lux")
			if err == nil {
				t.Fatalf("expected error for %q", tc.src)
			}
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *LexError, got %T", err)
			}
			if lexErr.Pos != tc.pos {
				t.Fatalf("error position = %+v, want %+v", lexErr.Pos, tc.pos)
			}
			if lexErr.Source != "bad.lux" {
				t.Fatalf("error source = %q", lexErr.Source)
			}
		})
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	tokens := assertKinds(t, "   \n\t")
	if tokens[0].Pos.Line != 2 {
		t.Fatalf("EOF line = %d, want 2", tokens[0].Pos.Line)
	}
}
