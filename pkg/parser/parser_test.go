package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := ParseSource(src, "test.lux")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return program
}

func assertProgram(t *testing.T, src string, want *ast.Program) {
	t.Helper()
	got := mustParse(t, src)
	if !ast.Equal(got, want) {
		t.Fatalf("parse %q:\n got: %s\nwant: %s", src, ast.Print(got), ast.Print(want))
	}
}

func TestParseVariableDeclarations(t *testing.T) {
	assertProgram(t, `local x: int = 42 local y := 3.5 const name = "lux" local z: table`,
		ast.Prog(
			ast.LocalTyped("x", ast.Ty("int"), ast.Int(42)),
			ast.NewVariableDeclaration(ast.ID("y"), ast.Ty("float"), ast.Flt(3.5), false, true),
			ast.Const("name", ast.Str("lux")),
			ast.LocalTyped("z", ast.Ty("table"), nil),
		))
}

func TestParseInferredTypeFromSyntax(t *testing.T) {
	program := mustParse(t, `local f := fn(a: int, b) -> string { return "" } local t := {} local n := -4`)
	cases := []string{"fn(int, any) -> string", "table", "int"}
	for i, want := range cases {
		decl := program.Statements[i].(*ast.VariableDeclaration)
		if !decl.Inferred {
			t.Fatalf("declaration %d not marked inferred", i)
		}
		if got := ast.Print(decl.Type); got != want {
			t.Fatalf("declaration %d inferred type = %q, want %q", i, got, want)
		}
	}
	decl := mustParse(t, `local v := compute()`).Statements[0].(*ast.VariableDeclaration)
	if decl.Type != nil {
		t.Fatalf("call initializer should not determine a type, got %s", ast.Print(decl.Type))
	}
}

func TestParsePrecedence(t *testing.T) {
	assertProgram(t, "a = b = 1 + 2 * 3 - -4 % 2 < 5 == true or not c and #t > 0",
		ast.Prog(ast.Expr(ast.Assign(ast.ID("a"), ast.Assign(ast.ID("b"),
			ast.Or(
				ast.Bin("==",
					ast.Bin("<",
						ast.Bin("-",
							ast.Bin("+", ast.Int(1), ast.Bin("*", ast.Int(2), ast.Int(3))),
							ast.Bin("%", ast.Un("-", ast.Int(4)), ast.Int(2))),
						ast.Int(5)),
					ast.Bool(true)),
				ast.And(ast.Un("not", ast.ID("c")), ast.Bin(">", ast.Un("#", ast.ID("t")), ast.Int(0))),
			))))))
}

func TestParseLeftAssociativity(t *testing.T) {
	assertProgram(t, "a - b - c", ast.Prog(ast.Expr(
		ast.Bin("-", ast.Bin("-", ast.ID("a"), ast.ID("b")), ast.ID("c")))))
	assertProgram(t, "a / (b / c)", ast.Prog(ast.Expr(
		ast.Bin("/", ast.ID("a"), ast.Bin("/", ast.ID("b"), ast.ID("c"))))))
}

func TestParsePostfixChains(t *testing.T) {
	assertProgram(t, `obj.items[1].name("x")(2)`, ast.Prog(ast.Expr(
		ast.Call(
			ast.Call(ast.Member(ast.Index(ast.Member(ast.ID("obj"), "items"), ast.Int(1)), "name"), ast.Str("x")),
			ast.Int(2)))))
}

func TestParseFunctionDeclaration(t *testing.T) {
	program := mustParse(t, "async fn fetch(url: string, retries) -> table { return {} }")
	decl, ok := program.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected function declaration, got %T", program.Statements[0])
	}
	fn := decl.Function
	if decl.Name.Name != "fetch" || !fn.IsAsync || len(fn.Params) != 2 {
		t.Fatalf("unexpected declaration %s", ast.Print(decl))
	}
	if fn.Params[1].Type != nil {
		t.Fatalf("untyped parameter should carry no type")
	}
	if got := ast.Print(fn.ReturnType); got != "table" {
		t.Fatalf("return type = %q", got)
	}
}

func TestParseControlFlow(t *testing.T) {
	assertProgram(t, `
		if x < 1 { a() } else if x < 2 { b() } else { c() }
		while true { break continue }
		for (local i := 0; i < 10; i = i + 1) { print(i) }
		for local j = 0; j < 2; j = j + 1 { }
		for (;;) { return }
	`, ast.Prog(
		ast.If(ast.Bin("<", ast.ID("x"), ast.Int(1)), ast.Block(ast.Expr(ast.CallName("a"))),
			ast.If(ast.Bin("<", ast.ID("x"), ast.Int(2)), ast.Block(ast.Expr(ast.CallName("b"))),
				ast.Block(ast.Expr(ast.CallName("c"))))),
		ast.While(ast.Bool(true), ast.Brk(), ast.Cont()),
		ast.For(ast.NewVariableDeclaration(ast.ID("i"), ast.Ty("int"), ast.Int(0), false, true),
			ast.Bin("<", ast.ID("i"), ast.Int(10)),
			ast.Assign(ast.ID("i"), ast.Bin("+", ast.ID("i"), ast.Int(1))),
			ast.Expr(ast.CallName("print", ast.ID("i")))),
		ast.For(ast.Local("j", ast.Int(0)),
			ast.Bin("<", ast.ID("j"), ast.Int(2)),
			ast.Assign(ast.ID("j"), ast.Bin("+", ast.ID("j"), ast.Int(1)))),
		ast.For(nil, nil, nil, ast.Ret(nil)),
	))
}

func TestParseReturnWithoutValue(t *testing.T) {
	assertProgram(t, "fn f() { return } fn g() { return; local x = 1 }", ast.Prog(
		ast.FnDecl("f", nil, ast.Ret(nil)),
		ast.FnDecl("g", nil, ast.Ret(nil), ast.Local("x", ast.Int(1))),
	))
}

func TestParseTableConstructor(t *testing.T) {
	assertProgram(t, `local t := {1, "two", x = 3, [4] = fn(self) { return self }, }`,
		ast.Prog(ast.NewVariableDeclaration(ast.ID("t"), ast.Ty("table"), ast.Table(
			ast.Pos(ast.Int(1)),
			ast.Pos(ast.Str("two")),
			ast.Field("x", ast.Int(3)),
			ast.Keyed(ast.Int(4), ast.Lambda(ast.Params("self"), ast.Ret(ast.ID("self")))),
		), false, true)))
}

func TestParseSpawnAwaitAndReference(t *testing.T) {
	assertProgram(t, "local r := await spawn two_sum(&{2, 7}, 9)",
		ast.Prog(ast.NewVariableDeclaration(ast.ID("r"), nil,
			ast.Await(ast.Spawn(ast.CallName("two_sum", ast.Un("&", ast.Arr(ast.Int(2), ast.Int(7))), ast.Int(9)))),
			false, true)))
}

func TestParseMetatableKeywordsAsNames(t *testing.T) {
	assertProgram(t, "setmetatable(a, mt) getmetatable(a)", ast.Prog(
		ast.Expr(ast.CallName("setmetatable", ast.ID("a"), ast.ID("mt"))),
		ast.Expr(ast.CallName("getmetatable", ast.ID("a"))),
	))
}

func TestParseSpans(t *testing.T) {
	program := mustParse(t, "local x := 1\nprint(x + 2)")
	call := program.Statements[1].(*ast.ExpressionStatement).Expression.(*ast.CallExpression)
	want := ast.Span{Start: ast.Position{Line: 2, Column: 1}, End: ast.Position{Line: 2, Column: 13}}
	if call.Span() != want {
		t.Fatalf("call span = %+v, want %+v", call.Span(), want)
	}
	sum := call.Arguments[0]
	if got := sum.Span().Start; got != (ast.Position{Line: 2, Column: 7}) {
		t.Fatalf("argument start = %+v", got)
	}
}

func TestParseErrorsAreCollected(t *testing.T) {
	src := "local = 1\nlocal ok := 2\nprint(ok\nfn f( { }\nlocal after := 3"
	program, err := ParseSource(src, "bad.lux")
	if err == nil {
		t.Fatalf("expected parse errors")
	}
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList, got %T", err)
	}
	if len(list) < 3 {
		t.Fatalf("expected at least 3 errors, got %d: %v", len(list), err)
	}
	first := list[0]
	if first.Expected != "identifier" || first.Found != "'='" {
		t.Fatalf("first error expected/found = %q/%q", first.Expected, first.Found)
	}
	if first.Pos.Line != 1 || first.Pos.Column != 7 {
		t.Fatalf("first error position = %+v", first.Pos)
	}
	if !strings.HasPrefix(first.Error(), "bad.lux:1:7: ParseError:") {
		t.Fatalf("unexpected message %q", first.Error())
	}
	var names []string
	for _, stmt := range program.Statements {
		if decl, ok := stmt.(*ast.VariableDeclaration); ok {
			names = append(names, decl.Name.Name)
		}
	}
	if strings.Join(names, ",") != "ok,after" {
		t.Fatalf("recovered declarations = %v", names)
	}
}

func TestParseErrorCases(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		message string
	}{
		{"spawn needs call", "spawn x", "spawn expects a call expression"},
		{"bad assignment target", "f() = 1", "invalid assignment target"},
		{"const without value", "const c", "requires an initializer"},
		{"missing brace", "while true { x", "expected '}'"},
		{"stray brace", "}", "expected statement"},
		{"import", `import "m"`, "import statements are not supported"},
		{"infer after type", "local x: int := 1", "':=' cannot follow"},
		{"duplicate param", "fn f(a, a) {}", "duplicate parameter"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSource(tc.src, "case.lux")
			if err == nil {
				t.Fatalf("expected error for %q", tc.src)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.message)
			}
		})
	}
}

func TestParseSourceReturnsLexError(t *testing.T) {
	_, err := ParseSource(`"open`, "lex.lux")
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.LexError, got %T (%v)", err, err)
	}
}

func TestParseTokensWithoutEOF(t *testing.T) {
	tokens := []lexer.Token{{Kind: lexer.Identifier, Lexeme: "x", Pos: lexer.Position{Line: 1, Column: 1}}}
	program, err := Parse(tokens)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(program.Statements))
	}
}
