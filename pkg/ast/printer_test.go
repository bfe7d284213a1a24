package ast

import "testing"

func TestPrintExpressions(t *testing.T) {
	cases := []struct {
		name string
		node Node
		want string
	}{
		{"literals", Arr(Int(1), Flt(2), Str("a\"b\n"), Bool(true), Nil()), `{1, 2.0, "a\"b\n", true, nil}`},
		{"left assoc", Bin("-", Bin("-", ID("a"), ID("b")), ID("c")), "a - b - c"},
		{"right grouping", Bin("-", ID("a"), Bin("-", ID("b"), ID("c"))), "a - (b - c)"},
		{"precedence", Bin("*", Bin("+", ID("a"), ID("b")), ID("c")), "(a + b) * c"},
		{"logical", Or(And(ID("a"), ID("b")), Un("not", ID("c"))), "a and b or not c"},
		{"unary", Un("-", Un("#", ID("t"))), "-#t"},
		{"member and index", Index(Member(ID("t"), "x"), Int(1)), "t.x[1]"},
		{"keyword member", Member(ID("t"), "while"), `t["while"]`},
		{"call", Call(Member(ID("obj"), "f"), Int(1), Str("s")), `obj.f(1, "s")`},
		{"assignment", Assign(ID("a"), Assign(ID("b"), Int(1))), "a = b = 1"},
		{"table fields", Table(Pos(Int(1)), Field("x", Int(2)), Keyed(Str("k"), Int(3))), `{1, x = 2, ["k"] = 3}`},
		{"positional assignment", Table(Pos(Assign(ID("x"), Int(1)))), "{(x = 1)}"},
		{"spawn await", Await(Spawn(CallName("work", Int(10)))), "await spawn work(10)"},
		{"reference", Un("&", Arr(Int(2), Int(7))), "&{2, 7}"},
		{"empty function", Lambda(Params("a", "b")), "fn(a, b) {}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Print(tc.node); got != tc.want {
				t.Fatalf("Print = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPrintStatements(t *testing.T) {
	program := Prog(
		LocalTyped("n", Ty("int"), Int(3)),
		LocalInfer("t", Arr()),
		Const("name", Str("lux")),
		NewFunctionDeclaration(ID("add"), NewFunctionLiteral(
			[]*Parameter{Param("a", Ty("int")), Param("b", nil)},
			Ty("int"),
			Block(Ret(Bin("+", ID("a"), ID("b")))),
			false,
		)),
		If(Bin("<", ID("n"), Int(2)), Block(Expr(CallName("print", ID("n")))),
			If(Bool(false), Block(Brk()), Block(Cont()))),
		For(LocalInfer("i", Int(0)), Bin("<", ID("i"), Int(3)), Assign(ID("i"), Bin("+", ID("i"), Int(1))),
			Expr(CallName("print", ID("i")))),
		While(Bool(true), Ret(nil), Expr(Un("-", ID("x")))),
	)
	want := `local n: int = 3
local t := {}
const name = "lux"
fn add(a: int, b) -> int {
    return a + b
}
if n < 2 {
    print(n)
} else if false {
    break
} else {
    continue
}
for (local i := 0; i < 3; i = i + 1) {
    print(i)
}
while true {
    return;
    ;-x
}
`
	if got := Print(program); got != want {
		t.Fatalf("Print mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintNestedFunctionLiteral(t *testing.T) {
	node := Local("obj", Table(Field("get", Lambda(Params("self"), Ret(Member(ID("self"), "v"))))))
	want := "local obj = {get = fn(self) {\n    return self.v\n}}\n"
	if got := Print(node); got != want {
		t.Fatalf("Print = %q, want %q", got, want)
	}
}

func TestEqualIgnoresSpans(t *testing.T) {
	a := Bin("+", ID("x"), Int(1))
	b := Bin("+", ID("x"), Int(1))
	SetSpan(a, Span{Start: Position{Line: 1, Column: 1}, End: Position{Line: 1, Column: 6}})
	if !Equal(a, b) {
		t.Fatalf("expected trees to be equal regardless of spans")
	}
	if Equal(a, Bin("+", ID("x"), Int(2))) {
		t.Fatalf("expected different literals to compare unequal")
	}
	if Equal(Block(), Block(Brk())) {
		t.Fatalf("expected different statement lists to compare unequal")
	}
	if !Equal(Block(), NewBlockStatement([]Statement{})) {
		t.Fatalf("expected nil and empty statement lists to compare equal")
	}
}
