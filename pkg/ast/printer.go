package ast

import (
	"strconv"
	"strings"
	"unicode"
)

// Operator precedence, lowest first.
const (
	PrecAssignment = iota + 1
	PrecOr
	PrecAnd
	PrecEquality
	PrecRelational
	PrecAdditive
	PrecMultiplicative
	PrecUnary
	PrecPostfix
	PrecPrimary
)

// BinaryPrecedence returns the binding power of a binary or logical
// operator, or 0 when op is not one.
func BinaryPrecedence(op string) int {
	switch op {
	case "or":
		return PrecOr
	case "and":
		return PrecAnd
	case "==", "!=":
		return PrecEquality
	case "<", "<=", ">", ">=":
		return PrecRelational
	case "+", "-":
		return PrecAdditive
	case "*", "/", "%":
		return PrecMultiplicative
	default:
		return 0
	}
}

// Print renders a node as canonical Lux source. Printing a parsed program and
// parsing the result again yields the same tree.
func Print(node Node) string {
	p := &printer{}
	switch n := node.(type) {
	case *Program:
		p.statements(n.Statements)
	case Statement:
		p.statements([]Statement{n})
	case Expression:
		p.b.WriteString(p.expr(n))
	case TypeExpression:
		p.b.WriteString(typeString(n))
	}
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) line(s string) {
	p.b.WriteString(strings.Repeat("    ", p.indent))
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

func (p *printer) statements(stmts []Statement) {
	for i, stmt := range stmts {
		if ret, ok := stmt.(*ReturnStatement); ok && ret.Value == nil && i < len(stmts)-1 {
			p.line("return;")
			continue
		}
		p.statement(stmt)
	}
}

func (p *printer) block(b *BlockStatement) {
	p.indent++
	if b != nil {
		p.statements(b.Statements)
	}
	p.indent--
}

func (p *printer) statement(stmt Statement) {
	switch s := stmt.(type) {
	case *FunctionDeclaration:
		p.line(functionHeader(s.Function, s.Name.Name) + " {")
		p.block(s.Function.Body)
		p.line("}")
	case *IfStatement:
		p.ifChain(s, "")
	case *WhileStatement:
		p.line("while " + p.expr(s.Condition) + " {")
		p.block(s.Body)
		p.line("}")
	case *ForStatement:
		init := ""
		switch in := s.Init.(type) {
		case nil:
		case *ExpressionStatement:
			init = p.expr(in.Expression)
		default:
			init = p.inline(in)
		}
		cond, step := "", ""
		if s.Condition != nil {
			cond = " " + p.expr(s.Condition)
		}
		if s.Step != nil {
			step = " " + p.expr(s.Step)
		}
		p.line("for (" + init + ";" + cond + ";" + step + ") {")
		p.block(s.Body)
		p.line("}")
	case *BlockStatement:
		p.line("{")
		p.block(s)
		p.line("}")
	default:
		p.line(p.inline(stmt))
	}
}

func (p *printer) ifChain(s *IfStatement, prefix string) {
	p.line(prefix + "if " + p.expr(s.Condition) + " {")
	p.block(s.Then)
	switch e := s.Else.(type) {
	case nil:
		p.line("}")
	case *IfStatement:
		p.ifChain(e, "} else ")
	case *BlockStatement:
		p.line("} else {")
		p.block(e)
		p.line("}")
	default:
		p.line("} else {")
		p.indent++
		p.statement(e)
		p.indent--
		p.line("}")
	}
}

// inline renders single-line statements.
func (p *printer) inline(stmt Statement) string {
	switch s := stmt.(type) {
	case *VariableDeclaration:
		var sb strings.Builder
		if s.IsConst {
			sb.WriteString("const ")
		} else {
			sb.WriteString("local ")
		}
		sb.WriteString(s.Name.Name)
		switch {
		case s.Inferred:
			sb.WriteString(" := ")
			sb.WriteString(p.expr(s.Value))
			return sb.String()
		case s.Type != nil:
			sb.WriteString(": ")
			sb.WriteString(typeString(s.Type))
		}
		if s.Value != nil {
			sb.WriteString(" = ")
			sb.WriteString(p.expr(s.Value))
		}
		return sb.String()
	case *ReturnStatement:
		if s.Value == nil {
			return "return"
		}
		return "return " + p.expr(s.Value)
	case *BreakStatement:
		return "break"
	case *ContinueStatement:
		return "continue"
	case *ExpressionStatement:
		text := p.expr(s.Expression)
		// A leading '(' or '-' would otherwise attach to the previous statement.
		if strings.HasPrefix(text, "(") || strings.HasPrefix(text, "-") {
			return ";" + text
		}
		return text
	default:
		return "/* unsupported " + string(stmt.NodeType()) + " */"
	}
}

func precedenceOf(expr Expression) int {
	switch e := expr.(type) {
	case *AssignmentExpression:
		return PrecAssignment
	case *BinaryExpression:
		return BinaryPrecedence(e.Operator)
	case *LogicalExpression:
		return BinaryPrecedence(e.Operator)
	case *UnaryExpression, *SpawnExpression, *AwaitExpression:
		return PrecUnary
	case *CallExpression, *IndexExpression:
		return PrecPostfix
	default:
		return PrecPrimary
	}
}

func (p *printer) wrap(expr Expression, min int) string {
	text := p.expr(expr)
	if precedenceOf(expr) < min {
		return "(" + text + ")"
	}
	return text
}

func (p *printer) expr(expr Expression) string {
	switch e := expr.(type) {
	case nil:
		return "nil"
	case *Identifier:
		return e.Name
	case *IntegerLiteral:
		return strconv.FormatInt(e.Value, 10)
	case *FloatLiteral:
		return FormatFloatLiteral(e.Value)
	case *StringLiteral:
		return QuoteString(e.Value)
	case *BooleanLiteral:
		if e.Value {
			return "true"
		}
		return "false"
	case *NilLiteral:
		return "nil"
	case *BinaryExpression:
		prec := BinaryPrecedence(e.Operator)
		return p.wrap(e.Left, prec) + " " + e.Operator + " " + p.wrap(e.Right, prec+1)
	case *LogicalExpression:
		prec := BinaryPrecedence(e.Operator)
		return p.wrap(e.Left, prec) + " " + e.Operator + " " + p.wrap(e.Right, prec+1)
	case *UnaryExpression:
		operand := p.wrap(e.Operand, PrecUnary)
		if e.Operator == "not" {
			return "not " + operand
		}
		return e.Operator + operand
	case *AssignmentExpression:
		return p.wrap(e.Target, PrecPostfix) + " = " + p.wrap(e.Value, PrecAssignment)
	case *CallExpression:
		args := make([]string, len(e.Arguments))
		for i, arg := range e.Arguments {
			args[i] = p.wrap(arg, PrecAssignment)
		}
		return p.wrap(e.Callee, PrecPostfix) + "(" + strings.Join(args, ", ") + ")"
	case *IndexExpression:
		object := p.wrap(e.Object, PrecPostfix)
		if lit, ok := e.Index.(*StringLiteral); ok && e.Dotted && IsIdentifierName(lit.Value) {
			return object + "." + lit.Value
		}
		return object + "[" + p.expr(e.Index) + "]"
	case *TableConstructor:
		if len(e.Fields) == 0 {
			return "{}"
		}
		parts := make([]string, len(e.Fields))
		for i, field := range e.Fields {
			switch field.Kind {
			case FieldNamed:
				parts[i] = field.Name + " = " + p.expr(field.Value)
			case FieldKeyed:
				parts[i] = "[" + p.expr(field.Key) + "] = " + p.expr(field.Value)
			default:
				parts[i] = p.wrap(field.Value, PrecOr)
			}
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *FunctionLiteral:
		return p.functionLiteral(e)
	case *SpawnExpression:
		return "spawn " + p.expr(e.Call)
	case *AwaitExpression:
		return "await " + p.wrap(e.Operand, PrecUnary)
	default:
		return "/* unsupported " + string(expr.NodeType()) + " */"
	}
}

func (p *printer) functionLiteral(fn *FunctionLiteral) string {
	if fn.Body == nil || len(fn.Body.Statements) == 0 {
		return functionHeader(fn, "") + " {}"
	}
	inner := &printer{indent: p.indent + 1}
	inner.statements(fn.Body.Statements)
	return functionHeader(fn, "") + " {\n" + inner.b.String() + strings.Repeat("    ", p.indent) + "}"
}

func functionHeader(fn *FunctionLiteral, name string) string {
	var sb strings.Builder
	if fn.IsAsync {
		sb.WriteString("async ")
	}
	sb.WriteString("fn")
	if name != "" {
		sb.WriteString(" ")
		sb.WriteString(name)
	}
	sb.WriteString("(")
	for i, param := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(param.Name.Name)
		if param.Type != nil {
			sb.WriteString(": ")
			sb.WriteString(typeString(param.Type))
		}
	}
	sb.WriteString(")")
	if fn.ReturnType != nil {
		sb.WriteString(" -> ")
		sb.WriteString(typeString(fn.ReturnType))
	}
	return sb.String()
}

func typeString(t TypeExpression) string {
	switch tt := t.(type) {
	case *SimpleType:
		return tt.Name
	case *ReferenceType:
		return "&" + typeString(tt.Target)
	case *FunctionType:
		params := make([]string, len(tt.Params))
		for i, param := range tt.Params {
			params[i] = typeString(param)
		}
		out := "fn(" + strings.Join(params, ", ") + ")"
		if tt.Return != nil {
			out += " -> " + typeString(tt.Return)
		}
		return out
	default:
		return "?"
	}
}

// FormatFloatLiteral renders f so the lexer reads it back as a float.
func FormatFloatLiteral(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// QuoteString renders s as a Lux string literal.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

var reservedWords = map[string]struct{}{
	"local": {}, "const": {}, "fn": {}, "async": {}, "await": {}, "spawn": {},
	"if": {}, "else": {}, "while": {}, "for": {}, "break": {}, "continue": {},
	"return": {}, "true": {}, "false": {}, "nil": {}, "and": {}, "or": {},
	"not": {}, "int": {}, "float": {}, "string": {}, "bool": {}, "table": {},
	"setmetatable": {}, "getmetatable": {}, "import": {},
}

// IsIdentifierName reports whether s can be written as a bare name.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	if _, reserved := reservedWords[s]; reserved {
		return false
	}
	for i, r := range s {
		letter := r == '_' || unicode.IsLetter(r)
		digit := unicode.IsDigit(r)
		if !letter && !(digit && i > 0) {
			return false
		}
	}
	return true
}
