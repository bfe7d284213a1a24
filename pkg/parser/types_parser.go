package parser

import (
	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
)

// parseType reads a type annotation. Annotations are recorded on the tree
// and never checked.
func (p *Parser) parseType() (ast.TypeExpression, error) {
	start := p.peek()
	switch {
	case start.Kind.IsTypeName() || start.Kind == lexer.Identifier:
		p.advance()
		return annotateType(p, ast.NewSimpleType(start.Lexeme), start), nil
	case start.Kind == lexer.Ampersand || start.Kind == lexer.Star:
		p.advance()
		target, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return annotateType(p, ast.NewReferenceType(target), start), nil
	case start.Kind == lexer.Fn:
		p.advance()
		if _, err := p.expect(lexer.LeftParen, "in function type"); err != nil {
			return nil, err
		}
		var params []ast.TypeExpression
		for !p.check(lexer.RightParen) {
			param, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(lexer.Comma) {
				break
			}
		}
		if _, err := p.expect(lexer.RightParen, "to close function type"); err != nil {
			return nil, err
		}
		var ret ast.TypeExpression
		if p.match(lexer.Arrow) {
			var err error
			if ret, err = p.parseType(); err != nil {
				return nil, err
			}
		}
		return annotateType(p, ast.NewFunctionType(params, ret), start), nil
	}
	return nil, p.unexpected(start, "type")
}

func annotateType[T ast.TypeExpression](p *Parser, typ T, start lexer.Token) T {
	p.annotateSpan(typ, start)
	return typ
}

// inferTypeFromSyntax reads the declared type of a `name := expr`
// declaration off the initializer's form. It returns nil when the form does
// not determine a type.
func inferTypeFromSyntax(expr ast.Expression) ast.TypeExpression {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return ast.NewSimpleType("int")
	case *ast.FloatLiteral:
		return ast.NewSimpleType("float")
	case *ast.StringLiteral:
		return ast.NewSimpleType("string")
	case *ast.BooleanLiteral:
		return ast.NewSimpleType("bool")
	case *ast.NilLiteral:
		return ast.NewSimpleType("nil")
	case *ast.TableConstructor:
		return ast.NewSimpleType("table")
	case *ast.FunctionLiteral:
		params := make([]ast.TypeExpression, len(e.Params))
		for i, param := range e.Params {
			if param.Type != nil {
				params[i] = param.Type
			} else {
				params[i] = ast.NewSimpleType("any")
			}
		}
		return ast.NewFunctionType(params, e.ReturnType)
	case *ast.UnaryExpression:
		switch e.Operator {
		case "not":
			return ast.NewSimpleType("bool")
		case "#":
			return ast.NewSimpleType("int")
		case "-":
			return inferTypeFromSyntax(e.Operand)
		case "&":
			if inner := inferTypeFromSyntax(e.Operand); inner != nil {
				return ast.NewReferenceType(inner)
			}
		}
	case *ast.BinaryExpression:
		switch e.Operator {
		case "==", "!=", "<", "<=", ">", ">=":
			return ast.NewSimpleType("bool")
		}
	}
	return nil
}
