package parser

import (
	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
)

// parseVariableDeclaration handles
//
//	local name: Type = expr
//	local name := expr
//	local name = expr
//	local name[: Type]
//
// and the same forms with const, which require an initializer.
func (p *Parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	start := p.advance()
	isConst := start.Kind == lexer.Const
	name, err := p.parseIdentifier("in declaration")
	if err != nil {
		return nil, err
	}

	var (
		typ      ast.TypeExpression
		value    ast.Expression
		inferred bool
	)
	switch {
	case p.match(lexer.InferAssign):
		inferred = true
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
		typ = inferTypeFromSyntax(value)
	case p.match(lexer.Colon):
		if typ, err = p.parseType(); err != nil {
			return nil, err
		}
		if p.check(lexer.InferAssign) {
			return nil, p.errorAt(p.peek(), "':=' cannot follow a type annotation; use '='")
		}
		if p.match(lexer.Assign) {
			if value, err = p.parseExpression(); err != nil {
				return nil, err
			}
		}
	case p.match(lexer.Assign):
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if isConst && value == nil {
		return nil, p.errorAt(p.peek(), "const declaration of '%s' requires an initializer", name.Name)
	}
	decl := ast.NewVariableDeclaration(name, typ, value, isConst, inferred)
	return annotateStatement(p, decl, start), nil
}

func (p *Parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, error) {
	start := p.peek()
	isAsync := p.match(lexer.Async)
	if _, err := p.expect(lexer.Fn, ""); err != nil {
		return nil, err
	}
	name, err := p.parseIdentifier("after 'fn'")
	if err != nil {
		return nil, err
	}
	fn, err := p.parseFunctionRest(start, isAsync)
	if err != nil {
		return nil, err
	}
	return annotateStatement(p, ast.NewFunctionDeclaration(name, fn), start), nil
}

// parseFunctionRest parses `(params) [-> Type] { body }` after the name
// (declarations) or the 'fn' keyword (literals).
func (p *Parser) parseFunctionRest(start lexer.Token, isAsync bool) (*ast.FunctionLiteral, error) {
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	var ret ast.TypeExpression
	if p.match(lexer.Arrow) {
		if ret, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewFunctionLiteral(params, ret, body, isAsync), start), nil
}

func (p *Parser) parseParameters() ([]*ast.Parameter, error) {
	if _, err := p.expect(lexer.LeftParen, "to open parameter list"); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	seen := make(map[string]struct{})
	for !p.check(lexer.RightParen) {
		start := p.peek()
		name, err := p.parseIdentifier("in parameter list")
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name.Name]; dup {
			return nil, p.errorAt(start, "duplicate parameter '%s'", name.Name)
		}
		seen[name.Name] = struct{}{}
		var typ ast.TypeExpression
		if p.match(lexer.Colon) {
			if typ, err = p.parseType(); err != nil {
				return nil, err
			}
		}
		params = append(params, annotateParameter(p, ast.NewParameter(name, typ), start))
		if !p.match(lexer.Comma) {
			break
		}
	}
	if _, err := p.expect(lexer.RightParen, "to close parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

func annotateParameter(p *Parser, param *ast.Parameter, start lexer.Token) *ast.Parameter {
	p.annotateSpan(param, start)
	return param
}
