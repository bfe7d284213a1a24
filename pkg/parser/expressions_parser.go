package parser

import (
	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
)

var binaryOperators = map[lexer.Kind]string{
	lexer.Or:           "or",
	lexer.And:          "and",
	lexer.Equal:        "==",
	lexer.NotEqual:     "!=",
	lexer.Less:         "<",
	lexer.LessEqual:    "<=",
	lexer.Greater:      ">",
	lexer.GreaterEqual: ">=",
	lexer.Plus:         "+",
	lexer.Minus:        "-",
	lexer.Star:         "*",
	lexer.Slash:        "/",
	lexer.Percent:      "%",
}

var unaryOperators = map[lexer.Kind]string{
	lexer.Not:       "not",
	lexer.Minus:     "-",
	lexer.Hash:      "#",
	lexer.Ampersand: "&",
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

// parseAssignment is right-associative: a = b = c assigns c to both.
func (p *Parser) parseAssignment() (ast.Expression, error) {
	start := p.peek()
	left, err := p.parseBinary(ast.PrecOr)
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.Assign) {
		return left, nil
	}
	eq := p.advance()
	target, ok := left.(ast.AssignmentTarget)
	if !ok {
		return nil, p.errorAt(eq, "invalid assignment target %s", left.NodeType())
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewAssignmentExpression(target, value), start), nil
}

// parseBinary climbs precedence levels from minPrec upward. Every binary
// level is left-associative.
func (p *Parser) parseBinary(minPrec int) (ast.Expression, error) {
	start := p.peek()
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryOperators[p.peek().Kind]
		if !ok {
			return left, nil
		}
		prec := ast.BinaryPrecedence(op)
		if prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		if op == "and" || op == "or" {
			left = annotateExpression(p, ast.NewLogicalExpression(op, left, right), start)
		} else {
			left = annotateExpression(p, ast.NewBinaryExpression(op, left, right), start)
		}
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	start := p.peek()
	if op, ok := unaryOperators[start.Kind]; ok {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return annotateExpression(p, ast.NewUnaryExpression(op, operand), start), nil
	}
	switch start.Kind {
	case lexer.Spawn:
		p.advance()
		operandTok := p.peek()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		call, ok := operand.(*ast.CallExpression)
		if !ok {
			perr := p.unexpected(operandTok, "call expression")
			perr.Message = "spawn expects a call expression, found " + string(operand.NodeType())
			return nil, perr
		}
		return annotateExpression(p, ast.NewSpawnExpression(call), start), nil
	case lexer.Await:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return annotateExpression(p, ast.NewAwaitExpression(operand), start), nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary followed by any run of calls, `.name` and
// `[index]` suffixes.
func (p *Parser) parsePostfix() (ast.Expression, error) {
	start := p.peek()
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(lexer.LeftParen):
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = annotateExpression(p, ast.NewCallExpression(expr, args), start)
		case p.match(lexer.Dot):
			nameTok, err := p.expect(lexer.Identifier, "after '.'")
			if err != nil {
				return nil, err
			}
			key := ast.NewStringLiteral(nameTok.Lexeme)
			ast.SetSpan(key, spanBetween(nameTok, nameTok))
			expr = annotateExpression(p, ast.NewIndexExpression(expr, key, true), start)
		case p.match(lexer.LeftBracket):
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RightBracket, "to close index"); err != nil {
				return nil, err
			}
			expr = annotateExpression(p, ast.NewIndexExpression(expr, index, false), start)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArguments() ([]ast.Expression, error) {
	var args []ast.Expression
	for !p.check(lexer.RightParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(lexer.Comma) {
			break
		}
	}
	if _, err := p.expect(lexer.RightParen, "to close argument list"); err != nil {
		return nil, err
	}
	return args, nil
}
