package parser

import (
	"strconv"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
)

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Integer:
		p.advance()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid integer literal %s", tok.Lexeme)
		}
		return annotateExpression(p, ast.NewIntegerLiteral(value), tok), nil
	case lexer.Float:
		p.advance()
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid float literal %s", tok.Lexeme)
		}
		return annotateExpression(p, ast.NewFloatLiteral(value), tok), nil
	case lexer.String:
		p.advance()
		return annotateExpression(p, ast.NewStringLiteral(tok.Literal), tok), nil
	case lexer.True, lexer.False:
		p.advance()
		return annotateExpression(p, ast.NewBooleanLiteral(tok.Kind == lexer.True), tok), nil
	case lexer.Nil:
		p.advance()
		return annotateExpression(p, ast.NewNilLiteral(), tok), nil
	case lexer.Identifier, lexer.Setmetatable, lexer.Getmetatable:
		p.advance()
		return annotateExpression(p, ast.NewIdentifier(tok.Lexeme), tok), nil
	case lexer.LeftParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RightParen, "to close parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.LeftBrace:
		return p.parseTableConstructor()
	case lexer.Fn:
		p.advance()
		return p.parseFunctionRest(tok, false)
	case lexer.Async:
		if p.peekAt(1).Kind == lexer.Fn {
			p.advance()
			p.advance()
			return p.parseFunctionRest(tok, true)
		}
	}
	return nil, p.unexpected(tok, "expression")
}

// parseTableConstructor parses `{ v, name = v, [k] = v, }`.
func (p *Parser) parseTableConstructor() (*ast.TableConstructor, error) {
	start := p.advance()
	var fields []*ast.TableField
	for !p.check(lexer.RightBrace) {
		field, err := p.parseTableField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if !p.match(lexer.Comma, lexer.Semicolon) {
			break
		}
	}
	if _, err := p.expect(lexer.RightBrace, "to close table constructor"); err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewTableConstructor(fields), start), nil
}

func (p *Parser) parseTableField() (*ast.TableField, error) {
	start := p.peek()
	var field *ast.TableField
	switch {
	case start.Kind == lexer.Identifier && p.peekAt(1).Kind == lexer.Assign:
		p.advance()
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		field = ast.NewTableField(ast.FieldNamed, start.Lexeme, nil, value)
	case start.Kind == lexer.LeftBracket:
		p.advance()
		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RightBracket, "to close table key"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Assign, "after table key"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		field = ast.NewTableField(ast.FieldKeyed, "", key, value)
	default:
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		field = ast.NewTableField(ast.FieldPositional, "", nil, value)
	}
	p.annotateSpan(field, start)
	return field, nil
}
