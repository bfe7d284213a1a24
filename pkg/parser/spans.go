package parser

import (
	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
)

func startOf(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Pos.Line, Column: tok.Pos.Column}
}

// endOf returns the position just past the token's last character.
func endOf(tok lexer.Token) ast.Position {
	pos := ast.Position{Line: tok.Pos.Line, Column: tok.Pos.Column}
	for _, r := range tok.Lexeme {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}

func spanBetween(start, end lexer.Token) ast.Span {
	return ast.Span{Start: startOf(start), End: endOf(end)}
}

// annotateSpan stamps node with the span from start to the last consumed token.
func (p *Parser) annotateSpan(node ast.Node, start lexer.Token) {
	if node == nil {
		return
	}
	ast.SetSpan(node, spanBetween(start, p.previous()))
}

func annotateStatement[T ast.Statement](p *Parser, stmt T, start lexer.Token) T {
	p.annotateSpan(stmt, start)
	return stmt
}

func annotateExpression[T ast.Expression](p *Parser, expr T, start lexer.Token) T {
	p.annotateSpan(expr, start)
	return expr
}
