package parser

import (
	"fmt"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
)

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == lexer.EOF
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind lexer.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...lexer.Kind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes a token of kind or reports what was found instead.
func (p *Parser) expect(kind lexer.Kind, context string) (lexer.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	err := p.unexpected(p.peek(), kind.String())
	if context != "" {
		err.Message += " " + context
	}
	return lexer.Token{}, err
}

func describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.EOF:
		return "end of input"
	case lexer.Identifier:
		return fmt.Sprintf("identifier '%s'", tok.Lexeme)
	case lexer.Integer, lexer.Float, lexer.String:
		return fmt.Sprintf("%s %s", tok.Kind, tok.Lexeme)
	default:
		return tok.Kind.String()
	}
}

func (p *Parser) unexpected(tok lexer.Token, expected string) *ParseError {
	found := describe(tok)
	return &ParseError{
		Source:   p.source,
		Pos:      tok.Pos,
		Expected: expected,
		Found:    found,
		Message:  fmt.Sprintf("expected %s, found %s", expected, found),
	}
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) *ParseError {
	return &ParseError{
		Source:  p.source,
		Pos:     tok.Pos,
		Found:   describe(tok),
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *Parser) parseIdentifier(context string) (*ast.Identifier, error) {
	tok, err := p.expect(lexer.Identifier, context)
	if err != nil {
		return nil, err
	}
	id := ast.NewIdentifier(tok.Lexeme)
	ast.SetSpan(id, spanBetween(tok, tok))
	return id, nil
}
