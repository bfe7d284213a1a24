package parser

import (
	"fmt"
	"strings"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
)

// ParseError describes one syntax error. Expected and Found are filled for
// unexpected-token errors; Message is always set.
type ParseError struct {
	Source   string
	Pos      lexer.Position
	Expected string
	Found    string
	Message  string
}

func (e *ParseError) Error() string {
	name := e.Source
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: ParseError: %s", name, e.Pos.Line, e.Pos.Column, e.Message)
}

// ErrorList collects every ParseError reported in one pass.
type ErrorList []*ParseError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no parse errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d parse errors:", len(l))
	for _, err := range l {
		b.WriteString("\n")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (l ErrorList) Unwrap() []error {
	out := make([]error, len(l))
	for i, err := range l {
		out[i] = err
	}
	return out
}

// Parser is a recursive-descent parser over a token slice.
type Parser struct {
	tokens []lexer.Token
	pos    int
	source string
	errors ErrorList
}

// New returns a parser over tokens. source names the file in errors.
func New(tokens []lexer.Token, source string) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != lexer.EOF {
		var pos lexer.Position
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens[:len(tokens):len(tokens)], lexer.Token{Kind: lexer.EOF, Pos: pos})
	}
	return &Parser{tokens: tokens, source: source}
}

// Parse builds a Program from tokens. When err is non-nil it is an ErrorList
// and the returned program holds whatever statements parsed cleanly.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	return New(tokens, "").ParseProgram()
}

// ParseSource tokenizes and parses source in one step. Lex errors are
// returned as *lexer.LexError.
func ParseSource(source, name string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source, name)
	if err != nil {
		return nil, err
	}
	return New(tokens, name).ParseProgram()
}

// ParseProgram consumes every token.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	start := p.peek()
	var statements []ast.Statement
	for !p.atEnd() {
		if p.match(lexer.Semicolon) {
			continue
		}
		if p.check(lexer.RightBrace) {
			p.record(p.unexpected(p.advance(), "statement"))
			continue
		}
		stmt, ok := p.statementWithRecovery()
		if ok {
			statements = append(statements, stmt)
		}
	}
	program := ast.NewProgram(statements)
	ast.SetSpan(program, spanBetween(start, p.previous()))
	if len(p.errors) > 0 {
		return program, p.errors
	}
	return program, nil
}

// statementWithRecovery parses one statement; on failure it records the
// error and skips to the next statement boundary.
func (p *Parser) statementWithRecovery() (ast.Statement, bool) {
	startPos := p.pos
	stmt, err := p.parseStatement()
	if err != nil {
		p.record(err)
		p.synchronize(startPos)
		return nil, false
	}
	return stmt, true
}

func (p *Parser) record(err error) {
	if perr, ok := err.(*ParseError); ok {
		p.errors = append(p.errors, perr)
		return
	}
	p.errors = append(p.errors, &ParseError{Source: p.source, Pos: p.peek().Pos, Message: err.Error()})
}

// synchronize discards tokens until a statement boundary: after ';', or
// before '}' or a keyword that starts a statement.
func (p *Parser) synchronize(startPos int) {
	if p.pos == startPos && !p.atEnd() {
		p.advance()
	}
	for !p.atEnd() {
		switch p.peek().Kind {
		case lexer.Semicolon:
			p.advance()
			return
		case lexer.RightBrace, lexer.Local, lexer.Const, lexer.Fn, lexer.Async,
			lexer.If, lexer.While, lexer.For, lexer.Return, lexer.Break, lexer.Continue, lexer.Import:
			return
		}
		p.advance()
	}
}
