package parser

import (
	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Local, lexer.Const:
		return p.parseVariableDeclaration()
	case lexer.Fn:
		if p.peekAt(1).Kind == lexer.Identifier {
			return p.parseFunctionDeclaration()
		}
	case lexer.Async:
		if p.peekAt(1).Kind == lexer.Fn && p.peekAt(2).Kind == lexer.Identifier {
			return p.parseFunctionDeclaration()
		}
	case lexer.If:
		return p.parseIfStatement()
	case lexer.While:
		return p.parseWhileStatement()
	case lexer.For:
		return p.parseForStatement()
	case lexer.Return:
		return p.parseReturnStatement()
	case lexer.Break:
		p.advance()
		return annotateStatement(p, ast.NewBreakStatement(), tok), nil
	case lexer.Continue:
		p.advance()
		return annotateStatement(p, ast.NewContinueStatement(), tok), nil
	case lexer.LeftBrace:
		return p.parseBlock()
	case lexer.Import:
		return nil, p.errorAt(tok, "import statements are not supported")
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	start := p.peek()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return annotateStatement(p, ast.NewExpressionStatement(expr), start), nil
}

// parseBlock parses `{ statements }`. Errors inside the block are recorded
// and recovered from so the enclosing construct still closes.
func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	start, err := p.expect(lexer.LeftBrace, "to open block")
	if err != nil {
		return nil, err
	}
	var statements []ast.Statement
	for !p.check(lexer.RightBrace) {
		if p.atEnd() {
			return nil, p.errorAt(p.peek(), "expected '}' to close block opened at %s, found end of input", start.Pos)
		}
		if p.match(lexer.Semicolon) {
			continue
		}
		if stmt, ok := p.statementWithRecovery(); ok {
			statements = append(statements, stmt)
		}
	}
	p.advance()
	return annotateStatement(p, ast.NewBlockStatement(statements), start), nil
}

func (p *Parser) parseIfStatement() (*ast.IfStatement, error) {
	start := p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Statement
	if p.match(lexer.Else) {
		if p.check(lexer.If) {
			elseBranch, err = p.parseIfStatement()
		} else {
			elseBranch, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return annotateStatement(p, ast.NewIfStatement(cond, then, elseBranch), start), nil
}

func (p *Parser) parseWhileStatement() (*ast.WhileStatement, error) {
	start := p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return annotateStatement(p, ast.NewWhileStatement(cond, body), start), nil
}

// parseForStatement accepts `for (init; cond; step) {}` and the same header
// without parentheses.
func (p *Parser) parseForStatement() (*ast.ForStatement, error) {
	start := p.advance()
	parenthesized := p.match(lexer.LeftParen)

	var (
		init ast.Statement
		cond ast.Expression
		step ast.Expression
		err  error
	)
	switch {
	case p.check(lexer.Semicolon):
	case p.check(lexer.Local) || p.check(lexer.Const):
		init, err = p.parseVariableDeclaration()
	default:
		init, err = p.parseExpressionStatement()
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "after for-loop initializer"); err != nil {
		return nil, err
	}
	if !p.check(lexer.Semicolon) {
		if cond, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.Semicolon, "after for-loop condition"); err != nil {
		return nil, err
	}
	closing := lexer.LeftBrace
	if parenthesized {
		closing = lexer.RightParen
	}
	if !p.check(closing) {
		if step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if parenthesized {
		if _, err := p.expect(lexer.RightParen, "to close for-loop header"); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return annotateStatement(p, ast.NewForStatement(init, cond, step, body), start), nil
}

// startsValue reports whether a return may carry the expression beginning at tok.
func startsValue(kind lexer.Kind) bool {
	switch kind {
	case lexer.RightBrace, lexer.Semicolon, lexer.EOF,
		lexer.Local, lexer.Const, lexer.If, lexer.While, lexer.For,
		lexer.Return, lexer.Break, lexer.Continue, lexer.Else, lexer.Import:
		return false
	default:
		return true
	}
}

func (p *Parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	start := p.advance()
	var value ast.Expression
	if startsValue(p.peek().Kind) {
		var err error
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return annotateStatement(p, ast.NewReturnStatement(value), start), nil
}
