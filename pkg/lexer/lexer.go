package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LexError reports a fatal tokenization failure.
type LexError struct {
	Source  string
	Pos     Position
	Message string
}

func (e *LexError) Error() string {
	name := e.Source
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: LexError: %s", name, e.Pos.Line, e.Pos.Column, e.Message)
}

// Lexer converts Lux source text into tokens.
type Lexer struct {
	src    string
	name   string
	offset int
	line   int
	column int
}

// New returns a lexer over source; name labels diagnostics.
func New(source, name string) *Lexer {
	return &Lexer{src: source, name: name, line: 1, column: 1}
}

// Tokenize scans the whole source. The returned slice always ends with an
// EOF token when err is nil.
func Tokenize(source, name string) ([]Token, error) {
	return New(source, name).Tokenize()
}

// Tokenize scans all remaining input.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

// Next returns the next token, skipping whitespace and comments.
func (l *Lexer) Next() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}
	start := l.position()
	if l.offset >= len(l.src) {
		return Token{Kind: EOF, Pos: start}, nil
	}

	r, _ := l.peekRune()
	switch {
	case isIdentStart(r):
		return l.scanWord(start), nil
	case r >= '0' && r <= '9':
		return l.scanNumber(start)
	case r == '"':
		return l.scanString(start)
	}
	return l.scanOperator(start)
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.offset}
}

func (l *Lexer) errorf(pos Position, format string, args ...any) *LexError {
	return &LexError{Source: l.name, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (l *Lexer) peekRune() (rune, int) {
	if l.offset >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.offset:])
}

func (l *Lexer) peekByteAt(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.offset+n]
}

func (l *Lexer) advance() rune {
	r, size := l.peekRune()
	if size == 0 {
		return 0
	}
	l.offset += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) skipTrivia() error {
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekByteAt(1) == '/':
			for l.offset < len(l.src) && l.src[l.offset] != '\n' {
				l.advance()
			}
		case c == '/' && l.peekByteAt(1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// skipBlockComment consumes a /* */ comment, honouring nesting.
func (l *Lexer) skipBlockComment() error {
	start := l.position()
	l.advance()
	l.advance()
	depth := 1
	for depth > 0 {
		if l.offset >= len(l.src) {
			return l.errorf(start, "unterminated block comment")
		}
		switch {
		case l.src[l.offset] == '/' && l.peekByteAt(1) == '*':
			l.advance()
			l.advance()
			depth++
		case l.src[l.offset] == '*' && l.peekByteAt(1) == '/':
			l.advance()
			l.advance()
			depth--
		default:
			l.advance()
		}
	}
	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) scanWord(start Position) Token {
	for l.offset < len(l.src) {
		r, _ := l.peekRune()
		if !isIdentPart(r) {
			break
		}
		l.advance()
	}
	word := l.src[start.Offset:l.offset]
	return Token{Kind: LookupIdentifier(word), Lexeme: word, Pos: start}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *Lexer) scanNumber(start Position) (Token, error) {
	for l.offset < len(l.src) && isDigit(l.src[l.offset]) {
		l.advance()
	}
	kind := Integer
	if l.peekByteAt(0) == '.' && isDigit(l.peekByteAt(1)) {
		kind = Float
		l.advance()
		for l.offset < len(l.src) && isDigit(l.src[l.offset]) {
			l.advance()
		}
	}
	lexeme := l.src[start.Offset:l.offset]
	if kind == Integer {
		if _, err := strconv.ParseInt(lexeme, 10, 64); err != nil {
			return Token{}, l.errorf(start, "integer literal %s out of range", lexeme)
		}
	} else if _, err := strconv.ParseFloat(lexeme, 64); err != nil {
		return Token{}, l.errorf(start, "invalid float literal %s", lexeme)
	}
	return Token{Kind: kind, Lexeme: lexeme, Pos: start}, nil
}

func (l *Lexer) scanString(start Position) (Token, error) {
	l.advance()
	var b strings.Builder
	for {
		if l.offset >= len(l.src) {
			return Token{}, l.errorf(start, "unterminated string literal")
		}
		escPos := l.position()
		r := l.advance()
		switch r {
		case '"':
			return Token{
				Kind:    String,
				Lexeme:  l.src[start.Offset:l.offset],
				Literal: b.String(),
				Pos:     start,
			}, nil
		case '\\':
			if l.offset >= len(l.src) {
				return Token{}, l.errorf(start, "unterminated string literal")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			default:
				return Token{}, l.errorf(escPos, "invalid escape sequence '\\%c'", esc)
			}
		default:
			b.WriteRune(r)
		}
	}
}

type operatorSpec struct {
	text string
	kind Kind
}

// Longest match first.
var operators = []operatorSpec{
	{"==", Equal},
	{"!=", NotEqual},
	{"<=", LessEqual},
	{">=", GreaterEqual},
	{":=", InferAssign},
	{"->", Arrow},
	{"+", Plus},
	{"-", Minus},
	{"*", Star},
	{"/", Slash},
	{"%", Percent},
	{"<", Less},
	{">", Greater},
	{"=", Assign},
	{"#", Hash},
	{"&", Ampersand},
	{"(", LeftParen},
	{")", RightParen},
	{"{", LeftBrace},
	{"}", RightBrace},
	{"[", LeftBracket},
	{"]", RightBracket},
	{",", Comma},
	{".", Dot},
	{":", Colon},
	{";", Semicolon},
}

func (l *Lexer) scanOperator(start Position) (Token, error) {
	rest := l.src[l.offset:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			for range op.text {
				l.advance()
			}
			return Token{Kind: op.kind, Lexeme: op.text, Pos: start}, nil
		}
	}
	r, _ := l.peekRune()
	return Token{}, l.errorf(start, "unexpected character %q", r)
}
