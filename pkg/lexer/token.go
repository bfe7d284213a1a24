package lexer

import "fmt"

// Kind identifies the lexical category of a token.
type Kind int

const (
	EOF Kind = iota

	// Literals and names.
	Identifier
	Integer
	Float
	String

	// Keywords.
	Local
	Const
	Fn
	Async
	Await
	Spawn
	If
	Else
	While
	For
	Break
	Continue
	Return
	True
	False
	Nil
	And
	Or
	Not
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	TypeTable
	Setmetatable
	Getmetatable
	Import

	// Operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	Assign
	InferAssign
	Hash
	Ampersand
	Arrow

	// Delimiters.
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Comma
	Dot
	Colon
	Semicolon
)

var kindNames = map[Kind]string{
	EOF:          "end of input",
	Identifier:   "identifier",
	Integer:      "integer literal",
	Float:        "float literal",
	String:       "string literal",
	Local:        "'local'",
	Const:        "'const'",
	Fn:           "'fn'",
	Async:        "'async'",
	Await:        "'await'",
	Spawn:        "'spawn'",
	If:           "'if'",
	Else:         "'else'",
	While:        "'while'",
	For:          "'for'",
	Break:        "'break'",
	Continue:     "'continue'",
	Return:       "'return'",
	True:         "'true'",
	False:        "'false'",
	Nil:          "'nil'",
	And:          "'and'",
	Or:           "'or'",
	Not:          "'not'",
	TypeInt:      "'int'",
	TypeFloat:    "'float'",
	TypeString:   "'string'",
	TypeBool:     "'bool'",
	TypeTable:    "'table'",
	Setmetatable: "'setmetatable'",
	Getmetatable: "'getmetatable'",
	Import:       "'import'",
	Plus:         "'+'",
	Minus:        "'-'",
	Star:         "'*'",
	Slash:        "'/'",
	Percent:      "'%'",
	Equal:        "'=='",
	NotEqual:     "'!='",
	Less:         "'<'",
	LessEqual:    "'<='",
	Greater:      "'>'",
	GreaterEqual: "'>='",
	Assign:       "'='",
	InferAssign:  "':='",
	Hash:         "'#'",
	Ampersand:    "'&'",
	Arrow:        "'->'",
	LeftParen:    "'('",
	RightParen:   "')'",
	LeftBrace:    "'{'",
	RightBrace:   "'}'",
	LeftBracket:  "'['",
	RightBracket: "']'",
	Comma:        "','",
	Dot:          "'.'",
	Colon:        "':'",
	Semicolon:    "';'",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// IsKeyword reports whether the kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= Local && k <= Import
}

// IsOperator reports whether the kind is an operator symbol.
func (k Kind) IsOperator() bool {
	return k >= Plus && k <= Arrow
}

// IsTypeName reports whether the kind names a built-in type.
func (k Kind) IsTypeName() bool {
	switch k {
	case TypeInt, TypeFloat, TypeString, TypeBool, TypeTable, Nil:
		return true
	default:
		return false
	}
}

var keywords = map[string]Kind{
	"local":        Local,
	"const":        Const,
	"fn":           Fn,
	"async":        Async,
	"await":        Await,
	"spawn":        Spawn,
	"if":           If,
	"else":         Else,
	"while":        While,
	"for":          For,
	"break":        Break,
	"continue":     Continue,
	"return":       Return,
	"true":         True,
	"false":        False,
	"nil":          Nil,
	"and":          And,
	"or":           Or,
	"not":          Not,
	"int":          TypeInt,
	"float":        TypeFloat,
	"string":       TypeString,
	"bool":         TypeBool,
	"table":        TypeTable,
	"setmetatable": Setmetatable,
	"getmetatable": Getmetatable,
	"import":       Import,
}

// LookupIdentifier maps a word to its keyword kind, or Identifier.
func LookupIdentifier(word string) Kind {
	if kind, ok := keywords[word]; ok {
		return kind
	}
	return Identifier
}

// Position locates a token in its source. Line and Column are 1-based,
// Offset is the 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is one lexical unit. Literal holds the decoded contents of string
// literals and is empty for every other kind.
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal string
	Pos     Position
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return fmt.Sprintf("%s EOF", t.Pos)
	case String:
		return fmt.Sprintf("%s %s %q", t.Pos, kindLabel(t.Kind), t.Literal)
	default:
		return fmt.Sprintf("%s %s %s", t.Pos, kindLabel(t.Kind), t.Lexeme)
	}
}

func kindLabel(k Kind) string {
	switch {
	case k.IsKeyword():
		return "keyword"
	case k.IsOperator():
		return "operator"
	case k >= LeftParen:
		return "delimiter"
	case k == Identifier:
		return "identifier"
	default:
		return "literal"
	}
}
