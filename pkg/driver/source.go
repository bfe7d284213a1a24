package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/lexer"
	"github.com/samjay22/Lux/pkg/parser"
)

// Source is one Lux file read from disk.
type Source struct {
	Path string
	Name string
	Text string
}

// LoadSource reads a .lux file. Name is the path relative to the working
// directory when possible, which keeps diagnostics short.
func LoadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name := path
	if abs, err := filepath.Abs(path); err == nil {
		if wd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(wd, abs); err == nil && !startsWithParent(rel) {
				name = rel
			}
		}
		path = abs
	}
	return &Source{Path: path, Name: filepath.ToSlash(name), Text: string(data)}, nil
}

// NewSource wraps in-memory text, for stdin and the REPL.
func NewSource(name, text string) *Source {
	return &Source{Name: name, Text: text}
}

// Compile tokenizes and parses src. Errors are *lexer.LexError or
// parser.ErrorList.
func Compile(src *Source) (*ast.Program, error) {
	return parser.ParseSource(src.Text, src.Name)
}

// Tokens returns the token stream of src.
func Tokens(src *Source) ([]lexer.Token, error) {
	return lexer.Tokenize(src.Text, src.Name)
}

// IsSyntaxError reports whether err came from the lexer or parser.
func IsSyntaxError(err error) bool {
	var lexErr *lexer.LexError
	var parseErrs parser.ErrorList
	var parseErr *parser.ParseError
	return errors.As(err, &lexErr) || errors.As(err, &parseErrs) || errors.As(err, &parseErr)
}

func startsWithParent(rel string) bool {
	return rel == ".." || len(rel) > 3 && rel[:3] == ".."+string(filepath.Separator)
}
