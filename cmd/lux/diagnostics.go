package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samjay22/Lux/pkg/driver"
	"github.com/samjay22/Lux/pkg/interpreter"
	"github.com/samjay22/Lux/pkg/lexer"
	"github.com/samjay22/Lux/pkg/parser"
)

// diagnostic is one error with the location to underline.
type diagnostic struct {
	message string
	source  string
	line    int
	column  int
}

// reportError prints every error in err, each followed by the offending
// line of src when the error points into it.
func reportError(w io.Writer, err error, src *driver.Source) {
	for _, d := range collectDiagnostics(err) {
		fmt.Fprintln(w, d.message)
		if src != nil && d.source == src.Name {
			writeSnippet(w, src.Text, d.line, d.column)
		}
	}
}

func collectDiagnostics(err error) []diagnostic {
	var (
		lexErr    *lexer.LexError
		parseErrs parser.ErrorList
		runErrs   interpreter.ErrorList
		runErr    *interpreter.RuntimeError
	)
	switch {
	case errors.As(err, &lexErr):
		return []diagnostic{{lexErr.Error(), lexErr.Source, lexErr.Pos.Line, lexErr.Pos.Column}}
	case errors.As(err, &parseErrs):
		out := make([]diagnostic, 0, len(parseErrs))
		for _, e := range parseErrs {
			out = append(out, diagnostic{e.Error(), e.Source, e.Pos.Line, e.Pos.Column})
		}
		return out
	case errors.As(err, &runErrs):
		out := make([]diagnostic, 0, len(runErrs))
		for _, e := range runErrs {
			out = append(out, diagnostic{e.Error(), e.Source, e.Pos.Line, e.Pos.Column})
		}
		return out
	case errors.As(err, &runErr):
		return []diagnostic{{runErr.Error(), runErr.Source, runErr.Pos.Line, runErr.Pos.Column}}
	}
	return []diagnostic{{message: err.Error()}}
}

func writeSnippet(w io.Writer, text string, line, column int) {
	if line <= 0 {
		return
	}
	lines := strings.Split(text, "\n")
	if line > len(lines) {
		return
	}
	content := strings.TrimRight(lines[line-1], "\r")
	gutter := fmt.Sprintf("%4d | ", line)
	fmt.Fprintf(w, "%s%s\n", gutter, content)
	if column <= 0 {
		return
	}
	pad := make([]byte, 0, column)
	for idx := 0; idx < column-1 && idx < len(content); idx++ {
		if content[idx] == '\t' {
			pad = append(pad, '\t')
		} else {
			pad = append(pad, ' ')
		}
	}
	fmt.Fprintf(w, "%s| %s^\n", strings.Repeat(" ", len(gutter)-2), pad)
}
