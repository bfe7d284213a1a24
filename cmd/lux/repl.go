package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/driver"
	"github.com/samjay22/Lux/pkg/interpreter"
	"github.com/samjay22/Lux/pkg/lexer"
	"github.com/samjay22/Lux/pkg/runtime"
)

const (
	replPrompt       = "lux> "
	replContinuation = "...> "
)

var replCompletions = []string{
	"local", "const", "fn", "return", "if", "else", "while", "for", "break",
	"continue", "spawn", "await", "and", "or", "not", "nil", "true", "false",
	"print", "setmetatable", "getmetatable", "tostring", "type",
	"rawget", "rawset", "rawequal", "rawlen",
}

// replSession holds the state shared by every line entered in the REPL.
type replSession struct {
	interp  *interpreter.Interpreter
	env     *runtime.Environment
	out     io.Writer
	errOut  io.Writer
	buffer  strings.Builder
	counter int
}

func newReplSession(interp *interpreter.Interpreter, out, errOut io.Writer) *replSession {
	return &replSession{interp: interp, env: interp.NewGlobalEnvironment(), out: out, errOut: errOut}
}

// feed adds one input line and evaluates the buffer once it forms a
// complete chunk. It reports whether more input is needed.
func (s *replSession) feed(line string) bool {
	if s.buffer.Len() > 0 {
		s.buffer.WriteByte('\n')
	}
	s.buffer.WriteString(line)
	text := s.buffer.String()
	if strings.TrimSpace(text) == "" {
		s.buffer.Reset()
		return false
	}
	if needsMoreInput(text) {
		return true
	}
	s.buffer.Reset()
	s.eval(text)
	return false
}

// reset drops a partially entered chunk.
func (s *replSession) reset() bool {
	had := s.buffer.Len() > 0
	s.buffer.Reset()
	return had
}

func (s *replSession) eval(text string) {
	s.counter++
	src := driver.NewSource(fmt.Sprintf("<repl:%d>", s.counter), text)
	program, err := driver.Compile(src)
	if err != nil {
		reportError(s.errOut, err, src)
		return
	}
	value, err := s.interp.Run(program, interpreter.RunOptions{Env: s.env, SourceName: src.Name})
	if err != nil {
		reportError(s.errOut, err, src)
		return
	}
	if !echoesValue(program) || runtime.IsNil(value) {
		return
	}
	rendered, err := s.interp.ToString(value)
	if err != nil {
		reportError(s.errOut, err, src)
		return
	}
	fmt.Fprintln(s.out, rendered)
}

// echoesValue reports whether the chunk ends in a bare expression, whose
// value the REPL shows.
func echoesValue(program *ast.Program) bool {
	if len(program.Statements) == 0 {
		return false
	}
	_, ok := program.Statements[len(program.Statements)-1].(*ast.ExpressionStatement)
	return ok
}

// needsMoreInput reports whether text has unclosed brackets or an
// unterminated string or comment.
func needsMoreInput(text string) bool {
	tokens, err := lexer.Tokenize(text, "<repl>")
	if err != nil {
		var lexErr *lexer.LexError
		return errors.As(err, &lexErr) && strings.Contains(lexErr.Message, "unterminated")
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.LeftBrace, lexer.LeftParen, lexer.LeftBracket:
			depth++
		case lexer.RightBrace, lexer.RightParen, lexer.RightBracket:
			depth--
		}
	}
	return depth > 0
}

func replHistoryPath() string {
	if dir, err := driver.DefaultCacheDir(); err == nil {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return filepath.Join(dir, "repl_history")
		}
	}
	return filepath.Join(os.TempDir(), ".lux_history")
}

func (c *cli) runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(c.stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return exitFailure
	}
	interp, cleanup, err := c.newInterpreter(settings{})
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return exitFailure
	}
	defer cleanup()
	session := newReplSession(interp, c.stdout, c.stderr)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		return completeWord(input, replCompletions)
	})

	historyFile := replHistoryPath()
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(c.stdout, "%s (Ctrl+D to exit)\n", cliToolVersion)
	prompt := replPrompt
	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				if session.reset() {
					fmt.Fprintln(c.stdout, "^C (cleared)")
				}
				prompt = replPrompt
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.stdout)
				return exitOK
			}
			fmt.Fprintf(c.stderr, "read input: %v\n", err)
			return exitFailure
		}
		if prompt == replPrompt {
			switch strings.TrimSpace(input) {
			case "exit", "quit", ":q":
				return exitOK
			}
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if session.feed(input) {
			prompt = replContinuation
		} else {
			prompt = replPrompt
		}
	}
}

// completeWord completes the identifier at the end of input.
func completeWord(input string, words []string) []string {
	start := strings.LastIndexFunc(input, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) + 1
	prefix := input[start:]
	if prefix == "" {
		return nil
	}
	var out []string
	for _, word := range words {
		if strings.HasPrefix(word, prefix) {
			out = append(out, input[:start]+word)
		}
	}
	return out
}
