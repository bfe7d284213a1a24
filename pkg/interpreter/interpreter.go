package interpreter

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/runtime"
)

// DefaultMaxCallDepth bounds nested user function calls per execution context.
const DefaultMaxCallDepth = 10000

// maxMetaChain bounds __index/__newindex table chains.
const maxMetaChain = 100

// Interpreter drives evaluation of Lux programs.
type Interpreter struct {
	out          io.Writer
	outMu        sync.Mutex
	logger       *slog.Logger
	executor     Executor
	maxCallDepth int
	sourceName   string

	tasksMu sync.Mutex
	tasks   []*runtime.TaskHandle
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets the writer used by print.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithLogger sets the structured logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

// WithExecutor sets the scheduler used by spawn.
func WithExecutor(exec Executor) Option {
	return func(i *Interpreter) { i.executor = exec }
}

// WithMaxCallDepth overrides DefaultMaxCallDepth.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) { i.maxCallDepth = depth }
}

// WithSourceName sets the file name used in error positions.
func WithSourceName(name string) Option {
	return func(i *Interpreter) { i.sourceName = name }
}

// New returns an interpreter writing to stdout with goroutine-backed tasks.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		out:          os.Stdout,
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if i.executor == nil {
		i.executor = NewGoroutineExecutor()
	}
	if i.maxCallDepth <= 0 {
		i.maxCallDepth = DefaultMaxCallDepth
	}
	return i
}

// Executor returns the scheduler used by spawn.
func (i *Interpreter) Executor() Executor {
	return i.executor
}

// NewGlobalEnvironment returns a fresh global frame with the natives
// registered.
func (i *Interpreter) NewGlobalEnvironment() *runtime.Environment {
	env := runtime.NewEnvironment(nil)
	i.registerBuiltins(env)
	return env
}

// RunOptions selects the environment and source name of one run.
type RunOptions struct {
	Env        *runtime.Environment
	SourceName string
}

// Execute runs program in a fresh global environment.
func (i *Interpreter) Execute(program *ast.Program) (runtime.Value, error) {
	return i.Run(program, RunOptions{})
}

// ExecuteIn runs program in env, keeping its bindings afterwards.
func (i *Interpreter) ExecuteIn(program *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	return i.Run(program, RunOptions{Env: env})
}

// Run evaluates the top-level statements in order. The result is the value
// of a top-level return, or else of the last statement. Before returning it
// waits for every spawned task; failures of tasks that were never awaited
// are appended to the returned ErrorList.
func (i *Interpreter) Run(program *ast.Program, opts RunOptions) (runtime.Value, error) {
	env := opts.Env
	if env == nil {
		env = i.NewGlobalEnvironment()
	}
	source := opts.SourceName
	if source == "" {
		source = i.sourceName
	}
	state := i.newState(source, false)

	var result runtime.Value = runtime.Nil
	var errs ErrorList
	for _, stmt := range program.Statements {
		val, err := i.evaluateStatement(stmt, env, state)
		if err != nil {
			if ret, ok := err.(returnSignal); ok {
				result = ret.value
				break
			}
			errs = append(errs, i.asRuntimeError(err, state, stmt))
			break
		}
		result = val
	}
	errs = append(errs, i.flushTasks()...)
	if len(errs) > 0 {
		return result, errs
	}
	return result, nil
}

// evalState is per execution context: the main program and each spawned
// task get their own. Calls derive a child state one level deeper.
type evalState struct {
	depth  int
	source string
	inTask bool
}

func (i *Interpreter) newState(source string, inTask bool) *evalState {
	return &evalState{source: source, inTask: inTask}
}

func (s *evalState) call(source string) *evalState {
	return &evalState{depth: s.depth + 1, source: source, inTask: s.inTask}
}

func (i *Interpreter) write(s string) {
	i.outMu.Lock()
	defer i.outMu.Unlock()
	io.WriteString(i.out, s)
}
