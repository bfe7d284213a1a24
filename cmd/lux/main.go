package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/driver"
	"github.com/samjay22/Lux/pkg/interpreter"
)

const cliToolVersion = "lux 0.1.0-dev"

// Exit codes; 65 follows sysexits EX_DATAERR for malformed source.
const (
	exitOK      = 0
	exitFailure = 1
	exitSyntax  = 65
)

type cli struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	ctx        context.Context
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	c := &cli{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		ctx:        ctx,
	}
	code := c.run(os.Args[1:])
	stop()
	os.Exit(code)
}

func (c *cli) run(args []string) int {
	if len(args) == 0 {
		if c.isTerminal() {
			return c.runRepl(nil)
		}
		return c.runStdin()
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(c.stdout)
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(c.stdout, cliToolVersion)
		return exitOK
	case "run":
		return c.runCommand(args[1:])
	case "tokens", "--tokens", "-t":
		return c.tokensCommand(args[1:])
	case "fmt":
		return c.fmtCommand(args[1:])
	case "repl":
		return c.runRepl(args[1:])
	case "deps":
		return c.depsCommand(args[1:])
	}
	if looksLikePathCandidate(args[0]) {
		return c.runCommand(args)
	}
	fmt.Fprintf(c.stderr, "unknown command %q\n", args[0])
	printUsage(c.stderr)
	return exitFailure
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  lux run [--watch] [--log-level L] [--executor E] [--max-call-depth N] [file.lux]")
	fmt.Fprintln(w, "  lux <file.lux>")
	fmt.Fprintln(w, "  lux tokens <file.lux>")
	fmt.Fprintln(w, "  lux fmt <file.lux>")
	fmt.Fprintln(w, "  lux repl")
	fmt.Fprintln(w, "  lux deps")
	fmt.Fprintln(w, "  lux version")
}

func looksLikePathCandidate(arg string) bool {
	return strings.HasSuffix(arg, ".lux") || strings.ContainsRune(arg, filepath.Separator) || strings.ContainsRune(arg, '/')
}

// settings are the interpreter knobs shared by lux.yml and the run flags.
type settings struct {
	logLevel     string
	executor     string
	maxCallDepth int
}

func (s settings) override(flags settings) settings {
	if flags.logLevel != "" {
		s.logLevel = flags.logLevel
	}
	if flags.executor != "" {
		s.executor = flags.executor
	}
	if flags.maxCallDepth > 0 {
		s.maxCallDepth = flags.maxCallDepth
	}
	return s
}

func manifestSettings(m *driver.Manifest) settings {
	if m == nil {
		return settings{}
	}
	return settings{logLevel: m.LogLevel, executor: m.Executor, maxCallDepth: m.MaxCallDepth}
}

func (c *cli) newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "", "warn":
		lvl = slog.LevelWarn
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// newInterpreter builds an interpreter for s. The returned cleanup stops a
// serial executor's worker.
func (c *cli) newInterpreter(s settings) (*interpreter.Interpreter, func(), error) {
	logger, err := c.newLogger(s.logLevel)
	if err != nil {
		return nil, nil, err
	}
	opts := []interpreter.Option{
		interpreter.WithOutput(c.stdout),
		interpreter.WithLogger(logger),
		interpreter.WithMaxCallDepth(s.maxCallDepth),
	}
	cleanup := func() {}
	switch s.executor {
	case "", "goroutine":
	case "serial":
		exec := interpreter.NewSerialExecutor()
		opts = append(opts, interpreter.WithExecutor(exec))
		cleanup = exec.Close
	default:
		return nil, nil, fmt.Errorf("unknown executor %q", s.executor)
	}
	return interpreter.New(opts...), cleanup, nil
}

type runFlags struct {
	settings
	watch bool
}

func (c *cli) parseRunFlags(args []string) (runFlags, []string, error) {
	var rf runFlags
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.BoolVar(&rf.watch, "watch", false, "re-run whenever a source file changes")
	fs.StringVar(&rf.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&rf.executor, "executor", "", "goroutine or serial")
	fs.IntVar(&rf.maxCallDepth, "max-call-depth", 0, "maximum nested calls per task")
	if err := fs.Parse(args); err != nil {
		return rf, nil, err
	}
	return rf, fs.Args(), nil
}

// plan is a resolved run: the scripts to preload and the entry file.
type plan struct {
	manifest *driver.Manifest
	preload  []string
	entry    string
	settings settings
}

func (c *cli) runCommand(args []string) int {
	flags, rest, err := c.parseRunFlags(args)
	if err != nil {
		return exitFailure
	}
	if len(rest) > 1 {
		fmt.Fprintf(c.stderr, "unexpected arguments: %s\n", strings.Join(rest[1:], " "))
		return exitFailure
	}
	var entry string
	if len(rest) == 1 {
		entry = rest[0]
	}
	p, err := c.resolvePlan(entry, flags.settings)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return exitFailure
	}
	if flags.watch {
		return c.watch(c.ctx, p)
	}
	return c.execute(p)
}

// resolvePlan finds the manifest governing entry (or the working directory
// when entry is empty) and collects the preload scripts.
func (c *cli) resolvePlan(entry string, flags settings) (*plan, error) {
	start := "."
	if entry != "" {
		start = filepath.Dir(entry)
	}
	var manifest *driver.Manifest
	manifestPath, err := driver.FindManifest(start)
	switch {
	case err == nil:
		manifest, err = driver.LoadManifest(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load manifest: %w", err)
		}
	case errors.Is(err, driver.ErrManifestNotFound):
	default:
		return nil, fmt.Errorf("failed to locate manifest: %w", err)
	}

	if entry == "" {
		if manifest == nil || manifest.Entry == "" {
			return nil, errors.New("lux run requires a source file or an entry in lux.yml")
		}
		entry = manifest.EntryPath()
	}

	p := &plan{manifest: manifest, entry: entry, settings: manifestSettings(manifest).override(flags)}
	if manifest == nil {
		return p, nil
	}
	fetcher := &driver.Fetcher{Offline: true}
	if len(manifest.Dependencies) > 0 {
		if fetcher.CacheDir, err = driver.DefaultCacheDir(); err != nil {
			return nil, err
		}
	}
	deps, err := fetcher.Fetch(c.ctx, manifest)
	if err != nil {
		return nil, err
	}
	p.preload = driver.PreloadOrder(manifest, deps)
	return p, nil
}

// execute runs the preloads and then the entry in one global environment.
func (c *cli) execute(p *plan) int {
	interp, cleanup, err := c.newInterpreter(p.settings)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return exitFailure
	}
	defer cleanup()
	env := interp.NewGlobalEnvironment()
	for _, path := range append(append([]string(nil), p.preload...), p.entry) {
		src, err := driver.LoadSource(path)
		if err != nil {
			fmt.Fprintf(c.stderr, "%v\n", err)
			return exitFailure
		}
		if code := c.runSource(interp, src, interpreter.RunOptions{Env: env, SourceName: src.Name}); code != exitOK {
			return code
		}
	}
	return exitOK
}

// runSource compiles and runs one source, reporting errors with snippets.
func (c *cli) runSource(interp *interpreter.Interpreter, src *driver.Source, opts interpreter.RunOptions) int {
	program, err := driver.Compile(src)
	if err != nil {
		reportError(c.stderr, err, src)
		return exitSyntax
	}
	if _, err := interp.Run(program, opts); err != nil {
		reportError(c.stderr, err, src)
		return exitFailure
	}
	return exitOK
}

func (c *cli) runStdin() int {
	data, err := io.ReadAll(c.stdin)
	if err != nil {
		fmt.Fprintf(c.stderr, "read stdin: %v\n", err)
		return exitFailure
	}
	interp, cleanup, err := c.newInterpreter(settings{})
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return exitFailure
	}
	defer cleanup()
	src := driver.NewSource("<stdin>", string(data))
	return c.runSource(interp, src, interpreter.RunOptions{SourceName: src.Name})
}

func (c *cli) loadSingleSource(command string, args []string) (*driver.Source, int) {
	if len(args) != 1 {
		fmt.Fprintf(c.stderr, "lux %s requires exactly one source file\n", command)
		return nil, exitFailure
	}
	src, err := driver.LoadSource(args[0])
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return nil, exitFailure
	}
	return src, exitOK
}

func (c *cli) tokensCommand(args []string) int {
	src, code := c.loadSingleSource("tokens", args)
	if src == nil {
		return code
	}
	tokens, err := driver.Tokens(src)
	if err != nil {
		reportError(c.stderr, err, src)
		return exitSyntax
	}
	for _, tok := range tokens {
		fmt.Fprintln(c.stdout, tok.String())
	}
	return exitOK
}

func (c *cli) fmtCommand(args []string) int {
	src, code := c.loadSingleSource("fmt", args)
	if src == nil {
		return code
	}
	program, err := driver.Compile(src)
	if err != nil {
		reportError(c.stderr, err, src)
		return exitSyntax
	}
	io.WriteString(c.stdout, ast.Print(program))
	return exitOK
}

func (c *cli) depsCommand(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(c.stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return exitFailure
	}
	manifestPath, err := driver.FindManifest(".")
	if err != nil {
		fmt.Fprintf(c.stderr, "lux deps: %v\n", err)
		return exitFailure
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(c.stderr, "failed to load manifest: %v\n", err)
		return exitFailure
	}
	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return exitFailure
	}
	logger, err := c.newLogger(manifest.LogLevel)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return exitFailure
	}
	fetcher := &driver.Fetcher{CacheDir: cacheDir, Logger: logger}
	deps, err := fetcher.Fetch(c.ctx, manifest)
	if err != nil {
		fmt.Fprintf(c.stderr, "lux deps: %v\n", err)
		return exitFailure
	}
	if len(deps) == 0 {
		fmt.Fprintln(c.stdout, "no dependencies")
		return exitOK
	}
	for _, dep := range deps {
		fmt.Fprintf(c.stdout, "%s\t%s\t%s\n", dep.Name, dep.Version, dep.Dir)
	}
	return exitOK
}
