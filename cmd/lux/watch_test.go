package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samjay22/Lux/pkg/driver"
	"github.com/samjay22/Lux/pkg/lexer"
)

// syncBuffer lets the test read output while a watch loop writes it.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestWatchFilesReportsWrites(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "main.lux")
	other := filepath.Join(dir, "notes.txt")
	writeFile(t, watched, "print(1)")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{watched}, func(path string) { changes <- path })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, other, "ignored")
	writeFile(t, watched, "print(2)")

	select {
	case got := <-changes:
		if got != watched {
			t.Fatalf("changed = %q, want %q", got, watched)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watchFiles: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}

func TestWatchRerunsProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.lux")
	writeFile(t, path, `print("first")`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, errOut := &syncBuffer{}, &syncBuffer{}
	c := &cli{
		stdin:      strings.NewReader(""),
		stdout:     out,
		stderr:     errOut,
		isTerminal: func() bool { return false },
		ctx:        ctx,
	}
	p, err := c.resolvePlan(path, settings{})
	if err != nil {
		t.Fatalf("resolvePlan: %v", err)
	}
	done := make(chan int, 1)
	go func() { done <- c.watch(ctx, p) }()

	time.Sleep(200 * time.Millisecond)
	writeFile(t, path, `print("second")`)
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "second") {
		if time.Now().After(deadline) {
			t.Fatalf("program was not re-run: %q", out.String())
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if code := <-done; code != exitOK {
		t.Fatalf("watch exit = %d, stderr %q", code, errOut.String())
	}
	if got := out.String(); !strings.HasPrefix(got, "first\nsecond\n") {
		t.Fatalf("stdout = %q", got)
	}
	if !strings.Contains(errOut.String(), "[WATCH]") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestReportErrorSnippets(t *testing.T) {
	var buf bytes.Buffer
	src := driver.NewSource("s.lux", "local a := 1\n\tlocal b := @")
	err := &lexer.LexError{Source: "s.lux", Pos: lexer.Position{Line: 2, Column: 13}, Message: "unexpected character '@'"}
	reportError(&buf, err, src)
	want := "s.lux:2:13: LexError: unexpected character '@'\n" +
		"   2 | \tlocal b := @\n" +
		"     | \t" + strings.Repeat(" ", 11) + "^\n"
	if buf.String() != want {
		t.Fatalf("report =\n%q\nwant\n%q", buf.String(), want)
	}

	buf.Reset()
	reportError(&buf, errors.New("plain failure"), nil)
	if buf.String() != "plain failure\n" {
		t.Fatalf("plain report = %q", buf.String())
	}

	buf.Reset()
	reportError(&buf, &lexer.LexError{Source: "other.lux", Pos: lexer.Position{Line: 1, Column: 1}, Message: "x"}, src)
	if strings.Contains(buf.String(), "|") {
		t.Fatalf("snippet printed for a different source: %q", buf.String())
	}
}
