package interpreter

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samjay22/Lux/pkg/parser"
	"github.com/samjay22/Lux/pkg/runtime"
)

type fixtureManifest struct {
	Description string   `json:"description"`
	Entry       string   `json:"entry"`
	Executor    string   `json:"executor"`
	Preload     []string `json:"preload"`
	Expect      struct {
		Stdout []string `json:"stdout"`
		Errors []string `json:"errors"`
	} `json:"expect"`
}

func TestProgramFixtures(t *testing.T) {
	root := filepath.Join("..", "..", "fixtures", "programs")
	walkFixtures(t, root, func(dir string) {
		name, _ := filepath.Rel(root, dir)
		t.Run(filepath.ToSlash(name), func(t *testing.T) {
			runFixture(t, dir, readManifest(t, dir))
		})
	})
}

func walkFixtures(t *testing.T, dir string, fn func(string)) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && entry.Name() == "manifest.json" {
			fn(dir)
			return
		}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			walkFixtures(t, filepath.Join(dir, entry.Name()), fn)
		}
	}
}

func readManifest(t *testing.T, dir string) fixtureManifest {
	t.Helper()
	manifestPath := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fixtureManifest{}
		}
		t.Fatalf("read manifest %s: %v", manifestPath, err)
	}
	var manifest fixtureManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest %s: %v", manifestPath, err)
	}
	return manifest
}

func runFixture(t *testing.T, dir string, manifest fixtureManifest) {
	t.Helper()
	var out bytes.Buffer
	opts := []Option{WithOutput(&out)}
	switch manifest.Executor {
	case "", "goroutine":
	case "serial":
		opts = append(opts, WithExecutor(serialExecutor(t)))
	default:
		t.Fatalf("fixture %s: unknown executor %q", dir, manifest.Executor)
	}
	interp := New(opts...)
	env := interp.NewGlobalEnvironment()

	for _, rel := range manifest.Preload {
		if _, err := runFixtureFile(interp, env, dir, rel); err != nil {
			t.Fatalf("fixture %s: preload %s: %v", dir, rel, err)
		}
	}
	entry := manifest.Entry
	if entry == "" {
		entry = "main.lux"
	}
	_, err := runFixtureFile(interp, env, dir, entry)

	if got := fixtureLines(out.String()); !equalStrings(got, manifest.Expect.Stdout) {
		t.Fatalf("fixture %s stdout = %q, want %q", dir, got, manifest.Expect.Stdout)
	}
	if len(manifest.Expect.Errors) == 0 {
		if err != nil {
			t.Fatalf("fixture %s evaluation error: %v", dir, err)
		}
		return
	}
	if err == nil {
		t.Fatalf("fixture %s expected errors %v", dir, manifest.Expect.Errors)
	}
	if got := errorKinds(err); !equalStrings(got, manifest.Expect.Errors) {
		t.Fatalf("fixture %s error kinds = %v, want %v (%v)", dir, got, manifest.Expect.Errors, err)
	}
}

func runFixtureFile(interp *Interpreter, env *runtime.Environment, dir, rel string) (runtime.Value, error) {
	path := filepath.Join(dir, rel)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	program, err := parser.ParseSource(string(data), rel)
	if err != nil {
		return nil, err
	}
	return interp.Run(program, RunOptions{Env: env, SourceName: rel})
}

func errorKinds(err error) []string {
	var list ErrorList
	if errors.As(err, &list) {
		kinds := make([]string, len(list))
		for idx, rt := range list {
			kinds[idx] = string(rt.Kind)
		}
		return kinds
	}
	if kind, ok := KindOf(err); ok {
		return []string{string(kind)}
	}
	return []string{err.Error()}
}

func fixtureLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}
	return true
}
