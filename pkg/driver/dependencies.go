package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ResolvedDependency is a dependency available on disk.
type ResolvedDependency struct {
	Name    string
	Dir     string
	Version string
	Commit  string
	Preload []string
}

// DefaultCacheDir returns $LUX_HOME, falling back to ~/.lux.
func DefaultCacheDir() (string, error) {
	if home := strings.TrimSpace(os.Getenv("LUX_HOME")); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(userHome, ".lux"), nil
}

// Fetcher places manifest dependencies under CacheDir. An Offline fetcher
// never clones and fails for git dependencies missing from the cache.
type Fetcher struct {
	CacheDir string
	Offline  bool
	Logger   *slog.Logger
}

// FetchDependencies resolves every dependency of m in declaration order.
func FetchDependencies(m *Manifest, cacheDir string) ([]*ResolvedDependency, error) {
	f := &Fetcher{CacheDir: cacheDir}
	return f.Fetch(context.Background(), m)
}

// Fetch resolves path dependencies in place and clones git dependencies
// into the cache, reusing checkouts that already exist.
func (f *Fetcher) Fetch(ctx context.Context, m *Manifest) ([]*ResolvedDependency, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var out []*ResolvedDependency
	for _, name := range m.DependencyOrder {
		spec := m.Dependencies[name]
		if spec == nil {
			continue
		}
		var (
			dep *ResolvedDependency
			err error
		)
		if spec.Path != "" {
			dep, err = resolvePathDependency(m, name, spec)
		} else {
			if f.CacheDir == "" {
				return nil, fmt.Errorf("dependency %q: no cache directory for git dependencies", name)
			}
			dep, err = f.fetchGit(ctx, name, spec)
		}
		if err != nil {
			return nil, err
		}
		for _, p := range spec.Preload {
			dep.Preload = append(dep.Preload, filepath.Join(dep.Dir, filepath.FromSlash(p)))
		}
		logger.Info("dependency ready", "name", name, "version", dep.Version, "dir", dep.Dir)
		out = append(out, dep)
	}
	return out, nil
}

// PreloadOrder lists the scripts to run before the entry: each
// dependency's preloads in order, then the manifest's own.
func PreloadOrder(m *Manifest, deps []*ResolvedDependency) []string {
	var out []string
	for _, dep := range deps {
		out = append(out, dep.Preload...)
	}
	return append(out, m.PreloadPaths()...)
}

func resolvePathDependency(m *Manifest, name string, spec *DependencySpec) (*ResolvedDependency, error) {
	dir := m.resolve(spec.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: %s is not a directory", name, dir)
	}
	return &ResolvedDependency{Name: name, Dir: dir, Version: "path"}, nil
}

func (f *Fetcher) fetchGit(ctx context.Context, name string, spec *DependencySpec) (*ResolvedDependency, error) {
	baseDir := filepath.Join(f.CacheDir, "pkg", sanitizePathSegment(name))
	if f.Offline {
		return lookupCachedCheckout(baseDir, name, spec)
	}
	version, commit, err := ensureGitCheckout(ctx, baseDir, spec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	return &ResolvedDependency{
		Name:    name,
		Dir:     filepath.Join(baseDir, sanitizePathSegment(version)),
		Version: version,
		Commit:  commit,
	}, nil
}

// ErrDependencyNotFetched is returned by offline fetches for git
// dependencies that have no checkout in the cache.
var ErrDependencyNotFetched = errors.New("dependency not fetched; run `lux deps`")

// lookupCachedCheckout finds the newest checkout whose directory matches
// the pinned rev, tag or branch.
func lookupCachedCheckout(baseDir, name string, spec *DependencySpec) (*ResolvedDependency, error) {
	_, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	prefix := sanitizePathSegment(descriptor)
	entries, err := os.ReadDir(baseDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	var (
		best     string
		bestTime time.Time
	)
	for _, entry := range entries {
		if !entry.IsDir() || (entry.Name() != prefix && !strings.HasPrefix(entry.Name(), prefix+"_")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best, bestTime = entry.Name(), info.ModTime()
		}
	}
	if best == "" {
		return nil, fmt.Errorf("dependency %q: %w", name, ErrDependencyNotFetched)
	}
	dep := &ResolvedDependency{Name: name, Dir: filepath.Join(baseDir, best), Version: best}
	if best == prefix {
		dep.Commit = descriptor
	} else {
		dep.Commit = strings.TrimPrefix(best, prefix+"_")
	}
	return dep, nil
}

func ensureGitCheckout(ctx context.Context, baseDir string, spec *DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if rev := spec.Rev; rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(rev))
		if _, err := os.Stat(existing); err == nil {
			return rev, rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}
	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{URL: spec.Git})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", spec.Git, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return descriptor + "@" + commit
}

func gitRevisionFromSpec(spec *DependencySpec) (plumbing.Revision, string, error) {
	switch {
	case spec.Rev != "":
		return plumbing.Revision(spec.Rev), spec.Rev, nil
	case spec.Tag != "":
		return plumbing.Revision("refs/tags/" + spec.Tag), spec.Tag, nil
	case spec.Branch != "":
		return plumbing.Revision("refs/remotes/origin/" + spec.Branch), spec.Branch, nil
	}
	return "", "", fmt.Errorf("git dependencies require rev, tag, or branch")
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}
