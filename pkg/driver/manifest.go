package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project file looked up by the CLI.
const ManifestFileName = "lux.yml"

// ErrManifestNotFound is returned by FindManifest when no lux.yml exists in
// the directory or any of its parents.
var ErrManifestNotFound = errors.New("lux.yml not found")

// Manifest represents the parsed contents of lux.yml.
type Manifest struct {
	Path         string
	Dir          string
	Name         string
	Version      string
	Entry        string
	LogLevel     string
	Executor     string
	MaxCallDepth int
	Preload      []string

	Dependencies    map[string]*DependencySpec
	DependencyOrder []string
}

// DependencySpec describes one entry of the dependencies mapping. Exactly
// one of Git or Path is set; git dependencies pin one of Rev, Tag or Branch.
type DependencySpec struct {
	Git     string
	Rev     string
	Tag     string
	Branch  string
	Path    string
	Preload []string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// FindManifest walks from start up to the filesystem root looking for
// lux.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", start, err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrManifestNotFound
		}
		dir = parent
	}
}

// LoadManifest parses lux.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// EntryPath returns the entry script resolved against the manifest directory.
func (m *Manifest) EntryPath() string {
	if m == nil || m.Entry == "" {
		return ""
	}
	return m.resolve(m.Entry)
}

// PreloadPaths returns the manifest's own preload scripts as absolute paths.
func (m *Manifest) PreloadPaths() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.Preload))
	for _, p := range m.Preload {
		out = append(out, m.resolve(p))
	}
	return out
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, filepath.FromSlash(p))
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var executors = map[string]bool{"goroutine": true, "serial": true}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*$`)

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	} else if !namePattern.MatchString(m.Name) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("name %q must be an identifier", m.Name))
	}
	if m.Entry != "" && !strings.HasSuffix(m.Entry, ".lux") {
		errs.Issues = append(errs.Issues, fmt.Sprintf("entry %q must be a .lux file", m.Entry))
	}
	if m.LogLevel != "" && !logLevels[m.LogLevel] {
		errs.Issues = append(errs.Issues, fmt.Sprintf("log_level %q must be one of debug, info, warn, error", m.LogLevel))
	}
	if m.Executor != "" && !executors[m.Executor] {
		errs.Issues = append(errs.Issues, fmt.Sprintf("executor %q must be goroutine or serial", m.Executor))
	}
	if m.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, "max_call_depth must not be negative")
	}
	for i, p := range m.Preload {
		if !strings.HasSuffix(p, ".lux") {
			errs.Issues = append(errs.Issues, fmt.Sprintf("preload[%d] %q must be a .lux file", i, p))
		}
	}
	for _, name := range m.DependencyOrder {
		dep := m.Dependencies[name]
		if dep == nil {
			continue
		}
		if !namePattern.MatchString(name) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: name must be an identifier", name))
		}
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", name, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	switch {
	case d.Git == "" && d.Path == "":
		errs = append(errs, "must specify git or path")
	case d.Git != "" && d.Path != "":
		errs = append(errs, "path dependencies cannot also specify git")
	}
	pins := 0
	for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
		if pin != "" {
			pins++
		}
	}
	if d.Git != "" && pins != 1 {
		errs = append(errs, "git dependencies require exactly one of rev, tag, or branch")
	}
	if d.Path != "" && pins > 0 {
		errs = append(errs, "path dependencies cannot pin rev, tag, or branch")
	}
	for i, p := range d.Preload {
		if !strings.HasSuffix(p, ".lux") {
			errs = append(errs, fmt.Sprintf("preload[%d] %q must be a .lux file", i, p))
		}
	}
	return errs
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Entry        string        `yaml:"entry"`
	LogLevel     string        `yaml:"log_level"`
	Executor     string        `yaml:"executor"`
	MaxCallDepth int           `yaml:"max_call_depth"`
	Preload      stringList    `yaml:"preload"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

type dependencyMap struct {
	names []string
	specs map[string]*DependencySpec
}

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:            path,
		Dir:             filepath.Dir(path),
		Name:            strings.TrimSpace(mf.Name),
		Version:         strings.TrimSpace(mf.Version),
		Entry:           strings.TrimSpace(mf.Entry),
		LogLevel:        strings.ToLower(strings.TrimSpace(mf.LogLevel)),
		Executor:        strings.ToLower(strings.TrimSpace(mf.Executor)),
		MaxCallDepth:    mf.MaxCallDepth,
		Preload:         mf.Preload.Clone(),
		Dependencies:    make(map[string]*DependencySpec, len(mf.Dependencies.names)),
		DependencyOrder: append([]string(nil), mf.Dependencies.names...),
	}
	for name, dep := range mf.Dependencies.specs {
		result.Dependencies[name] = dep.clone()
	}
	return result
}

func (d *DependencySpec) clone() *DependencySpec {
	if d == nil {
		return nil
	}
	copy := *d
	copy.Preload = append([]string(nil), d.Preload...)
	return &copy
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

// UnmarshalYAML keeps dependencies in file order; preloads of earlier
// dependencies run first.
func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	dm.names = nil
	dm.specs = make(map[string]*DependencySpec)
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		if _, dup := dm.specs[key]; dup {
			return fmt.Errorf("manifest: dependency %q declared twice", key)
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(valNode); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		dm.names = append(dm.names, key)
		dm.specs[key] = &dep
	}
	return nil
}

func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		// A bare string is shorthand for a local path.
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*d = DependencySpec{}
			return nil
		}
		*d = DependencySpec{Path: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Git     string     `yaml:"git"`
			Rev     string     `yaml:"rev"`
			Tag     string     `yaml:"tag"`
			Branch  string     `yaml:"branch"`
			Path    string     `yaml:"path"`
			Preload stringList `yaml:"preload"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Git:     strings.TrimSpace(raw.Git),
			Rev:     strings.TrimSpace(raw.Rev),
			Tag:     strings.TrimSpace(raw.Tag),
			Branch:  strings.TrimSpace(raw.Branch),
			Path:    strings.TrimSpace(raw.Path),
			Preload: raw.Preload.Clone(),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping but found %s", value.ShortTag())
	}
}
