package pyproject

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/matzehuels/poetry2rye/pkg/errors"
	"github.com/matzehuels/poetry2rye/pkg/pyproject/constraint"
)

// DependencyKind separates the interpreter constraint from real packages.
type DependencyKind int

const (
	// KindPackage is an ordinary package requirement.
	KindPackage DependencyKind = iota
	// KindInterpreter is the "python" entry of [tool.poetry.dependencies].
	KindInterpreter
)

// Source is a direct reference replacing a registry lookup.
type Source struct {
	Git          string
	Branch       string
	Tag          string
	Rev          string
	Subdirectory string
	URL          string
	Path         string
}

// IsZero reports whether the dependency comes from the package index.
func (s Source) IsZero() bool { return s == Source{} }

// Dependency is one requirement read from the Poetry tables.
type Dependency struct {
	Name       string
	Constraint string // Poetry version expression as written
	Kind       DependencyKind
	Dev        bool
	Group      string // "main", "dev" or the group name

	Extras   []string
	Markers  string
	Python   string
	Platform string
	Optional bool
	Source   Source
}

// IsInterpreter reports whether d is the python version constraint.
func (d Dependency) IsInterpreter() bool { return d.Kind == KindInterpreter }

// Requirement renders d as a PEP 508 requirement string. Relative path
// sources are resolved against projectDir. widened reports that a Poetry
// union had to be approximated by a single range.
func (d Dependency) Requirement(projectDir string) (req string, widened bool, err error) {
	var b strings.Builder
	b.WriteString(d.Name)
	if len(d.Extras) > 0 {
		b.WriteString("[" + strings.Join(d.Extras, ",") + "]")
	}

	direct := true
	switch s := d.Source; {
	case s.Git != "":
		b.WriteString(" @ " + gitURL(s))
	case s.URL != "":
		b.WriteString(" @ " + s.URL)
	case s.Path != "":
		b.WriteString(" @ " + fileURL(projectDir, s.Path))
	default:
		direct = false
		spec, w, err := constraint.Specifier(d.Constraint)
		if err != nil {
			return "", false, fmt.Errorf("dependency %q: %w", d.Name, err)
		}
		b.WriteString(spec)
		widened = w
	}

	markers, err := d.markers()
	if err != nil {
		return "", false, fmt.Errorf("dependency %q: %w", d.Name, err)
	}
	if markers != "" {
		if direct {
			b.WriteString(" ")
		}
		b.WriteString("; " + markers)
	}
	return b.String(), widened, nil
}

func (d Dependency) markers() (string, error) {
	var parts []string
	if d.Markers != "" {
		parts = append(parts, d.Markers)
	}
	if d.Python != "" {
		m, err := constraint.Markers("python_version", d.Python)
		if err != nil {
			return "", err
		}
		if m != "" {
			parts = append(parts, m)
		}
	}
	if d.Platform != "" {
		parts = append(parts, fmt.Sprintf("sys_platform == %q", d.Platform))
	}
	if len(parts) > 1 {
		for i, p := range parts {
			if strings.Contains(p, " or ") {
				parts[i] = "(" + p + ")"
			}
		}
	}
	return strings.Join(parts, " and "), nil
}

func gitURL(s Source) string {
	u := s.Git
	if !strings.HasPrefix(u, "git+") {
		u = "git+" + u
	}
	for _, ref := range []string{s.Rev, s.Tag, s.Branch} {
		if ref != "" {
			u += "@" + ref
			break
		}
	}
	if s.Subdirectory != "" {
		u += "#subdirectory=" + s.Subdirectory
	}
	return u
}

func fileURL(projectDir, path string) string {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(filepath.Join(projectDir, path))
		if err == nil {
			path = abs
		}
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// readDependencies collects main, legacy dev and group dependencies in
// declaration order.
func readDependencies(poetry *Table) ([]Dependency, error) {
	var deps []Dependency
	add := func(t *Table, group string, dev bool) error {
		d, err := parseGroup(t, group, dev)
		if err != nil {
			return err
		}
		deps = append(deps, d...)
		return nil
	}

	if t, ok := poetry.Table("dependencies"); ok {
		if err := add(t, "main", false); err != nil {
			return nil, err
		}
	}
	if t, ok := poetry.Table("dev-dependencies"); ok {
		if err := add(t, "dev", true); err != nil {
			return nil, err
		}
	}
	if groups, ok := poetry.Table("group"); ok {
		for _, name := range groups.Keys() {
			g, ok := groups.Table(name)
			if !ok {
				continue
			}
			t, ok := g.Table("dependencies")
			if !ok {
				continue
			}
			if err := add(t, name, true); err != nil {
				return nil, err
			}
		}
	}
	return deps, nil
}

func parseGroup(t *Table, group string, dev bool) ([]Dependency, error) {
	var out []Dependency
	for _, name := range t.Keys() {
		v, _ := t.Get(name)
		// Only the main table constrains the interpreter; in a dev group the
		// key is kept as an ordinary requirement.
		if !dev && strings.EqualFold(name, "python") {
			expr, ok := v.(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidDependency, "python constraint must be a string, got %T", v)
			}
			out = append(out, Dependency{Name: name, Constraint: expr, Kind: KindInterpreter, Group: group})
			continue
		}

		specs, err := parseSpecs(name, v)
		if err != nil {
			return nil, err
		}
		for _, d := range specs {
			d.Dev = dev
			d.Group = group
			out = append(out, d)
		}
	}
	return out, nil
}

// parseSpecs handles the three shapes Poetry allows for a dependency value:
// a version string, a table, or an array of tables (multiple constraints).
func parseSpecs(name string, v any) ([]Dependency, error) {
	switch v := v.(type) {
	case string:
		return []Dependency{{Name: name, Constraint: v}}, nil
	case *Table:
		return []Dependency{specFromTable(name, v)}, nil
	case []any:
		out := make([]Dependency, 0, len(v))
		for _, e := range v {
			t, ok := e.(*Table)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidDependency, "dependency %q: multiple constraints must be tables", name)
			}
			out = append(out, specFromTable(name, t))
		}
		return out, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidDependency, "dependency %q: unsupported value of type %T", name, v)
	}
}

func specFromTable(name string, t *Table) Dependency {
	str := func(k string) string {
		s, _ := t.GetString(k)
		return s
	}
	d := Dependency{
		Name:       name,
		Constraint: str("version"),
		Extras:     stringList(t, "extras"),
		Markers:    str("markers"),
		Python:     str("python"),
		Platform:   str("platform"),
		Source: Source{
			Git:          str("git"),
			Branch:       str("branch"),
			Tag:          str("tag"),
			Rev:          str("rev"),
			Subdirectory: str("subdirectory"),
			URL:          str("url"),
			Path:         str("path"),
		},
	}
	if opt, ok := t.Get("optional"); ok {
		d.Optional, _ = opt.(bool)
	}
	return d
}

func stringList(t *Table, key string) []string {
	v, ok := t.Get(key)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
