package pyproject

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/matzehuels/poetry2rye/pkg/errors"
)

// File and directory names of a Poetry project.
const (
	MetadataFile = "pyproject.toml"
	LockFile     = "poetry.lock"
	SourceDir    = "src"
)

// PackageInclude is one entry of [tool.poetry] packages.
type PackageInclude struct {
	Include string `toml:"include"`
	From    string `toml:"from"`
}

// Path returns the include path relative to the project root.
func (p PackageInclude) Path() string {
	if p.From == "" {
		return p.Include
	}
	return filepath.ToSlash(filepath.Join(p.From, p.Include))
}

// Link is a labelled project URL.
type Link struct {
	Label string
	URL   string
}

// Project is the read-only view of a Poetry project.
type Project struct {
	Dir string

	Name          string
	Version       string
	Description   string
	Authors       []Person
	Maintainers   []Person
	Readme        string
	Homepage      string
	Repository    string
	Documentation string
	URLs          []Link
	Keywords      []string
	Classifiers   []string
	Scripts       []Script
	Plugins       *Table // group -> name -> "module:attr"
	Packages      []PackageInclude
	Dependencies  []Dependency

	ModuleName string
	ModulePath string // empty when the module could not be located

	// Document is the complete original pyproject.toml.
	Document *Table
}

// poetrySection holds the scalar fields of [tool.poetry]. Ordered parts
// (dependencies, scripts, urls, plugins) are read from the Table instead.
type poetrySection struct {
	Name          string           `toml:"name"`
	Version       string           `toml:"version"`
	Description   string           `toml:"description"`
	Authors       []string         `toml:"authors"`
	Maintainers   []string         `toml:"maintainers"`
	Readme        any              `toml:"readme"`
	Homepage      string           `toml:"homepage"`
	Repository    string           `toml:"repository"`
	Documentation string           `toml:"documentation"`
	Keywords      []string         `toml:"keywords"`
	Classifiers   []string         `toml:"classifiers"`
	Packages      []PackageInclude `toml:"packages"`
}

// Load reads <dir>/pyproject.toml and resolves the module directory. Project.Dir
// is absolute with a symlinked root already followed (see [ResolveDir]).
//
// With ensureSrc the module must exist, either under src/ or at the top level;
// without it a missing module leaves ModulePath empty.
func Load(fsys afero.Fs, dir string, ensureSrc bool) (*Project, error) {
	dir, err := ResolveDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, MetadataFile)

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found in %s", MetadataFile, dir)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	poetry, ok := poetryTable(doc)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "%s has no [tool.poetry] section", path)
	}

	var file struct {
		Tool struct {
			Poetry poetrySection `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse [tool.poetry] in %s", path)
	}
	sec := file.Tool.Poetry

	for _, f := range []struct{ key, val string }{
		{"name", sec.Name},
		{"version", sec.Version},
		{"description", sec.Description},
	} {
		if f.val == "" {
			return nil, errors.New(errors.ErrCodeMissingField, "missing required field %q in [tool.poetry]", f.key)
		}
	}
	if err := errors.ValidatePythonPackageName(sec.Name); err != nil {
		return nil, err
	}

	p := &Project{
		Dir:           dir,
		Name:          sec.Name,
		Version:       sec.Version,
		Description:   sec.Description,
		Authors:       parsePeople(sec.Authors),
		Maintainers:   parsePeople(sec.Maintainers),
		Readme:        readme(sec.Readme),
		Homepage:      sec.Homepage,
		Repository:    sec.Repository,
		Documentation: sec.Documentation,
		Keywords:      sec.Keywords,
		Classifiers:   sec.Classifiers,
		Packages:      sec.Packages,
		Document:      doc,
	}

	if p.Scripts, err = readScripts(poetry); err != nil {
		return nil, err
	}
	if p.Dependencies, err = readDependencies(poetry); err != nil {
		return nil, err
	}
	p.URLs = readLinks(poetry)
	if plugins, ok := poetry.Table("plugins"); ok {
		p.Plugins = plugins.Clone()
	}

	if err := p.resolveModule(fsys, ensureSrc); err != nil {
		return nil, err
	}
	return p, nil
}

// ResolveDir makes path absolute and, when the last element is a symlink,
// follows it to the real directory. A backup taken of the result copies the
// project contents instead of the link.
func ResolveDir(fsys afero.Fs, path string) (string, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "resolve %s", path)
	}
	lst, ok := fsys.(afero.Lstater)
	if !ok {
		return dir, nil
	}
	lr, ok := fsys.(afero.LinkReader)
	if !ok {
		return dir, nil
	}

	for i := 0; i < maxLinkHops; i++ {
		info, _, err := lst.LstatIfPossible(dir)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			return dir, nil
		}
		target, err := lr.ReadlinkIfPossible(dir)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeIO, err, "read link %s", dir)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(dir), target)
		}
		dir = filepath.Clean(target)
	}
	return "", errors.New(errors.ErrCodeIO, "resolve %s: too many levels of symbolic links", path)
}

const maxLinkHops = 40

func poetryTable(doc *Table) (*Table, bool) {
	tool, ok := doc.Table("tool")
	if !ok {
		return nil, false
	}
	return tool.Table("poetry")
}

// readme accepts Poetry's string or list form; a list contributes its first
// entry since [project] readme names a single file.
func readme(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			s, _ := v[0].(string)
			return s
		}
	}
	return ""
}

func readLinks(poetry *Table) []Link {
	t, ok := poetry.Table("urls")
	if !ok {
		return nil
	}
	var out []Link
	for _, label := range t.Keys() {
		if u, ok := t.GetString(label); ok {
			out = append(out, Link{Label: label, URL: u})
		}
	}
	return out
}

var separatorRe = regexp.MustCompile(`[-_.]+`)

// ModuleName returns the import name Poetry derives from a project name:
// lower-cased, with runs of "-", "_" and "." replaced by "_".
func ModuleName(name string) string {
	return separatorRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

// NormalizeName returns the PEP 503 canonical form of a distribution name.
func NormalizeName(name string) string {
	return separatorRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func (p *Project) resolveModule(fsys afero.Fs, ensureSrc bool) error {
	p.ModuleName = ModuleName(p.Name)

	var from string
	if len(p.Packages) > 0 {
		inc := p.Packages[0]
		if err := errors.ValidatePath(inc.Include); err != nil {
			return fmt.Errorf("packages: %w", err)
		}
		if inc.From != "" {
			if err := errors.ValidatePath(inc.From); err != nil {
				return fmt.Errorf("packages: %w", err)
			}
		}
		if !strings.ContainsAny(inc.Include, "/*?[") {
			p.ModuleName = inc.Include
			from = inc.From
		}
	}

	var candidates []string
	if from != "" {
		candidates = append(candidates, filepath.Join(from, p.ModuleName))
	}
	if ensureSrc {
		candidates = append(candidates, filepath.Join(SourceDir, p.ModuleName), p.ModuleName)
	} else {
		candidates = append(candidates, p.ModuleName, filepath.Join(SourceDir, p.ModuleName))
	}

	for _, c := range candidates {
		full := filepath.Join(p.Dir, c)
		if ok, _ := afero.DirExists(fsys, full); ok {
			p.ModulePath = full
			return nil
		}
	}
	if ensureSrc {
		return errors.New(errors.ErrCodeModuleNotFound, "module %q not found in %s (looked in %s)",
			p.ModuleName, p.Dir, strings.Join(candidates, ", "))
	}
	return nil
}

// InSourceLayout reports whether the module already lives under src/.
func (p *Project) InSourceLayout() bool {
	if p.ModulePath == "" {
		return false
	}
	rel, err := filepath.Rel(p.Dir, p.ModulePath)
	return err == nil && strings.HasPrefix(filepath.ToSlash(rel), SourceDir+"/")
}
