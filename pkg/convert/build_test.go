package convert

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/matzehuels/poetry2rye/pkg/pyproject"
)

const poetryProject = `[tool.poetry]
name = "demo-app"
version = "0.3.0"
description = "Demo"
authors = ["Jane Doe <jane@example.com>"]
readme = "README.md"
homepage = "https://example.com"
repository = "https://github.com/acme/demo"
keywords = ["demo"]
packages = [{ include = "demo_app" }]

[tool.poetry.urls]
Changelog = "https://example.com/changes"

[tool.poetry.scripts]
demo = "demo_app.cli:main"
demo-admin = { callable = "demo_app.admin:main" }

[tool.poetry.plugins."demo.backends"]
local = "demo_app.backends:Local"

[tool.poetry.dependencies]
python = "^3.10"
requests = "^2.31"
rich = { version = "^13.0", optional = true }

[tool.poetry.group.dev.dependencies]
pytest = "^8.0"

[tool.poetry.group.lint.dependencies]
ruff = ">=0.4"

[tool.black]
line-length = 100

[tool.hatch.envs.default]
python = "3.12"

[[tool.mypy.overrides]]
module = "vendor.*"
ignore_missing_imports = true

[build-system]
requires = ["poetry-core>=1.0"]
build-backend = "poetry.core.masonry.api"
`

func loadMem(t *testing.T, manifest string, dirs ...string) *pyproject.Project {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/proj/pyproject.toml", []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, d := range dirs {
		if err := fsys.MkdirAll(filepath.Join("/proj", d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	p, err := pyproject.Load(fsys, "/proj", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return p
}

// decode renders doc and decodes it back, so assertions run against what
// would be written to disk.
func decode(t *testing.T, doc *pyproject.Table) map[string]any {
	t.Helper()
	out, err := pyproject.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if _, err := toml.Decode(string(out), &m); err != nil {
		t.Fatalf("output is not valid TOML: %v\n%s", err, out)
	}
	return m
}

func lookup(t *testing.T, m map[string]any, path ...string) any {
	t.Helper()
	var cur any = m
	for _, k := range path {
		tbl, ok := cur.(map[string]any)
		if !ok {
			t.Fatalf("%v: %q is not a table", path, k)
		}
		if cur, ok = tbl[k]; !ok {
			return nil
		}
	}
	return cur
}

func TestBuildProjectSection(t *testing.T) {
	p := loadMem(t, poetryProject, "demo_app")
	doc, err := Build(context.Background(), p, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := decode(t, doc)

	checks := []struct {
		path []string
		want any
	}{
		{[]string{"project", "name"}, "demo-app"},
		{[]string{"project", "version"}, "0.3.0"},
		{[]string{"project", "description"}, "Demo"},
		{[]string{"project", "readme"}, "README.md"},
		{[]string{"project", "requires-python"}, ">=3.10,<4.0"},
		{[]string{"project", "keywords"}, []any{"demo"}},
		{[]string{"project", "authors"}, []any{map[string]any{"name": "Jane Doe", "email": "jane@example.com"}}},
		{[]string{"project", "dependencies"}, []any{"requests>=2.31,<3.0", "rich>=13.0,<14.0"}},
		{[]string{"project", "scripts"}, map[string]any{"demo": "demo_app.cli:main", "demo-admin": "demo_app.admin:main"}},
		{[]string{"project", "urls"}, map[string]any{
			"Homepage":   "https://example.com",
			"Repository": "https://github.com/acme/demo",
			"Changelog":  "https://example.com/changes",
		}},
		{[]string{"project", "entry-points", "demo.backends", "local"}, "demo_app.backends:Local"},
		{[]string{"project", "license"}, nil},
		{[]string{"tool", "rye", "managed"}, true},
		{[]string{"tool", "rye", "virtual"}, false},
		{[]string{"tool", "rye", "dev-dependencies"}, []any{"pytest>=8.0,<9.0", "ruff>=0.4"}},
		{[]string{"tool", "poetry"}, nil},
		{[]string{"tool", "black", "line-length"}, int64(100)},
	}
	for _, c := range checks {
		if diff := cmp.Diff(c.want, lookup(t, m, c.path...)); diff != "" {
			t.Errorf("%v (-want +got):\n%s", c.path, diff)
		}
	}
}

func TestBuildKeepsOrder(t *testing.T) {
	p := loadMem(t, poetryProject, "demo_app")
	doc, err := Build(context.Background(), p, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if diff := cmp.Diff([]string{"project", "tool", "build-system"}, doc.Keys()); diff != "" {
		t.Errorf("top-level order (-want +got):\n%s", diff)
	}
	tool, _ := doc.Table("tool")
	if diff := cmp.Diff([]string{"rye", "black", "hatch", "mypy"}, tool.Keys()); diff != "" {
		t.Errorf("tool order (-want +got):\n%s", diff)
	}

	// The original document must not be modified.
	orig, _ := p.Document.Table("tool")
	if !orig.Has("poetry") {
		t.Error("Build removed [tool.poetry] from the source document")
	}
}

func TestBuildHatch(t *testing.T) {
	p := loadMem(t, poetryProject, "demo_app")

	tests := []struct {
		name      string
		opts      BuildOptions
		wantPkgs  any
		wantHatch bool
	}{
		{"flat", BuildOptions{}, []any{"demo_app"}, true},
		{"src", BuildOptions{EnsureSrc: true}, []any{"src/demo_app"}, true},
		{"virtual", BuildOptions{Virtual: true}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Build(context.Background(), p, tt.opts)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			m := decode(t, doc)

			if diff := cmp.Diff(tt.wantPkgs, lookup(t, m, "tool", "hatch", "build", "targets", "wheel", "packages")); diff != "" {
				t.Errorf("wheel packages (-want +got):\n%s", diff)
			}
			got, _ := lookup(t, m, "tool", "hatch", "metadata", "allow-direct-references").(bool)
			if got != tt.wantHatch {
				t.Errorf("allow-direct-references = %v, want %v", got, tt.wantHatch)
			}
			// Existing hatch settings survive.
			if env := lookup(t, m, "tool", "hatch", "envs", "default", "python"); env != "3.12" {
				t.Errorf("tool.hatch.envs.default.python = %v, want 3.12", env)
			}
		})
	}
}

func TestBuildPackagesFrom(t *testing.T) {
	manifest := `[tool.poetry]
name = "demo"
version = "1.0"
description = "d"
packages = [{ include = "core", from = "lib" }, { include = "extra" }, { format = "sdist" }]
`
	p := loadMem(t, manifest, "lib/core")
	doc, err := Build(context.Background(), p, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := lookup(t, decode(t, doc), "tool", "hatch", "build", "targets", "wheel", "packages")
	if diff := cmp.Diff([]any{"lib/core", "extra"}, got); diff != "" {
		t.Errorf("wheel packages (-want +got):\n%s", diff)
	}
}

func TestBuildSystem(t *testing.T) {
	const base = "[tool.poetry]\nname = \"demo\"\nversion = \"1.0\"\ndescription = \"d\"\n"

	tests := []struct {
		name    string
		section string
		virtual bool
		want    any
	}{
		{
			name:    "poetry-core replaced",
			section: "[build-system]\nrequires = [\"poetry-core>=1.0\"]\nbuild-backend = \"poetry.core.masonry.api\"\n",
			want:    map[string]any{"requires": []any{"hatchling"}, "build-backend": "hatchling.build"},
		},
		{
			name:    "legacy poetry and extras kept",
			section: "[build-system]\nrequires = [\"poetry>=0.12\", \"setuptools\", \"cython\"]\nbuild-backend = \"poetry.masonry.api\"\n",
			want:    map[string]any{"requires": []any{"setuptools", "cython", "hatchling"}, "build-backend": "hatchling.build"},
		},
		{
			name:    "hatchling already present",
			section: "[build-system]\nrequires = [\"hatchling>=1.18\", \"poetry-core\"]\nbuild-backend = \"poetry.core.masonry.api\"\n",
			want:    map[string]any{"requires": []any{"hatchling>=1.18"}, "build-backend": "hatchling.build"},
		},
		{
			name:    "missing section created",
			section: "",
			want:    map[string]any{"requires": []any{"hatchling"}, "build-backend": "hatchling.build"},
		},
		{
			name:    "virtual drops section",
			section: "[build-system]\nrequires = [\"poetry-core>=1.0\"]\nbuild-backend = \"poetry.core.masonry.api\"\n",
			virtual: true,
			want:    nil,
		},
		{
			name:    "virtual without section",
			section: "",
			virtual: true,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := loadMem(t, base+tt.section)
			doc, err := Build(context.Background(), p, BuildOptions{Virtual: tt.virtual})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if diff := cmp.Diff(tt.want, lookup(t, decode(t, doc), "build-system")); diff != "" {
				t.Errorf("build-system (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildDependencyPartition(t *testing.T) {
	p := loadMem(t, poetryProject, "demo_app")
	doc, err := Build(context.Background(), p, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := decode(t, doc)

	seen := map[string]int{}
	if lookup(t, m, "project", "requires-python") != nil {
		seen["python"]++
	}
	for _, path := range [][]string{{"project", "dependencies"}, {"tool", "rye", "dev-dependencies"}} {
		list, _ := lookup(t, m, path...).([]any)
		for _, r := range list {
			req := r.(string)
			seen[pyproject.NormalizeName(requirementName(req))]++
		}
	}

	want := map[string]int{}
	for _, d := range p.Dependencies {
		want[pyproject.NormalizeName(d.Name)]++
	}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("dependency set changed (-want +got):\n%s", diff)
	}
}

func TestBuildEmptyDependencies(t *testing.T) {
	p := loadMem(t, "[tool.poetry]\nname = \"demo\"\nversion = \"1.0\"\ndescription = \"d\"\n")
	doc, err := Build(context.Background(), p, BuildOptions{Virtual: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := decode(t, doc)
	if diff := cmp.Diff([]any{}, lookup(t, m, "project", "dependencies")); diff != "" {
		t.Errorf("dependencies (-want +got):\n%s", diff)
	}
	if got := lookup(t, m, "tool", "rye", "dev-dependencies"); got != nil {
		t.Errorf("dev-dependencies = %v, want absent", got)
	}
	if got := lookup(t, m, "project", "requires-python"); got != nil {
		t.Errorf("requires-python = %v, want absent", got)
	}
}

func TestRequirementName(t *testing.T) {
	tests := map[string]string{
		"poetry-core>=1.0":      "poetry-core",
		"Poetry_Core":           "poetry-core",
		"hatchling":             "hatchling",
		"hatch-vcs ; python>3":  "hatch-vcs",
		"setuptools[toml]>=61":  "setuptools",
		"pkg @ https://x/y.whl": "pkg",
	}
	for in, want := range tests {
		if got := requirementName(in); got != want {
			t.Errorf("requirementName(%q) = %q, want %q", in, got, want)
		}
	}
}
