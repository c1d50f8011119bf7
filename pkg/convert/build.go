package convert

import (
	"context"
	"path"
	"slices"
	"strings"

	"github.com/matzehuels/poetry2rye/pkg/observability"
	"github.com/matzehuels/poetry2rye/pkg/pyproject"
	"github.com/matzehuels/poetry2rye/pkg/pyproject/constraint"
)

// Build backend written for non-virtual projects.
const (
	BackendPackage = "hatchling"
	BackendModule  = "hatchling.build"
)

// BuildOptions selects the target layout.
type BuildOptions struct {
	EnsureSrc bool
	Virtual   bool
}

// Build returns the converted document for p. The original document is not
// modified.
func Build(ctx context.Context, p *pyproject.Project, opts BuildOptions) (*pyproject.Table, error) {
	project, devDeps, err := projectSection(ctx, p)
	if err != nil {
		return nil, err
	}

	out := pyproject.NewTable()
	out.Set("project", project)

	orig := p.Document
	for _, key := range orig.Keys() {
		switch key {
		case "project":
		case "tool":
			out.Set("tool", toolSection(orig, devDeps, opts.Virtual))
		case "build-system":
			if !opts.Virtual {
				bs, _ := orig.Table("build-system")
				out.Set("build-system", buildSystem(bs))
			}
		default:
			v, _ := orig.Get(key)
			out.Set(key, pyproject.CloneValue(v))
		}
	}
	if !opts.Virtual && !out.Has("build-system") {
		out.Set("build-system", buildSystem(nil))
	}

	if !opts.Virtual {
		hatch := out.Ensure("tool", "hatch")
		hatch.Ensure("metadata").Set("allow-direct-references", true)
		hatch.Ensure("build", "targets", "wheel").Set("packages", wheelPackages(p, opts.EnsureSrc))
	}
	return out, nil
}

// projectSection maps [tool.poetry] onto [project] and returns the
// development requirements separately.
func projectSection(ctx context.Context, p *pyproject.Project) (*pyproject.Table, pyproject.Lines, error) {
	t := pyproject.NewTable()
	t.Set("name", p.Name)
	t.Set("version", p.Version)
	t.Set("description", p.Description)
	if len(p.Authors) > 0 {
		t.Set("authors", p.Authors)
	}
	if len(p.Maintainers) > 0 {
		t.Set("maintainers", p.Maintainers)
	}
	if p.Readme != "" {
		t.Set("readme", p.Readme)
	}

	runtime := pyproject.Lines{}
	var dev pyproject.Lines
	for _, d := range p.Dependencies {
		if d.IsInterpreter() {
			rp, err := constraint.FormatPython(d.Constraint)
			if err != nil {
				return nil, nil, err
			}
			if rp != "" {
				t.Set("requires-python", rp)
			}
			continue
		}
		req, widened, err := d.Requirement(p.Dir)
		if err != nil {
			return nil, nil, err
		}
		if widened {
			observability.Convert().OnConstraintWidened(ctx, d.Name, d.Constraint, req)
		}
		if d.Dev {
			dev = append(dev, req)
		} else {
			runtime = append(runtime, req)
		}
	}

	if len(p.Keywords) > 0 {
		t.Set("keywords", slices.Clone(p.Keywords))
	}
	if len(p.Classifiers) > 0 {
		t.Set("classifiers", slices.Clone(p.Classifiers))
	}
	t.Set("dependencies", runtime)

	if len(p.Scripts) > 0 {
		scripts := t.Ensure("scripts")
		for _, s := range p.Scripts {
			scripts.Set(s.Name, s.Target())
		}
	}

	urls := pyproject.NewTable()
	for _, u := range []pyproject.Link{
		{Label: "Homepage", URL: p.Homepage},
		{Label: "Repository", URL: p.Repository},
		{Label: "Documentation", URL: p.Documentation},
	} {
		if u.URL != "" {
			urls.Set(u.Label, u.URL)
		}
	}
	for _, u := range p.URLs {
		urls.Set(u.Label, u.URL)
	}
	if urls.Len() > 0 {
		t.Set("urls", urls)
	}

	if p.Plugins != nil && p.Plugins.Len() > 0 {
		t.Set("entry-points", p.Plugins.Clone())
	}
	return t, dev, nil
}

// toolSection puts [tool.rye] first and copies every other tool table except
// poetry in its original position.
func toolSection(orig *pyproject.Table, devDeps pyproject.Lines, virtual bool) *pyproject.Table {
	tool := pyproject.NewTable()
	rye := tool.Ensure("rye")
	rye.Set("managed", true)
	rye.Set("virtual", virtual)
	if len(devDeps) > 0 {
		rye.Set("dev-dependencies", devDeps)
	}

	src, ok := orig.Table("tool")
	if !ok {
		return tool
	}
	for _, key := range src.Keys() {
		if key == "poetry" || key == "rye" {
			continue
		}
		v, _ := src.Get(key)
		tool.Set(key, pyproject.CloneValue(v))
	}
	if existing, ok := src.Table("rye"); ok {
		for _, key := range existing.Keys() {
			if !rye.Has(key) {
				v, _ := existing.Get(key)
				rye.Set(key, pyproject.CloneValue(v))
			}
		}
	}
	return tool
}

// buildSystem drops poetry build requirements and switches the backend to
// hatchling. bs may be nil.
func buildSystem(bs *pyproject.Table) *pyproject.Table {
	out := pyproject.NewTable()
	if bs != nil {
		out = bs.Clone()
	}

	var requires []any
	if v, ok := out.Get("requires"); ok {
		if arr, ok := v.([]any); ok {
			requires = arr
		}
	}
	kept := make([]any, 0, len(requires)+1)
	hasBackend := false
	for _, r := range requires {
		s, ok := r.(string)
		if ok && isPoetryRequirement(s) {
			continue
		}
		if ok && requirementName(s) == BackendPackage {
			hasBackend = true
		}
		kept = append(kept, r)
	}
	if !hasBackend {
		kept = append(kept, BackendPackage)
	}
	out.Set("requires", kept)
	out.Set("build-backend", BackendModule)
	return out
}

func isPoetryRequirement(req string) bool {
	if strings.Contains(req, "poetry-core") {
		return true
	}
	name := requirementName(req)
	return name == "poetry" || name == "poetry-core"
}

// requirementName returns the normalized distribution name of a PEP 508
// requirement.
func requirementName(req string) string {
	end := strings.IndexAny(req, " ;[<>=!~@(")
	if end < 0 {
		end = len(req)
	}
	return pyproject.NormalizeName(req[:end])
}

func wheelPackages(p *pyproject.Project, ensureSrc bool) []string {
	if ensureSrc {
		return []string{path.Join(pyproject.SourceDir, p.ModuleName)}
	}
	out := []string{}
	for _, inc := range p.Packages {
		if inc.Include != "" {
			out = append(out, inc.Path())
		}
	}
	return out
}
