package pyproject

import (
	"github.com/matzehuels/poetry2rye/pkg/errors"
)

// ScriptKind tells how a Poetry script entry was written.
type ScriptKind int

const (
	// ScriptLiteral is the plain form: cli = "pkg.mod:main".
	ScriptLiteral ScriptKind = iota
	// ScriptStructured is the table form: cli = { callable = "pkg.mod:main" }.
	ScriptStructured
)

// Script is one [tool.poetry.scripts] entry.
type Script struct {
	Name string
	Kind ScriptKind
	// Value is the literal invocation, or the callable of a structured entry
	// (empty when the table has none).
	Value string
}

// Target returns the "module:function" reference written to [project.scripts].
func (s Script) Target() string { return s.Value }

func parseScript(name string, v any) (Script, error) {
	switch v := v.(type) {
	case string:
		return Script{Name: name, Kind: ScriptLiteral, Value: v}, nil
	case *Table:
		callable, _ := v.GetString("callable")
		return Script{Name: name, Kind: ScriptStructured, Value: callable}, nil
	default:
		return Script{}, errors.New(errors.ErrCodeInvalidManifest, "script %q: unsupported value of type %T", name, v)
	}
}

func readScripts(poetry *Table) ([]Script, error) {
	t, ok := poetry.Table("scripts")
	if !ok {
		return nil, nil
	}
	out := make([]Script, 0, t.Len())
	for _, name := range t.Keys() {
		v, _ := t.Get(name)
		s, err := parseScript(name, v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
