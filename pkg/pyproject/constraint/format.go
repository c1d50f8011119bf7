package constraint

import (
	"fmt"
	"strings"

	"github.com/matzehuels/poetry2rye/pkg/errors"
)

// pythonMinors lists the interpreter releases considered when a union has to
// be flattened into a single requires-python specifier.
var pythonMinors = []string{
	"2.7",
	"3.0", "3.1", "3.2", "3.3", "3.4", "3.5", "3.6", "3.7",
	"3.8", "3.9", "3.10", "3.11", "3.12", "3.13", "3.14",
}

// FormatPython converts Poetry's python constraint into a requires-python
// value.
//
// A bare version is widened by its precision: "3.8.1" stays exact, "3.8"
// means "~3.8" and "3" means "^3.0". A union cannot be expressed in PEP 440,
// so it becomes a lower bound plus an exclusion for every interpreter minor
// between accepted ones:
//
//	FormatPython("^3.8")          // ">=3.8,<4.0"
//	FormatPython("^2.7 || ^3.5")  // ">=2.7, !=3.0.*, !=3.1.*, !=3.2.*, !=3.3.*, !=3.4.*"
func FormatPython(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	switch p := precision(expr); {
	case p >= 3:
		return "==" + expr, nil
	case p == 2:
		expr = "~" + expr
	case p == 1:
		expr = "^" + expr + ".0"
	}

	c, err := Parse(expr)
	if err != nil {
		return "", err
	}
	if c.Any() {
		return "", nil
	}
	if len(c) == 1 {
		return c[0].String(), nil
	}

	ivs := c.intervals()
	var accepted, excluded []string
	for _, minor := range pythonMinors {
		if allowsAny(ivs, minorInterval(minor)) {
			accepted = append(accepted, minor)
		} else if len(accepted) > 0 {
			excluded = append(excluded, minor)
		}
	}
	if len(accepted) == 0 {
		return "", errors.New(errors.ErrCodeInvalidConstraint, "python constraint %q allows no known interpreter", expr)
	}

	parts := []string{">=" + accepted[0]}
	for _, m := range excluded {
		parts = append(parts, "!="+m+".*")
	}
	return strings.Join(parts, ", "), nil
}

// Specifier converts a Poetry package constraint into a PEP 440 version
// specifier. An empty string means any version. Unions are widened to the
// smallest single range that contains every alternative; widened reports
// whether that happened.
func Specifier(expr string) (spec string, widened bool, err error) {
	c, err := Parse(expr)
	if err != nil {
		return "", false, err
	}
	if c.Any() {
		return "", false, nil
	}
	if len(c) == 1 {
		return c[0].String(), false, nil
	}

	h := hull(c.intervals())
	var parts []string
	if h.lo.v != nil {
		op := ">"
		if h.lo.incl {
			op = ">="
		}
		parts = append(parts, op+h.lo.raw)
	}
	if h.hi.v != nil {
		op := "<"
		if h.hi.incl {
			op = "<="
		}
		parts = append(parts, op+h.hi.raw)
	}
	return strings.Join(parts, ","), true, nil
}

// Markers renders a constraint as a PEP 508 environment marker over the given
// variable, e.g. Markers("python_version", "^3.8") returns
// `python_version >= "3.8" and python_version < "4.0"`.
func Markers(variable, expr string) (string, error) {
	c, err := Parse(expr)
	if err != nil {
		return "", err
	}
	if c.Any() {
		return "", nil
	}

	alts := make([]string, len(c))
	for i, r := range c {
		terms := make([]string, len(r))
		for j, cl := range r {
			terms[j] = fmt.Sprintf("%s %s %q", variable, cl.Op, cl.Version)
		}
		alts[i] = strings.Join(terms, " and ")
		if len(c) > 1 && len(r) > 1 {
			alts[i] = "(" + alts[i] + ")"
		}
	}
	return strings.Join(alts, " or "), nil
}
