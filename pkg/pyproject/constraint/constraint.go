package constraint

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/poetry2rye/pkg/errors"
)

// Clause is a single PEP 440 comparison such as ">=3.8" or "==3.8.*".
type Clause struct {
	Op      string
	Version string
}

// String renders the clause without whitespace.
func (c Clause) String() string { return c.Op + c.Version }

// Wildcard reports whether the clause compares against a prefix like "3.8.*".
func (c Clause) Wildcard() bool { return strings.HasSuffix(c.Version, ".*") }

// Range is a conjunction of clauses. An empty Range allows every version.
type Range []Clause

// String renders the clauses comma-separated, e.g. ">=3.8,<4.0".
func (r Range) String() string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// Constraint is a disjunction of ranges, as produced by Poetry's "||" syntax.
type Constraint []Range

// Any reports whether the constraint places no restriction at all.
func (c Constraint) Any() bool {
	if len(c) == 0 {
		return true
	}
	for _, r := range c {
		if len(r) == 0 {
			return true
		}
	}
	return false
}

var (
	versionRe   = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*(\.\*|([-_.]?[A-Za-z]+[-_.]?[0-9]*)*)$`)
	unionSplit  = regexp.MustCompile(`\s*\|\|?\s*`)
	opPrefixes  = []string{"~=", ">=", "<=", "!=", "==", "^", "~", ">", "<", "="}
	releasePart = regexp.MustCompile(`^[0-9]+`)
)

// Parse parses a Poetry version constraint.
//
// Supported forms are "*", caret ("^1.2"), tilde ("~1.2"), compatible release
// ("~=1.2"), comparisons, wildcards ("1.2.*") and bare versions. Clauses are
// joined with commas or whitespace; alternatives with "||".
func Parse(expr string) (Constraint, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "*" {
		return Constraint{nil}, nil
	}

	var out Constraint
	for _, alt := range unionSplit.Split(expr, -1) {
		r, err := parseRange(alt)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseRange(expr string) (Range, error) {
	var r Range
	for _, tok := range tokenize(expr) {
		clauses, err := parseSingle(tok)
		if err != nil {
			return nil, err
		}
		r = append(r, clauses...)
	}
	return r, nil
}

// tokenize splits "a, b c" into single constraints, gluing a lone operator
// to the version that follows it (">= 1.0").
func tokenize(expr string) []string {
	var toks []string
	for _, piece := range strings.Split(expr, ",") {
		fields := strings.Fields(piece)
		for i := 0; i < len(fields); i++ {
			f := fields[i]
			if isOperator(f) && i+1 < len(fields) {
				f += fields[i+1]
				i++
			}
			toks = append(toks, f)
		}
	}
	return toks
}

func isOperator(s string) bool {
	for _, op := range opPrefixes {
		if s == op {
			return true
		}
	}
	return false
}

func parseSingle(tok string) ([]Clause, error) {
	if tok == "*" {
		return nil, nil
	}

	op := ""
	for _, p := range opPrefixes {
		if strings.HasPrefix(tok, p) {
			op = p
			break
		}
	}
	v := strings.TrimSpace(strings.TrimPrefix(tok, op))
	if v == "*" && (op == "" || op == "==" || op == "=") {
		return nil, nil
	}
	if !versionRe.MatchString(v) {
		return nil, errors.New(errors.ErrCodeInvalidConstraint, "invalid version %q in constraint", tok)
	}
	if strings.HasSuffix(v, ".*") && op != "" && op != "==" && op != "!=" && op != "=" {
		return nil, errors.New(errors.ErrCodeInvalidConstraint, "wildcard not allowed with %q: %q", op, tok)
	}

	switch op {
	case "^":
		return []Clause{{">=", v}, {"<", caretUpper(v)}}, nil
	case "~":
		return []Clause{{">=", v}, {"<", tildeUpper(v)}}, nil
	case "", "=":
		return []Clause{{"==", v}}, nil
	default:
		return []Clause{{op, v}}, nil
	}
}

// release returns the leading numeric components of v ("1.2.3rc1" -> 1,2,3).
func release(v string) []int {
	var parts []int
	for _, p := range strings.Split(v, ".") {
		m := releasePart.FindString(p)
		if m == "" {
			break
		}
		n, _ := strconv.Atoi(m)
		parts = append(parts, n)
		if len(m) != len(p) {
			break
		}
	}
	return parts
}

// bump increments component idx of parts and zeroes the rest, keeping the
// precision of the input.
func bump(parts []int, idx int) string {
	out := make([]string, len(parts))
	for i := range parts {
		switch {
		case i < idx:
			out[i] = strconv.Itoa(parts[i])
		case i == idx:
			out[i] = strconv.Itoa(parts[i] + 1)
		default:
			out[i] = "0"
		}
	}
	return strings.Join(out, ".")
}

// caretUpper mirrors Poetry's next_breaking: the first non-zero component
// among major and minor is bumped; 0.0.x bumps the patch.
func caretUpper(v string) string {
	p := release(v)
	switch {
	case len(p) == 1 || p[0] > 0:
		return bump(p, 0)
	case len(p) == 2 || p[1] > 0:
		return bump(p, 1)
	default:
		return bump(p, 2)
	}
}

func tildeUpper(v string) string {
	p := release(v)
	if len(p) == 1 {
		return bump(p, 0)
	}
	return bump(p, 1)
}

// precision returns the number of release components of a bare version, or
// 0 when v is not a bare version.
func precision(v string) int {
	if !versionRe.MatchString(v) || strings.HasSuffix(v, ".*") {
		return 0
	}
	return len(release(v))
}
