package constraint

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// bound is one end of an interval. A nil version means unbounded.
type bound struct {
	v    *semver.Version
	raw  string
	incl bool
}

type interval struct {
	lo, hi bound
}

func newBound(raw string, incl bool) bound {
	p := release(raw)
	var parts [3]uint64
	for i := 0; i < len(p) && i < 3; i++ {
		parts[i] = uint64(p[i])
	}
	return bound{v: semver.New(parts[0], parts[1], parts[2], "", ""), raw: raw, incl: incl}
}

// intervals converts every range of c into the set of versions it admits.
// Exclusions ("!=") are ignored, so the result over-approximates.
func (c Constraint) intervals() []interval {
	out := make([]interval, 0, len(c))
	for _, r := range c {
		iv := interval{}
		for _, cl := range r {
			iv = iv.intersect(clauseInterval(cl))
		}
		out = append(out, iv)
	}
	return out
}

func clauseInterval(c Clause) interval {
	v := strings.TrimSuffix(c.Version, ".*")
	switch c.Op {
	case ">=":
		return interval{lo: newBound(v, true)}
	case ">":
		return interval{lo: newBound(v, false)}
	case "<=":
		return interval{hi: newBound(v, true)}
	case "<":
		return interval{hi: newBound(v, false)}
	case "==":
		if c.Wildcard() {
			p := release(v)
			return interval{lo: newBound(v, true), hi: newBound(bump(p, len(p)-1), false)}
		}
		return interval{lo: newBound(v, true), hi: newBound(v, true)}
	case "~=":
		p := release(v)
		idx := len(p) - 2
		if idx < 0 {
			idx = 0
		}
		return interval{lo: newBound(v, true), hi: newBound(bump(p, idx), false)}
	}
	return interval{}
}

// minorInterval returns [X.Y.0, X.(Y+1).0).
func minorInterval(minor string) interval {
	return clauseInterval(Clause{Op: "==", Version: minor + ".*"})
}

func (a interval) intersect(b interval) interval {
	return interval{lo: maxLower(a.lo, b.lo), hi: minUpper(a.hi, b.hi)}
}

func (a interval) empty() bool {
	if a.lo.v == nil || a.hi.v == nil {
		return false
	}
	switch cmp := a.lo.v.Compare(a.hi.v); {
	case cmp > 0:
		return true
	case cmp == 0:
		return !(a.lo.incl && a.hi.incl)
	}
	return false
}

func maxLower(a, b bound) bound {
	switch {
	case a.v == nil:
		return b
	case b.v == nil:
		return a
	}
	switch cmp := a.v.Compare(b.v); {
	case cmp > 0:
		return a
	case cmp < 0:
		return b
	}
	if !a.incl {
		return a
	}
	return b
}

func minUpper(a, b bound) bound {
	switch {
	case a.v == nil:
		return b
	case b.v == nil:
		return a
	}
	switch cmp := a.v.Compare(b.v); {
	case cmp < 0:
		return a
	case cmp > 0:
		return b
	}
	if !a.incl {
		return a
	}
	return b
}

func allowsAny(ivs []interval, target interval) bool {
	for _, iv := range ivs {
		if !iv.intersect(target).empty() {
			return true
		}
	}
	return false
}

// hull returns the smallest interval containing every interval in ivs.
func hull(ivs []interval) interval {
	if len(ivs) == 0 {
		return interval{}
	}
	h := ivs[0]
	for _, iv := range ivs[1:] {
		h.lo = minLower(h.lo, iv.lo)
		h.hi = maxUpper(h.hi, iv.hi)
	}
	return h
}

func minLower(a, b bound) bound {
	if a.v == nil || b.v == nil {
		return bound{}
	}
	switch cmp := a.v.Compare(b.v); {
	case cmp < 0:
		return a
	case cmp > 0:
		return b
	}
	if a.incl {
		return a
	}
	return b
}

func maxUpper(a, b bound) bound {
	if a.v == nil || b.v == nil {
		return bound{}
	}
	switch cmp := a.v.Compare(b.v); {
	case cmp > 0:
		return a
	case cmp < 0:
		return b
	}
	if a.incl {
		return a
	}
	return b
}
