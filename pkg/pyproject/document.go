package pyproject

import (
	"slices"
	"sort"

	"github.com/BurntSushi/toml"
)

// Lines is a string array rendered with one element per line, the way
// dependency lists are usually written by hand.
type Lines []string

// Table is an insertion-ordered TOML table.
//
// Values are kept as decoded: string, int64, float64, bool, time.Time,
// []any, *Table, plus the writer-only types [Lines] and []Person. Sections
// the converter does not understand pass through untouched.
type Table struct {
	keys   []string
	values map[string]any
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]any)}
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string { return slices.Clone(t.keys) }

// Len returns the number of keys.
func (t *Table) Len() int { return len(t.keys) }

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Get returns the value stored under key.
func (t *Table) Get(key string) (any, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Table returns the sub-table stored under key.
func (t *Table) Table(key string) (*Table, bool) {
	sub, ok := t.values[key].(*Table)
	return sub, ok
}

// GetString returns the string stored under key.
func (t *Table) GetString(key string) (string, bool) {
	s, ok := t.values[key].(string)
	return s, ok
}

// Set stores v under key. An existing key keeps its position.
func (t *Table) Set(key string, v any) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

// Delete removes key and reports whether it was present.
func (t *Table) Delete(key string) bool {
	if _, ok := t.values[key]; !ok {
		return false
	}
	delete(t.values, key)
	t.keys = slices.DeleteFunc(t.keys, func(k string) bool { return k == key })
	return true
}

// Ensure walks path from t, creating missing tables, and returns the last
// one. A non-table value in the way is replaced.
func (t *Table) Ensure(path ...string) *Table {
	cur := t
	for _, k := range path {
		next, ok := cur.Table(k)
		if !ok {
			next = NewTable()
			cur.Set(k, next)
		}
		cur = next
	}
	return cur
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{keys: slices.Clone(t.keys), values: make(map[string]any, len(t.values))}
	for k, v := range t.values {
		c.values[k] = CloneValue(v)
	}
	return c
}

// CloneValue deep-copies a document value.
func CloneValue(v any) any {
	switch v := v.(type) {
	case *Table:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = CloneValue(e)
		}
		return out
	case Lines:
		return slices.Clone(v)
	case []Person:
		return slices.Clone(v)
	case []string:
		return slices.Clone(v)
	default:
		return v
	}
}

// Parse decodes a TOML document into a Table, keeping the key order of every
// table as written in data.
func Parse(data []byte) (*Table, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	root := NewTable()
	for _, key := range md.Keys() {
		root.insert(key, raw)
	}
	root.fill(raw)
	return root, nil
}

// insert places the value at path, creating intermediate tables in the order
// they are first seen.
func (t *Table) insert(path toml.Key, raw map[string]any) {
	cur, m := t, raw
	for _, k := range path {
		v, ok := m[k]
		if !ok {
			return
		}
		sub, isMap := v.(map[string]any)
		if !isMap {
			if !cur.Has(k) {
				cur.Set(k, fromRaw(v))
			}
			return
		}
		next, ok := cur.Table(k)
		if !ok {
			next = NewTable()
			cur.Set(k, next)
		}
		cur, m = next, sub
	}
}

// fill adds any decoded key the metadata did not report, sorted.
func (t *Table) fill(raw map[string]any) {
	for _, k := range sortedKeys(raw) {
		v := raw[k]
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := t.Table(k); ok {
				existing.fill(sub)
				continue
			}
		}
		if !t.Has(k) {
			t.Set(k, fromRaw(v))
		}
	}
}

func fromRaw(v any) any {
	switch v := v.(type) {
	case map[string]any:
		t := NewTable()
		for _, k := range sortedKeys(v) {
			t.Set(k, fromRaw(v[k]))
		}
		return t
	case []map[string]any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = fromRaw(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = fromRaw(e)
		}
		return out
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
