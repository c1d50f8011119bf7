package pyproject

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	gotoml "github.com/pelletier/go-toml/v2"
)

// indent is used for the elements of multi-line arrays.
const indent = "    "

var bareKeyRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Marshal renders t as a TOML document.
//
// Within every table, plain key/value pairs come first in insertion order,
// followed by sub-tables as [a.b] sections and arrays of tables as [[a.b]]
// sections. Tables inside inline arrays are written as inline tables.
func Marshal(t *Table) ([]byte, error) {
	w := &writer{}
	if err := w.section(nil, t, false); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) section(path []string, t *Table, arrayElem bool) error {
	var kvs, tables, arrays []string
	for _, k := range t.keys {
		switch v := t.values[k]; {
		case isTable(v):
			tables = append(tables, k)
		case isTableArray(v):
			arrays = append(arrays, k)
		default:
			kvs = append(kvs, k)
		}
	}

	switch {
	case arrayElem:
		w.header("[[", path, "]]")
	case len(path) > 0 && (len(kvs) > 0 || t.Len() == 0):
		w.header("[", path, "]")
	}

	for _, k := range kvs {
		if err := w.keyValue(k, t.values[k]); err != nil {
			return fmt.Errorf("%s: %w", strings.Join(childPath(path, k), "."), err)
		}
	}
	for _, k := range tables {
		if err := w.section(childPath(path, k), t.values[k].(*Table), false); err != nil {
			return err
		}
	}
	for _, k := range arrays {
		for _, e := range t.values[k].([]any) {
			if err := w.section(childPath(path, k), e.(*Table), true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) header(open string, path []string, close string) {
	if w.buf.Len() > 0 {
		w.buf.WriteByte('\n')
	}
	parts := make([]string, len(path))
	for i, k := range path {
		parts[i] = quoteKey(k)
	}
	w.buf.WriteString(open + strings.Join(parts, ".") + close + "\n")
}

// keyValue lets go-toml render a single `key = value` line so quoting,
// escaping and inline tables follow the TOML grammar exactly. Lines are
// written by hand.
func (w *writer) keyValue(key string, v any) error {
	if lines, ok := v.(Lines); ok {
		w.lines(key, lines)
		return nil
	}

	var b bytes.Buffer
	enc := gotoml.NewEncoder(&b)
	enc.SetTablesInline(true)
	enc.SetIndentSymbol(indent)
	if err := enc.Encode(map[string]any{key: plain(v)}); err != nil {
		return err
	}
	w.buf.Write(b.Bytes())
	return nil
}

// lines writes one double-quoted element per line, each followed by a comma:
//
//	dependencies = [
//	    "requests>=2.31,<3.0",
//	    "click",
//	]
func (w *writer) lines(key string, lines Lines) {
	w.buf.WriteString(quoteKey(key) + " = [")
	if len(lines) == 0 {
		w.buf.WriteString("]\n")
		return
	}
	w.buf.WriteByte('\n')
	for _, l := range lines {
		w.buf.WriteString(indent + basicString(l) + ",\n")
	}
	w.buf.WriteString("]\n")
}

// basicString quotes s as a TOML basic string. go-toml prefers literal
// strings and has no switch for this.
func basicString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func childPath(path []string, k string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, k)
}

func isTable(v any) bool {
	_, ok := v.(*Table)
	return ok
}

func isTableArray(v any) bool {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return false
	}
	for _, e := range arr {
		if !isTable(e) {
			return false
		}
	}
	return true
}

func quoteKey(k string) string {
	if bareKeyRe.MatchString(k) {
		return k
	}
	return strconv.Quote(k)
}

// plain converts a stored value into something go-toml encodes directly.
// Nested tables become maps, which go-toml writes with sorted keys.
func plain(v any) any {
	switch v := v.(type) {
	case *Table:
		m := make(map[string]any, v.Len())
		for _, k := range v.keys {
			m[k] = plain(v.values[k])
		}
		return m
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}
		return out
	case Lines:
		return []string(v)
	case time.Time:
		return localTime(v)
	default:
		return v
	}
}

// localTime maps BurntSushi's zone markers for local date/time values back
// to go-toml's local types so they are not written with a UTC offset.
func localTime(t time.Time) any {
	date := gotoml.LocalDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
	clock := gotoml.LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
	switch t.Location().String() {
	case "datetime-local":
		return gotoml.LocalDateTime{LocalDate: date, LocalTime: clock}
	case "date-local":
		return date
	case "time-local":
		return clock
	default:
		return t
	}
}
