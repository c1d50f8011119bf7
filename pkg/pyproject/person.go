package pyproject

import "strings"

// Person is an author or maintainer entry of the [project] table.
type Person struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

// ParsePerson splits Poetry's "Name <email>" form on the last space.
//
//	ParsePerson("Jane Doe <jane@example.com>") // {Name: "Jane Doe", Email: "jane@example.com"}
//
// When the last word is not an <email>, the whole string is the name.
func ParsePerson(s string) Person {
	s = strings.TrimSpace(s)
	name, last := "", s
	if i := strings.LastIndex(s, " "); i >= 0 {
		name, last = strings.TrimSpace(s[:i]), s[i+1:]
	}
	if strings.HasPrefix(last, "<") && strings.HasSuffix(last, ">") {
		return Person{Name: name, Email: last[1 : len(last)-1]}
	}
	return Person{Name: s}
}

func parsePeople(entries []string) []Person {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Person, len(entries))
	for i, e := range entries {
		out[i] = ParsePerson(e)
	}
	return out
}
