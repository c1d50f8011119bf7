package convert

import (
	"bufio"
	"strings"

	"github.com/spf13/afero"

	"github.com/matzehuels/poetry2rye/pkg/errors"
)

// ResidualMarker is the text whose presence in the converted file is
// reported.
const ResidualMarker = "poetry"

// Warning is a line of the converted file that still mentions poetry.
// Matches are advisory: comments and unrelated tool settings may contain
// the word legitimately.
type Warning struct {
	Line    int // 1-based
	Content string
}

// ScanResidual returns every line of the file at path that contains needle.
func ScanResidual(fsys afero.Fs, path, needle string) ([]Warning, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	var out []Warning
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		if line := sc.Text(); strings.Contains(line, needle) {
			out = append(out, Warning{Line: n, Content: strings.TrimSpace(line)})
		}
	}
	if err := sc.Err(); err != nil {
		return out, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return out, nil
}
