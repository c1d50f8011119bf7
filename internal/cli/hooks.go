package cli

import (
	"context"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/poetry2rye/pkg/observability"
)

// hookPrinter turns conversion events into console lines. Only the backup and
// warnings are printed; lock removal and the src move are logged at debug
// level by the converter.
type hookPrinter struct {
	observability.NoopConvertHooks
	w io.Writer
}

func newHookPrinter(w io.Writer) *hookPrinter {
	return &hookPrinter{w: w}
}

func (h *hookPrinter) OnBackup(_ context.Context, path string, files int, bytes int64) {
	printSuccess(h.w, "created backup: %s %s", StyleHighlight.Render(path),
		StyleDim.Render("("+humanize.Comma(int64(files))+" files, "+humanize.Bytes(uint64(bytes))+")"))
}

func (h *hookPrinter) OnResidualReference(_ context.Context, line int, content string) {
	printWarning(h.w, "found 'poetry' in line %d: %s", line, content)
}

func (h *hookPrinter) OnConstraintWidened(_ context.Context, dependency, constraint, requirement string) {
	printWarning(h.w, "%s: %q has no single-range equivalent, using %s", dependency, constraint, requirement)
}
