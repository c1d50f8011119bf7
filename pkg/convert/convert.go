package convert

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/matzehuels/poetry2rye/pkg/errors"
	"github.com/matzehuels/poetry2rye/pkg/observability"
	"github.com/matzehuels/poetry2rye/pkg/pyproject"
)

// Options configures a Converter.
type Options struct {
	// EnsureSrc moves the module under src/ and points the wheel target there.
	EnsureSrc bool
	// Virtual marks a dependency-only project: no build-system, no hatch config.
	Virtual bool
	// DryRun builds the new document without touching the filesystem.
	DryRun bool

	Fs     afero.Fs    // defaults to the OS filesystem
	Logger *log.Logger // defaults to a discarding logger
}

// Result describes a finished conversion.
type Result struct {
	Document *pyproject.Table
	Output   []byte

	BackupPath  string
	BackupFiles int
	BackupBytes int64

	Warnings    []Warning
	LockRemoved bool
	MovedTo     string // empty when the module was not moved
}

// Converter migrates Poetry projects. It holds no state between runs.
type Converter struct {
	opts Options
}

// New creates a Converter, filling in default filesystem and logger.
func New(opts Options) *Converter {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Converter{opts: opts}
}

// Convert migrates the project at projectPath.
//
// ctx is checked until the backup has been taken; from then on the run
// completes so the project is never left without its new metadata.
func (c *Converter) Convert(ctx context.Context, projectPath string) (*Result, error) {
	fsys, logger := c.opts.Fs, c.opts.Logger
	hooks := observability.Convert()

	p, err := pyproject.Load(fsys, projectPath, c.opts.EnsureSrc)
	if err != nil {
		return nil, err
	}
	dir := p.Dir
	logger.Debug("loaded project",
		"name", p.Name,
		"dependencies", len(p.Dependencies),
		"module", p.ModulePath)

	doc, err := Build(ctx, p, BuildOptions{EnsureSrc: c.opts.EnsureSrc, Virtual: c.opts.Virtual})
	if err != nil {
		return nil, err
	}
	out, err := pyproject.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", pyproject.MetadataFile)
	}
	result := &Result{Document: doc, Output: out}
	if c.opts.DryRun {
		logger.Debug("dry run, leaving project untouched", "bytes", len(out))
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Backup
	backup, err := NextBackupPath(fsys, dir)
	if err != nil {
		return nil, err
	}
	stats, err := CopyTree(fsys, dir, backup)
	if err != nil {
		return nil, err
	}
	if err := VerifyCopy(fsys, dir, backup); err != nil {
		return nil, err
	}
	result.BackupPath, result.BackupFiles, result.BackupBytes = backup, stats.Files, stats.Bytes
	logger.Debug("created backup", "path", backup, "files", stats.Files, "bytes", stats.Bytes)
	hooks.OnBackup(ctx, backup, stats.Files, stats.Bytes)

	// Overwrite
	metaPath := filepath.Join(dir, pyproject.MetadataFile)
	perm := fileMode(fsys, metaPath)
	if err := afero.WriteFile(fsys, metaPath, out, perm); err != nil {
		return result, errors.Wrap(errors.ErrCodeIO, err, "write %s (backup at %s)", metaPath, backup)
	}
	logger.Debug("wrote metadata", "path", metaPath, "bytes", len(out))

	// Residual references
	warnings, err := ScanResidual(fsys, metaPath, ResidualMarker)
	if err != nil {
		logger.Warn("could not re-read metadata", "path", metaPath, "err", err)
	}
	result.Warnings = warnings
	for _, w := range warnings {
		hooks.OnResidualReference(ctx, w.Line, w.Content)
	}

	// Lock file
	lock, removed, err := removeLock(fsys, dir)
	switch {
	case err != nil:
		logger.Warn("could not remove lock file", "path", lock, "err", err)
	case removed:
		result.LockRemoved = true
		logger.Debug("removed lock file", "path", lock)
		hooks.OnLockRemoved(ctx, lock)
	}

	// Source layout
	if c.opts.EnsureSrc {
		moved, err := MoveToSrc(fsys, p)
		if err != nil {
			return result, err
		}
		if moved != "" {
			result.MovedTo = moved
			logger.Debug("moved module", "from", p.ModulePath, "to", moved)
			hooks.OnModuleMoved(ctx, p.ModulePath, moved)
		} else {
			logger.Debug("src directory exists, module left in place")
		}
	}
	return result, nil
}

func fileMode(fsys afero.Fs, path string) os.FileMode {
	if info, err := fsys.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
