package convert

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/matzehuels/poetry2rye/pkg/errors"
	"github.com/matzehuels/poetry2rye/pkg/pyproject"
)

// MoveToSrc relocates the module directory to src/<module>. It does nothing
// and returns "" when src/ already exists, so running it twice is safe.
func MoveToSrc(fsys afero.Fs, p *pyproject.Project) (string, error) {
	srcDir := filepath.Join(p.Dir, pyproject.SourceDir)
	ok, err := exists(fsys, srcDir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "check %s", srcDir)
	}
	if ok {
		return "", nil
	}
	if p.ModulePath == "" {
		return "", errors.New(errors.ErrCodeModuleNotFound, "module %q not found in %s", p.ModuleName, p.Dir)
	}

	if err := fsys.Mkdir(srcDir, 0o755); err != nil && !os.IsExist(err) {
		return "", errors.Wrap(errors.ErrCodeIO, err, "create %s", srcDir)
	}
	dst := filepath.Join(srcDir, p.ModuleName)
	if err := fsys.Rename(p.ModulePath, dst); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "move %s to %s", p.ModulePath, dst)
	}
	return dst, nil
}

// removeLock deletes poetry.lock. A missing lock is not an error.
func removeLock(fsys afero.Fs, dir string) (string, bool, error) {
	path := filepath.Join(dir, pyproject.LockFile)
	if err := fsys.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return path, false, nil
		}
		return path, false, err
	}
	return path, true, nil
}
