package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/matzehuels/poetry2rye/pkg/errors"
)

// BackupSuffix is appended to the project directory name to form the backup
// path. Later backups add ".1", ".2", ...
const BackupSuffix = ".bak"

// CopyStats counts what CopyTree copied. Symlinks count as files with no
// bytes.
type CopyStats struct {
	Files int
	Bytes int64
}

// NextBackupPath returns the first unused sibling of dir named
// <dir>.bak, <dir>.bak.1, <dir>.bak.2, ...
func NextBackupPath(fsys afero.Fs, dir string) (string, error) {
	base := filepath.Clean(dir) + BackupSuffix
	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s.%d", base, i)
		}
		ok, err := exists(fsys, candidate)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeIO, err, "check %s", candidate)
		}
		if !ok {
			return candidate, nil
		}
	}
}

// CopyTree copies the tree rooted at src into dst. Symlinks are recreated
// as symlinks, not followed. An existing dst is merged into: files are
// overwritten, unrelated entries are left alone.
func CopyTree(fsys afero.Fs, src, dst string) (CopyStats, error) {
	var st CopyStats
	err := afero.Walk(fsys, src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch mode := info.Mode(); {
		case mode&os.ModeSymlink != 0:
			if err := copySymlink(fsys, p, target); err != nil {
				return err
			}
			st.Files++
		case mode.IsDir():
			return fsys.MkdirAll(target, mode.Perm()|0o700)
		case mode.IsRegular():
			n, err := copyFile(fsys, p, target, mode.Perm())
			if err != nil {
				return err
			}
			st.Files++
			st.Bytes += n
		}
		// Sockets, pipes and devices are not part of a project.
		return nil
	})
	if err != nil {
		return st, errors.Wrap(errors.ErrCodeIO, err, "copy %s to %s", src, dst)
	}
	return st, nil
}

func copyFile(fsys afero.Fs, src, dst string, perm os.FileMode) (int64, error) {
	in, err := fsys.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	return n, fsys.Chmod(dst, perm)
}

func copySymlink(fsys afero.Fs, src, dst string) error {
	reader, ok := fsys.(afero.LinkReader)
	if !ok {
		return fmt.Errorf("%s: filesystem does not support symlinks", src)
	}
	linker, ok := fsys.(afero.Linker)
	if !ok {
		return fmt.Errorf("%s: filesystem does not support symlinks", dst)
	}
	target, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return err
	}
	if err := fsys.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	return linker.SymlinkIfPossible(target, dst)
}

// exists reports whether name exists without following a final symlink.
func exists(fsys afero.Fs, name string) (bool, error) {
	var err error
	if l, ok := fsys.(afero.Lstater); ok {
		_, _, err = l.LstatIfPossible(name)
	} else {
		_, err = fsys.Stat(name)
	}
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
