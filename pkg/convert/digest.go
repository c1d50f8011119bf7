package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/matzehuels/poetry2rye/pkg/errors"
)

// TreeDigest computes a SHA-256 over every entry under root: relative path,
// kind, file mode and content for files, link target for symlinks.
// Two trees with the same digest hold the same bytes at the same paths.
func TreeDigest(fsys afero.Fs, root string) (string, error) {
	h := sha256.New()
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch mode := info.Mode(); {
		case mode&os.ModeSymlink != 0:
			target, err := readlink(fsys, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(h, "L %s %s\n", rel, target)
		case mode.IsDir():
			fmt.Fprintf(h, "D %s\n", rel)
		case mode.IsRegular():
			sum, err := fileHash(fsys, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(h, "F %s %o %s\n", rel, mode.Perm(), sum)
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "digest %s", root)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyCopy checks that dst holds exactly what src holds.
func VerifyCopy(fsys afero.Fs, src, dst string) error {
	want, err := TreeDigest(fsys, src)
	if err != nil {
		return err
	}
	got, err := TreeDigest(fsys, dst)
	if err != nil {
		return err
	}
	if got != want {
		return errors.New(errors.ErrCodeBackupMismatch, "backup %s does not match %s (digest %s, want %s)",
			dst, src, short(got), short(want))
	}
	return nil
}

// fileHash returns the full 64-character hex SHA-256 of a file's content.
func fileHash(fsys afero.Fs, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readlink(fsys afero.Fs, name string) (string, error) {
	r, ok := fsys.(afero.LinkReader)
	if !ok {
		return "", fmt.Errorf("%s: filesystem does not support symlinks", name)
	}
	return r.ReadlinkIfPossible(name)
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
