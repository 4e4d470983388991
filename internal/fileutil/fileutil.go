// Package fileutil writes command output files so that a failed run never leaves a partial file behind.
package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Perm is the permission of files created by WriteFile.
const Perm os.FileMode = 0644

// WriteFile calls write with a temporary file in the directory of name, and renames the temporary file to name only if write succeeds.
// The file is given Perm rather than the owner only mode of temporary files.
// On failure the temporary file is removed and any existing file at name is left untouched.
func WriteFile(name string, write func(w io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp")
	if err != nil {
		return errors.Wrap(err, "")
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "")
	}
	if err := f.Chmod(Perm); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "")
	}
	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "")
	}
	return nil
}

// Size returns the size of the file name.
func Size(name string) (int64, error) {
	info, err := os.Stat(name)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	return info.Size(), nil
}
