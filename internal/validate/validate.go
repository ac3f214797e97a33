// Package validate checks that declared file paths are usable before a run
// starts.
package validate

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"golang.org/x/sys/unix"
)

// FileReadable returns an error unless path is an existing regular file (or
// device) the process may read.
func FileReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return eris.Wrapf(err, "validate: can not read %s", path)
	}
	if info.IsDir() {
		return eris.Errorf("validate: can not read %s: is a directory", path)
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return eris.Wrapf(err, "validate: can not read %s", path)
	}
	return nil
}

// FileWritable returns an error unless path is an existing writable file, or
// does not exist and its nearest existing ancestor directory is writable.
func FileWritable(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return eris.Errorf("validate: can not write %s: is a directory", path)
		}
		if err := unix.Access(path, unix.W_OK); err != nil {
			return eris.Wrapf(err, "validate: can not write %s", path)
		}
		return nil
	case !os.IsNotExist(err):
		return eris.Wrapf(err, "validate: can not write %s", path)
	}

	dir, err := existingAncestor(filepath.Dir(path))
	if err != nil {
		return eris.Wrapf(err, "validate: can not write %s", path)
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return eris.Wrapf(err, "validate: can not write %s: directory %s", path, dir)
	}
	return nil
}

// existingAncestor walks up from dir to the first path that exists, which
// must be a directory.
func existingAncestor(dir string) (string, error) {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return "", eris.Errorf("%s is not a directory", dir)
			}
			return dir, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", err
		}
		dir = parent
	}
}
