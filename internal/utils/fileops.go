package utils

import (
	"errors"
	"os"
	"path/filepath"
)

// CreateFile creates or truncates path, creating parent directories as needed
func CreateFile(path string) (*os.File, error) {
	// Create directory if it doesn't exist
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
}

// CloseFile syncs and closes f, returning the first error encountered
func CloseFile(f *os.File) error {
	syncErr := f.Sync()
	closeErr := f.Close()
	return errors.Join(syncErr, closeErr)
}

// RemovePartial deletes a file left behind by an interrupted write.
// A missing file is not an error.
func RemovePartial(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirWritable reports whether files can be created in dir, creating dir first
// when it does not exist yet
func DirWritable(dir string) bool {
	if err := EnsureDir(dir); err != nil {
		return false
	}
	f, err := os.CreateTemp(dir, ".hades-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	return os.Remove(name) == nil
}
