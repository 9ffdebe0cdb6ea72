package processor

import (
	"os"
	"path/filepath"
)

// Swappable so tests can make the destructive step fail deterministically.
var renameFile = os.Rename

// replaceFile atomically replaces the content at path with data: the bytes
// are written to a temp file in the same directory, fsync'd, then renamed
// into place so a reader never observes a half-written file. The path itself
// never changes.
func replaceFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".slimbox-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return renameFile(tmpName, path)
}
