// Package backup copies originals into a mirror tree before mutation and can
// restore them after a failed replace. Backups are retained for operator
// recovery, never deleted by the tool.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Entry records one verified backup.
type Entry struct {
	OriginalPath string
	BackupPath   string
}

// Manager writes backups under a single directory, mirroring each file's
// path relative to the data root so names cannot collide.
type Manager struct {
	dir string
}

func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Backup copies path into the backup mirror and verifies the copy by size
// and SHA-256 before returning. A failure here means nothing destructive may
// happen to the original.
func (m *Manager) Backup(path, relPath string) (Entry, error) {
	entry := Entry{
		OriginalPath: path,
		BackupPath:   filepath.Join(m.dir, filepath.FromSlash(relPath)),
	}

	if err := os.MkdirAll(filepath.Dir(entry.BackupPath), 0o755); err != nil {
		return Entry{}, fmt.Errorf("backup dir: %w", err)
	}

	srcSize, srcSum, err := copyFile(path, entry.BackupPath)
	if err != nil {
		return Entry{}, fmt.Errorf("backup copy: %w", err)
	}

	dstSize, dstSum, err := hashFile(entry.BackupPath)
	if err != nil {
		return Entry{}, fmt.Errorf("backup verify: %w", err)
	}
	if dstSize != srcSize || dstSum != srcSum {
		return Entry{}, fmt.Errorf("backup verify: copy of %s is incomplete (%d of %d bytes)", path, dstSize, srcSize)
	}

	return entry, nil
}

// Restore copies the backup back over the original path. The backup itself
// stays in place.
func (m *Manager) Restore(entry Entry) error {
	if _, _, err := copyFile(entry.BackupPath, entry.OriginalPath); err != nil {
		return fmt.Errorf("restore %s: %w", entry.OriginalPath, err)
	}
	return nil
}

// copyFile copies src to dst, fsyncs, and reports the source size and hash
// observed during the copy.
func copyFile(src, dst string) (int64, string, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, "", err
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return 0, "", err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return 0, "", err
	}

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, hasher), in)
	if err != nil {
		_ = out.Close()
		return 0, "", err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return 0, "", err
	}
	if err := out.Close(); err != nil {
		return 0, "", err
	}

	return n, hex.EncodeToString(hasher.Sum(nil)), nil
}

func hashFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	hasher := sha256.New()
	n, err := io.Copy(hasher, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(hasher.Sum(nil)), nil
}
