package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestBackupAndRestore(t *testing.T) {
	dataDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "backups")

	original := []byte("original image bytes")
	path := filepath.Join(dataDir, "documents", "a.png")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, original, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := NewManager(backupDir)
	entry, err := m.Backup(path, "documents/a.png")
	if err != nil {
		t.Fatalf("backup: %v", err)
	}

	wantBackup := filepath.Join(backupDir, "documents", "a.png")
	if entry.BackupPath != wantBackup {
		t.Fatalf("backup path %s, want mirrored %s", entry.BackupPath, wantBackup)
	}
	got, err := os.ReadFile(entry.BackupPath)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatal("backup differs from original")
	}

	// Clobber the original, then restore.
	if err := os.WriteFile(path, []byte("half-written garbage"), 0o644); err != nil {
		t.Fatalf("clobber: %v", err)
	}
	if err := m.Restore(entry); err != nil {
		t.Fatalf("restore: %v", err)
	}
	restored, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read restored: %v", err)
	}
	if !bytes.Equal(restored, original) {
		t.Fatal("restore did not recover original bytes")
	}

	// The backup is retained after restore.
	if _, err := os.Stat(entry.BackupPath); err != nil {
		t.Fatalf("backup should survive restore: %v", err)
	}
}

func TestBackupDestinationNotWritable(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "a.png")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// A regular file where the backup directory should be makes MkdirAll fail.
	blocked := filepath.Join(t.TempDir(), "backups")
	if err := os.WriteFile(blocked, []byte("in the way"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	m := NewManager(filepath.Join(blocked, "nested"))
	if _, err := m.Backup(path, "a.png"); err == nil {
		t.Fatal("expected backup error for unwritable destination")
	}
}

func TestBackupMissingSource(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Backup(filepath.Join(t.TempDir(), "gone.png"), "gone.png"); err == nil {
		t.Fatal("expected error for missing source")
	}
}
