// Package db corrects attachment metadata after files have been converted.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const updateStmt = `UPDATE attachments SET mime_type = $1 WHERE path = $2`

// Update sets one attachment row's mime type, keyed by its unchanged path.
type Update struct {
	Path     string
	MimeType string
}

// AttachmentPath renders the database key for a file relative to the data
// root. The application stores paths with a "data/" prefix.
func AttachmentPath(relPath string) string {
	return path.Join("data", relPath)
}

// Updater issues batched attachment updates over one Postgres connection.
type Updater struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects and pings. A connection failure here is run-level fatal so
// it surfaces before any file is touched.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Updater, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewUpdater(sqlDB, log), nil
}

// NewUpdater wraps an existing connection. Tests use it with a mock driver.
func NewUpdater(sqlDB *sql.DB, log *slog.Logger) *Updater {
	return &Updater{db: sqlDB, log: log}
}

// ApplyBatch runs every update in a single transaction: either the whole
// batch commits or none of it does, so stored metadata never half-reflects
// the filesystem. It returns the number of rows that matched. A path with no
// matching row is logged and skipped rather than failing the batch; orphaned
// files with no attachment row are a known state in these installations.
func (u *Updater) ApplyBatch(ctx context.Context, updates []Update) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin batch: %w", err)
	}

	applied := 0
	for _, upd := range updates {
		res, err := tx.ExecContext(ctx, updateStmt, upd.MimeType, upd.Path)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("update %s: %w", upd.Path, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("update %s: %w", upd.Path, err)
		}
		if rows == 0 {
			u.log.Warn("no attachment row for converted file", "path", upd.Path)
			continue
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return applied, nil
}

func (u *Updater) Close() error {
	return u.db.Close()
}
