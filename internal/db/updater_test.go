package db

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestApplyBatchCommits(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	u := NewUpdater(sqlDB, discardLogger())
	defer u.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE attachments SET mime_type`).
		WithArgs("image/webp", "data/documents/a.png").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE attachments SET mime_type`).
		WithArgs("image/webp", "data/documents/b.jpg").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := u.ApplyBatch(context.Background(), []Update{
		{Path: "data/documents/a.png", MimeType: "image/webp"},
		{Path: "data/documents/b.jpg", MimeType: "image/webp"},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied != 2 {
		t.Fatalf("applied %d, want 2", applied)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyBatchRollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	u := NewUpdater(sqlDB, discardLogger())
	defer u.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE attachments SET mime_type`).
		WithArgs("image/webp", "data/documents/a.png").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE attachments SET mime_type`).
		WithArgs("image/webp", "data/documents/b.jpg").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	// The failure on the last update leaves the earlier one uncommitted.
	if _, err := u.ApplyBatch(context.Background(), []Update{
		{Path: "data/documents/a.png", MimeType: "image/webp"},
		{Path: "data/documents/b.jpg", MimeType: "image/webp"},
	}); err == nil {
		t.Fatal("expected batch error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyBatchZeroRowMatchIsWarning(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	u := NewUpdater(sqlDB, discardLogger())
	defer u.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE attachments SET mime_type`).
		WithArgs("image/webp", "data/documents/orphan.png").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := u.ApplyBatch(context.Background(), []Update{
		{Path: "data/documents/orphan.png", MimeType: "image/webp"},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied != 0 {
		t.Fatalf("applied %d, want 0", applied)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyBatchEmpty(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	u := NewUpdater(sqlDB, discardLogger())
	defer u.Close()

	applied, err := u.ApplyBatch(context.Background(), nil)
	if err != nil || applied != 0 {
		t.Fatalf("empty batch: applied=%d err=%v", applied, err)
	}
}

func TestAttachmentPath(t *testing.T) {
	if got := AttachmentPath("documents/a.png"); got != "data/documents/a.png" {
		t.Fatalf("got %s", got)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
