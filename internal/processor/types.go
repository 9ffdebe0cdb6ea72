package processor

import (
	"log/slog"

	"slimbox/internal/backup"
	"slimbox/internal/scan"
	"slimbox/pkg/imgutil"
)

// Converter produces the target-format encoding of one file's bytes.
type Converter interface {
	Convert(data []byte, kind imgutil.Kind) ([]byte, error)
}

// Deps are the collaborators one run needs.
type Deps struct {
	Backup  *backup.Manager
	Convert Converter
	Log     *slog.Logger
}

// Result is the terminal outcome for one scanned file.
type Result struct {
	Record scan.Record
	// State is the terminal state. Only StateDone marks a file whose
	// on-disk content changed and whose database row needs updating; a
	// dry-run success stays at StateScanned because nothing was touched.
	State   State
	Skipped bool
	Err     error
	ErrKind ErrorKind
	// NewSize is the converted size in bytes (projected, in a dry run).
	NewSize int64
}

// Summary aggregates one run.
type Summary struct {
	Candidates int
	Converted  int
	Skipped    int
	Failed     int
	RolledBack int
	BytesSaved int64
}

// ProgressUpdate carries counter deltas to the progress display.
type ProgressUpdate struct {
	TotalDelta      int
	ProcessedDelta  int
	ConvertedDelta  int
	SkippedDelta    int
	FailedDelta     int
	BytesSavedDelta int64
}
