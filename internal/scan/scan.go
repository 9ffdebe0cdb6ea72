// Package scan discovers candidate attachment images under a data root.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"slimbox/pkg/imgutil"
)

// Record describes one discovered candidate file.
type Record struct {
	// Path is the absolute file path.
	Path string
	// RelPath is the path relative to the data root, slash-separated. The
	// database keys attachment rows by this path, so it never changes.
	RelPath string
	// Kind is the detected image format. Content sniffing wins over the
	// extension, so an already-converted file keeps its old extension but
	// reports KindWebP.
	Kind imgutil.Kind
	// Size is the file size in bytes.
	Size int64
	// Err is set when the file looked like a candidate but could not be
	// read. Such records are counted as failures, never fatal to the scan.
	Err error
}

// Scan walks root and lazily produces a Record per candidate image. The
// records channel is closed when the walk ends; exactly one value is then
// available on the error channel (nil on success). An unreadable root is the
// only fatal condition.
//
// Candidate rules, mirroring how the inventory application stores uploads:
//   - a known image extension marks a candidate, with the header sniffed to
//     classify content;
//   - an extensionless file is sniffed only when its base name is a UUID,
//     which is how attachment files are named on disk;
//   - everything else is ignored.
func Scan(ctx context.Context, root string) (<-chan Record, <-chan error) {
	records := make(chan Record)
	errc := make(chan error, 1)

	go func() {
		defer close(records)

		info, err := os.Stat(root)
		if err != nil {
			errc <- fmt.Errorf("data root: %w", err)
			return
		}
		if !info.IsDir() {
			errc <- fmt.Errorf("data root %q is not a directory", root)
			return
		}

		absRoot, err := filepath.Abs(root)
		if err != nil {
			errc <- err
			return
		}

		fsys := os.DirFS(absRoot)
		errc <- fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return nil
			}

			rec, ok := classify(absRoot, path, d)
			if !ok {
				return nil
			}

			select {
			case records <- rec:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	return records, errc
}

func classify(absRoot, relPath string, d fs.DirEntry) (Record, bool) {
	full := filepath.Join(absRoot, relPath)
	rec := Record{Path: full, RelPath: filepath.ToSlash(relPath)}

	ext := filepath.Ext(d.Name())
	extKind, hasExt := imgutil.KindForExtension(ext)
	if ext != "" && !hasExt {
		return rec, false
	}
	if ext == "" {
		if _, err := uuid.Parse(d.Name()); err != nil {
			return rec, false
		}
	}

	info, err := d.Info()
	if err != nil {
		rec.Err = err
		return rec, true
	}
	rec.Size = info.Size()

	sniffed, err := imgutil.SniffFile(full)
	if err != nil {
		if hasExt {
			// Unreadable or truncated but named like an image; surface
			// it so the run records the failure.
			rec.Kind = extKind
			rec.Err = err
			return rec, true
		}
		return rec, false
	}

	switch {
	case sniffed != imgutil.KindUnknown:
		rec.Kind = sniffed
	case hasExt:
		// Extension claims an image but the header disagrees. Keep the
		// claimed kind; the converter decides whether it decodes.
		rec.Kind = extKind
	default:
		return rec, false
	}

	return rec, true
}
