// Package logging wires the run log. Besides the progress display, the log
// file is the only record of what happened to each file, so it always exists;
// stderr is an optional tee.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Setup opens the run log and returns a logger plus a close func. An empty
// path selects a timestamped file in the working directory, matching one log
// per run.
func Setup(path string, toStderr bool) (*slog.Logger, func() error, error) {
	if path == "" {
		path = fmt.Sprintf("slimbox_%s.log", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = f
	if toStderr {
		w = io.MultiWriter(f, os.Stderr)
	}

	logger := slog.New(slog.NewTextHandler(w, nil))
	return logger, f.Close, nil
}
