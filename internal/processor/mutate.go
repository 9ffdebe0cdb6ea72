package processor

import (
	"fmt"
	"os"

	"slimbox/internal/config"
	"slimbox/internal/scan"
	"slimbox/pkg/imgutil"
)

// processFile drives one file through the state machine. The ordering is the
// whole point: the backup is verified before anything destructive, the
// conversion runs against an in-memory copy, the replace is atomic, and the
// restore runs only after a destructive step was actually taken.
func processFile(rec scan.Record, cfg config.Config, deps Deps) Result {
	res := Result{Record: rec, State: StateScanned}

	if rec.Err != nil {
		return fail(res, ErrIO, rec.Err)
	}
	if rec.Kind == imgutil.KindWebP {
		res.Skipped = true
		return res
	}

	info, err := os.Stat(rec.Path)
	if err != nil {
		return fail(res, ErrIO, err)
	}
	data, err := os.ReadFile(rec.Path)
	if err != nil {
		return fail(res, ErrIO, err)
	}

	if cfg.DryRun {
		// Pure preview: convert the in-memory copy to report projected
		// savings, but take no backup and touch nothing.
		out, err := deps.Convert.Convert(data, rec.Kind)
		if err != nil {
			return fail(res, ErrConversion, err)
		}
		res.NewSize = int64(len(out))
		return res
	}

	entry, err := deps.Backup.Backup(rec.Path, rec.RelPath)
	if err != nil {
		// Nothing was touched; terminal Failed with no rollback needed.
		return fail(res, ErrBackup, err)
	}
	res.State = StateBackedUp

	res.State = StateConverting
	out, err := deps.Convert.Convert(data, rec.Kind)
	if err != nil {
		// Original untouched; the backup stays as a no-op safety net.
		return fail(res, ErrConversion, err)
	}

	if err := replaceFile(rec.Path, out, info.Mode().Perm()); err != nil {
		res = fail(res, ErrReplace, err)
		if restoreErr := deps.Backup.Restore(entry); restoreErr != nil {
			res.Err = fmt.Errorf("%w; restore also failed: %v (backup kept at %s)", err, restoreErr, entry.BackupPath)
			return res
		}
		res.State = StateRolledBack
		return res
	}
	res.State = StateReplaced

	res.State = StateDone
	res.NewSize = int64(len(out))
	return res
}

func fail(res Result, kind ErrorKind, err error) Result {
	res.State = StateFailed
	res.ErrKind = kind
	res.Err = err
	return res
}
