// Package processor orchestrates the batch: it fans scanned records out to
// workers, drives each file through backup → convert → replace with
// rollback-on-failure, and aggregates results.
package processor

import (
	"context"
	"sync"

	"slimbox/internal/config"
	"slimbox/internal/scan"
)

// Run processes every candidate under cfg.DataRoot and returns the aggregate
// summary plus one Result per candidate. Per-file failures are recorded and
// never abort the run; the returned error is non-nil only for run-level
// conditions (unreadable root, cancellation).
//
// Each file is owned by exactly one worker from backup through replace, so
// its state machine is never interleaved with other work on the same file.
// Counters are aggregated by a single collector goroutine. There is no
// cancellation mid-file: a file that entered BackedUp runs to Done or
// Failed/RolledBack even when ctx is cancelled; process interruption inside
// that window is the one unguarded case, recoverable from the backup mirror.
func Run(ctx context.Context, cfg config.Config, deps Deps, updates chan<- ProgressUpdate) (Summary, []Result, error) {
	records, scanErr := scan.Scan(ctx, cfg.DataRoot)

	results := make(chan Result)

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go func() {
			defer wg.Done()
			for rec := range records {
				if updates != nil {
					updates <- ProgressUpdate{TotalDelta: 1}
				}
				results <- processFile(rec, cfg, deps)
			}
		}()
	}

	var (
		summary   Summary
		collected []Result
	)
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			collect(&summary, res, cfg.DryRun, deps, updates)
			collected = append(collected, res)
		}
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	if err := <-scanErr; err != nil {
		return summary, collected, err
	}
	return summary, collected, nil
}

func collect(summary *Summary, res Result, dryRun bool, deps Deps, updates chan<- ProgressUpdate) {
	summary.Candidates++
	update := ProgressUpdate{ProcessedDelta: 1}

	switch {
	case res.Skipped:
		summary.Skipped++
		update.SkippedDelta = 1
		deps.Log.Info("skipped", "path", res.Record.RelPath, "reason", "already webp")
	case res.Err != nil:
		summary.Failed++
		update.FailedDelta = 1
		if res.State == StateRolledBack {
			summary.RolledBack++
		}
		deps.Log.Error("failed",
			"path", res.Record.RelPath,
			"state", res.State.String(),
			"stage", res.ErrKind.String(),
			"error", res.Err,
		)
	default:
		saved := res.Record.Size - res.NewSize
		summary.Converted++
		summary.BytesSaved += saved
		update.ConvertedDelta = 1
		update.BytesSavedDelta = saved
		msg := "converted"
		if dryRun {
			msg = "would convert"
		}
		deps.Log.Info(msg,
			"path", res.Record.RelPath,
			"state", res.State.String(),
			"format", res.Record.Kind.String(),
			"size", res.Record.Size,
			"new_size", res.NewSize,
			"saved", saved,
		)
	}

	if updates != nil {
		updates <- update
	}
}
