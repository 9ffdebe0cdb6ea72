package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"slimbox/internal/backup"
	"slimbox/internal/config"
	"slimbox/internal/convert"
	"slimbox/internal/db"
	"slimbox/internal/logging"
	"slimbox/internal/processor"
	"slimbox/internal/report"
	"slimbox/internal/tui"
)

var (
	convertDryRun    bool
	convertQuality   int
	convertBackupDir string
	convertSkipDB    bool
	convertWorkers   int
	convertLogFile   string
	convertLogStderr bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] [data-root]",
	Short: "Convert attachment images to WebP in place",
	Long: `Convert every candidate image under the data root to WebP, keeping each
file's path and name. Per file: a verified backup is written first, the
conversion runs against an in-memory copy, and the converted bytes replace
the original atomically; a failed replace is restored from the backup.
After the batch, attachment mime types are corrected in one database
transaction.

Backups are never deleted. If the process is killed between a replace and
its rollback, recover the file manually from the backup directory.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg := config.FromEnv()
		if len(args) == 1 {
			cfg.DataRoot = args[0]
		}
		cfg.DryRun = convertDryRun
		cfg.Quality = convertQuality
		cfg.BackupDir = convertBackupDir
		cfg.SkipDatabase = convertSkipDB
		if convertWorkers > 0 {
			cfg.Workers = convertWorkers
		}
		cfg.LogFile = convertLogFile
		cfg.LogToStderr = convertLogStderr
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, closeLog, err := logging.Setup(cfg.LogFile, cfg.LogToStderr)
		if err != nil {
			return fmt.Errorf("open run log: %w", err)
		}
		defer func() { _ = closeLog() }()

		logger.Info("starting run",
			"data_root", cfg.DataRoot,
			"backup_dir", cfg.BackupDir,
			"quality", cfg.Quality,
			"dry_run", cfg.DryRun,
			"skip_database", cfg.SkipDatabase,
		)

		// Connect before touching any file so an unavailable database
		// fails the run while everything is still untouched.
		var updater *db.Updater
		if !cfg.DryRun && !cfg.SkipDatabase {
			updater, err = db.Open(ctx, cfg.DB.DSN(), logger)
			if err != nil {
				return fmt.Errorf("%w (use --skip-database to convert files only)", err)
			}
			defer updater.Close()
		}

		updates := make(chan processor.ProgressUpdate, 64)
		model := tui.NewModel(updates)
		program := tea.NewProgram(model)

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()

		deps := processor.Deps{
			Backup:  backup.NewManager(cfg.BackupDir),
			Convert: convert.New(cfg.Quality),
			Log:     logger,
		}
		summary, results, runErr := processor.Run(ctx, cfg, deps, updates)

		close(updates)
		<-uiDone
		if runErr != nil {
			logger.Error("run aborted", "error", runErr)
			return runErr
		}

		stats := report.FromSummary(summary)

		var dbErr error
		if updater != nil {
			batch := make([]db.Update, 0, summary.Converted)
			for _, res := range results {
				if res.State == processor.StateDone {
					batch = append(batch, db.Update{
						Path:     db.AttachmentPath(res.Record.RelPath),
						MimeType: convert.TargetMIME,
					})
				}
			}
			applied, err := updater.ApplyBatch(ctx, batch)
			if err != nil {
				dbErr = err
				logger.Error("metadata batch failed; converted files are kept", "error", err)
			} else {
				stats.DBUpdated = applied
				logger.Info("metadata batch committed", "rows", applied)
			}
		}

		logger.Info("run complete",
			"candidates", summary.Candidates,
			"converted", summary.Converted,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
			"rolled_back", summary.RolledBack,
			"bytes_saved", summary.BytesSaved,
		)

		fmt.Fprintln(os.Stdout, tui.RenderSummary(report.SummaryRows(stats, cfg.DryRun, cfg.SkipDatabase)))
		if summary.Converted > 0 && !cfg.DryRun {
			fmt.Fprintf(os.Stdout, "Backups stored in: %s\n", cfg.BackupDir)
		}

		if dbErr != nil {
			return fmt.Errorf("files are converted but the metadata batch did not commit; reconcile using the run log: %w", dbErr)
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d file(s) failed; originals are preserved, see the run log", summary.Failed)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().BoolVar(&convertDryRun, "dry-run", false, "preview without touching files or the database")
	convertCmd.Flags().IntVarP(&convertQuality, "quality", "q", convert.DefaultQuality, "WebP quality (1-100)")
	convertCmd.Flags().StringVar(&convertBackupDir, "backup-dir", "./backups", "directory for verified backups of originals")
	convertCmd.Flags().BoolVar(&convertSkipDB, "skip-database", false, "convert files only, leave attachment metadata for later reconciliation")
	convertCmd.Flags().IntVar(&convertWorkers, "workers", 0, "concurrent workers (default: number of CPUs)")
	convertCmd.Flags().StringVar(&convertLogFile, "log-file", "", "run log path (default: slimbox_<timestamp>.log)")
	convertCmd.Flags().BoolVar(&convertLogStderr, "log-stderr", false, "also write the run log to stderr")

	rootCmd.AddCommand(convertCmd)
}
