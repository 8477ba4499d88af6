package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"course-mirror/internal/domain"
	"course-mirror/internal/prompt"
	"course-mirror/internal/refdata"
	"course-mirror/internal/report"
	"course-mirror/internal/snapshot"
	"course-mirror/internal/sync"
	"course-mirror/internal/timezone"
)

const (
	modeAll    = "all"
	modeFilter = "filter"
)

var (
	syncMode     string
	syncSchedule string
	syncUpload   bool
)

func init() {
	syncCmd.Flags().StringVar(&syncMode, "mode", modeAll, "all: whole catalog, filter: pick places/departments/... interactively")
	syncCmd.Flags().StringVar(&syncSchedule, "schedule", "", `cron spec in Asia/Tehran, e.g. "0 */6 * * *"; runs until interrupted`)
	syncCmd.Flags().BoolVar(&syncUpload, "upload", false, "upload the snapshot and change log over SFTP after each sync")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [--mode all|filter] [--schedule <cron>] [--upload]",
	Short: "Fetches the catalog and reconciles it into the snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var filter domain.Filter
		csvPath, jsonPath := cfg.SnapshotCSV, cfg.SnapshotJSON
		switch syncMode {
		case modeAll:
		case modeFilter:
			tables, err := refdata.Load(cfg.RefDataDir)
			if err != nil {
				return fmt.Errorf("reference data (run `coursesync refdata` first): %w", err)
			}
			filter, err = prompt.New(os.Stdin, cmd.OutOrStdout()).BuildFilter(tables)
			if err != nil {
				return err
			}
			// a filtered catalog would expire everything else in the full snapshot
			csvPath, jsonPath = withSuffix(csvPath, "_filter"), withSuffix(jsonPath, "_filter")
		default:
			return fmt.Errorf("unknown --mode %q (want %s or %s)", syncMode, modeAll, modeFilter)
		}

		runner := &sync.Runner{
			Provider: newProvider(cfg),
			Store:    snapshot.New(csvPath, jsonPath),
			LogPath:  cfg.ChangeLog,
			Now:      timezone.Now,
			Log:      slog.Default(),
		}
		once := func(ctx context.Context) error {
			res, err := runner.Run(ctx, filter)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), res)
			if syncUpload {
				return upload(ctx, csvPath, jsonPath, cfg.ChangeLog)
			}
			return nil
		}

		if syncSchedule == "" {
			return once(ctx)
		}
		return schedule(ctx, syncSchedule, once)
	},
}

func printSummary(w io.Writer, res sync.Result) {
	fmt.Fprintf(w, "Sync %s (%d fetched)\n", res.At.Format(domain.TimeLayout), res.Fetched)
	report.WriteSummary(w, res.Delta, res.Snapshot.Len())
}

// schedule runs job on spec until ctx is done. A run still going when the next one
// is due makes that one skip.
func schedule(ctx context.Context, spec string, job func(context.Context) error) error {
	logger := cronLogger{log: slog.Default()}
	c := cron.New(
		cron.WithLocation(timezone.Location()),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	c.Schedule(sched, cron.FuncJob(func() {
		if err := job(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("scheduled sync failed", "err", err)
		}
	}))

	c.Start()
	slog.Info("sync scheduled", "spec", spec, "tz", timezone.Name, "next", sched.Next(timezone.Now()))

	<-ctx.Done()
	slog.Info("stopping scheduler, waiting for a running sync")
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's logging into slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
