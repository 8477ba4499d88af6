package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"course-mirror/internal/domain"
	"course-mirror/internal/providers"
	"course-mirror/internal/report"
)

// SnapshotStore is the persistence the runner needs.
type SnapshotStore interface {
	Load() (*domain.Snapshot, error)
	Save(*domain.Snapshot) error
}

type Runner struct {
	Provider providers.CourseProvider
	Store    SnapshotStore
	LogPath  string // change log; empty skips the append
	Now      func() time.Time
	Log      *slog.Logger
}

type Result struct {
	RunID    string
	Snapshot *domain.Snapshot
	Delta    domain.SyncDelta
	Fetched  int
	At       time.Time
}

// Run performs one sync: load prior state, fetch the catalog, reconcile, save,
// then append the change-log entry. Nothing is written if the fetch fails, and the
// log is only appended after the snapshot is safely on disk.
func (r *Runner) Run(ctx context.Context, f domain.Filter) (Result, error) {
	runID := uuid.NewString()
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", runID, "provider", r.Provider.Name())

	prior, err := r.Store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("sync: load snapshot: %w", err)
	}
	log.Info("sync: loaded snapshot", "records", prior.Len())

	fresh, err := r.Provider.ListCourses(ctx, f)
	if err != nil {
		return Result{}, fmt.Errorf("sync: fetch: %w", err)
	}
	log.Info("sync: fetched catalog", "courses", len(fresh))

	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	next, delta := Reconcile(prior, fresh, now)

	if err := r.Store.Save(next); err != nil {
		return Result{}, fmt.Errorf("sync: save snapshot: %w", err)
	}

	if r.LogPath != "" {
		if err := report.Append(r.LogPath, report.Render(delta, now)); err != nil {
			return Result{}, fmt.Errorf("sync: %w", err)
		}
	}

	log.Info("sync: done",
		"records", next.Len(),
		"new", len(delta.New),
		"expired", len(delta.Expired),
		"revived", len(delta.Revived),
	)
	return Result{RunID: runID, Snapshot: next, Delta: delta, Fetched: len(fresh), At: now}, nil
}
