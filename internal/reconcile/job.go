// Package reconcile implements the daily snapshot reconciliation job: for a
// target calendar date, ensure exactly one snapshot exists per active task.
// The job is idempotent under retries and overlapping runs; the uniqueness
// constraint on (task_id, log_date) guarantees that structurally, so no
// distributed lock is needed for correctness.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerworks/taskledger/internal/cache"
	"github.com/ledgerworks/taskledger/internal/config"
	"github.com/ledgerworks/taskledger/internal/domain"
	"github.com/sethvargo/go-retry"
)

// RunState is the state of a single reconciliation run.
type RunState string

const (
	RunStateScheduled       RunState = "scheduled"
	RunStateRunning         RunState = "running"
	RunStateSucceeded       RunState = "succeeded"
	RunStateFailedRetryable RunState = "failed_retryable"
	RunStateFailedTerminal  RunState = "failed_terminal"
)

// RunReport describes the outcome of one reconciliation run, across all of
// its attempts.
type RunReport struct {
	RunID            string
	TargetDate       time.Time
	State            RunState
	History          []RunState
	Attempts         int
	TasksProcessed   int
	SnapshotsCreated int
	Err              error
}

// transition moves the run to a new state, recording the path taken.
func (r *RunReport) transition(state RunState) {
	r.State = state
	r.History = append(r.History, state)
}

// Job materializes the daily snapshot for every active task. The schedule
// itself (cron, manual trigger, re-delivery) lives outside the core; the job
// only defines the idempotent unit of work and the retry policy.
type Job struct {
	store       Store
	invalidator cache.Invalidator
	cfg         config.ReconcileConfig

	now func() time.Time
}

// NewJob creates a new reconciliation Job.
func NewJob(store Store, invalidator cache.Invalidator, cfg config.ReconcileConfig) *Job {
	return &Job{
		store:       store,
		invalidator: invalidator,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Run executes one reconciliation run for the target date. A zero targetDate
// means the caller's current date. Transient storage failures are retried up
// to the configured attempt budget with a fixed delay; retry exhaustion is
// reported as a terminal failure, never silently dropped. Each attempt is
// one transaction, so a failed attempt leaves no partial state, while
// snapshots committed by earlier attempts remain valid.
func (j *Job) Run(ctx context.Context, targetDate time.Time) (*RunReport, error) {
	if targetDate.IsZero() {
		targetDate = j.now()
	}
	date := domain.DateOnly(targetDate)
	notes := fmt.Sprintf("Automated daily log for %s", date.Format("2006-01-02"))

	report := &RunReport{
		RunID:      uuid.NewString(),
		TargetDate: date,
	}
	report.transition(RunStateScheduled)

	backoff := retry.WithMaxRetries(uint64(j.cfg.MaxAttempts-1), retry.NewConstant(j.cfg.RetryDelay.Duration))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if report.Attempts > 0 {
			report.transition(RunStateScheduled)
		}
		report.Attempts++
		report.transition(RunStateRunning)

		attemptCtx := ctx
		if j.cfg.AttemptTimeout.Duration > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, j.cfg.AttemptTimeout.Duration)
			defer cancel()
		}

		processed, created, err := j.runOnce(attemptCtx, date, notes)
		if err != nil {
			if ctx.Err() != nil {
				// Caller cancelled the run; do not burn retry budget.
				return err
			}
			report.transition(RunStateFailedRetryable)
			slog.Warn("reconciliation attempt failed",
				"run_id", report.RunID,
				"target_date", date.Format("2006-01-02"),
				"attempt", report.Attempts,
				"error", err,
			)
			return retry.RetryableError(fmt.Errorf("%w: %v", domain.ErrTransientStorage, err))
		}

		report.TasksProcessed = processed
		report.SnapshotsCreated = created
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			report.Err = err
			return report, fmt.Errorf("reconciliation run %s cancelled: %w", report.RunID, err)
		}
		report.transition(RunStateFailedTerminal)
		report.Err = err
		slog.Error("reconciliation run failed terminally",
			"run_id", report.RunID,
			"target_date", date.Format("2006-01-02"),
			"attempts", report.Attempts,
			"error", err,
		)
		return report, fmt.Errorf("%w: run %s after %d attempts: %v", domain.ErrRunFailed, report.RunID, report.Attempts, err)
	}

	report.transition(RunStateSucceeded)

	if err := j.invalidator.InvalidateTaskListings(ctx); err != nil {
		slog.Warn("cache invalidation failed", "run_id", report.RunID, "error", err)
	}

	slog.Info("reconciliation run succeeded",
		"run_id", report.RunID,
		"target_date", date.Format("2006-01-02"),
		"attempts", report.Attempts,
		"tasks_processed", report.TasksProcessed,
		"snapshots_created", report.SnapshotsCreated,
	)

	return report, nil
}

// runOnce performs a single attempt: visit every active task and ensure its
// snapshot for the date, all within one transaction.
func (j *Job) runOnce(ctx context.Context, date time.Time, notes string) (processed, created int, err error) {
	tasks, err := j.store.ListActiveTasks(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list active tasks: %w", err)
	}

	batch, err := j.store.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if rbErr := batch.Rollback(ctx); rbErr != nil {
			slog.Error("failed to rollback batch", "error", rbErr)
		}
	}()

	for _, task := range tasks {
		snapshot := &domain.Snapshot{
			TaskID:  task.ID,
			Status:  task.Status,
			LogDate: date,
			Notes:   notes,
		}
		inserted, err := batch.EnsureSnapshot(ctx, snapshot)
		if err != nil {
			return 0, 0, fmt.Errorf("ensure snapshot for task %d: %w", task.ID, err)
		}
		if inserted {
			created++
		}
	}

	if err := batch.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit batch: %w", err)
	}

	return len(tasks), created, nil
}
