package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerworks/taskledger/internal/cache"
	"github.com/ledgerworks/taskledger/internal/domain"
	"github.com/ledgerworks/taskledger/internal/repository"
)

// initialSnapshotNotes is the notes text on the snapshot written at task creation.
const initialSnapshotNotes = "Initial task creation"

// TaskService is the mutation engine: it validates and applies create,
// update, and soft-delete operations, keeping the task row, its daily
// snapshot, and the audit trail consistent within one transaction per call.
type TaskService struct {
	pool         *pgxpool.Pool
	taskRepo     *repository.TaskRepository
	snapshotRepo *repository.SnapshotRepository
	auditRepo    *repository.AuditRepository
	invalidator  cache.Invalidator
	validator    *validator

	now func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	snapshotRepo *repository.SnapshotRepository,
	auditRepo *repository.AuditRepository,
	invalidator cache.Invalidator,
) *TaskService {
	return &TaskService{
		pool:         pool,
		taskRepo:     taskRepo,
		snapshotRepo: snapshotRepo,
		auditRepo:    auditRepo,
		invalidator:  invalidator,
		validator:    newValidator(),
		now:          time.Now,
	}
}

// createAuditAndCommit persists an audit entry within the transaction, then commits.
func (s *TaskService) createAuditAndCommit(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	if err := s.auditRepo.Create(ctx, tx, entry); err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// invalidateListings fires the outbound cache-invalidation signal. Failures
// are logged, not propagated: the mutation has already committed.
func (s *TaskService) invalidateListings(ctx context.Context) {
	if err := s.invalidator.InvalidateTaskListings(ctx); err != nil {
		slog.Warn("cache invalidation failed", "error", err)
	}
}

// CreateTask validates the input and creates a task with its initial
// snapshot for today and a create audit entry, as one atomic unit.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput, actor domain.Actor) (int64, error) {
	checked, err := s.validator.ValidateCreate(input)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	task, err := s.createOne(ctx, tx, checked, actor, "Task created: %s")
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	s.invalidateListings(ctx)

	slog.Info("task created",
		"task_id", task.ID,
		"actor_id", actor.ID,
		"status", task.Status,
	)

	return task.ID, nil
}

// createOne inserts a task with its initial snapshot and create audit entry
// inside the caller's transaction. Shared by CreateTask and BulkCreate.
func (s *TaskService) createOne(
	ctx context.Context,
	tx pgx.Tx,
	checked *checkedInput,
	actor domain.Actor,
	auditFormat string,
) (*domain.Task, error) {
	task := &domain.Task{
		Title:     *checked.title,
		Active:    true,
		CreatedBy: actor.ID,
		UpdatedBy: actor.ID,
	}
	if checked.description != nil {
		task.Description = *checked.description
	}
	if checked.status != nil {
		task.Status = *checked.status
	}
	if checked.priority != nil {
		task.Priority = *checked.priority
	}
	if checked.dueDateSet {
		task.DueDate = checked.dueDate
	}

	if _, err := s.taskRepo.Create(ctx, tx, task); err != nil {
		return nil, err
	}

	snapshot := &domain.Snapshot{
		TaskID:  task.ID,
		Status:  task.Status,
		LogDate: domain.DateOnly(s.now()),
		Notes:   initialSnapshotNotes,
	}
	if _, err := s.snapshotRepo.Ensure(ctx, tx, snapshot); err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		TaskID:   task.ID,
		ActorID:  actor.ID,
		Action:   domain.AuditActionCreate,
		NewValue: fmt.Sprintf(auditFormat, task.Title),
	}
	if err := s.auditRepo.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("create audit entry: %w", err)
	}

	return task, nil
}

// UpdateTask applies a field-by-field diff to a task. The actor must hold an
// elevated role or be the task's creator. When at least one field changes,
// exactly one update audit entry summarizes all changed fields; a no-op diff
// writes no audit entry but still advances updated_by and updated_at.
func (s *TaskService) UpdateTask(ctx context.Context, taskID int64, input TaskInput, actor domain.Actor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return err
	}

	if !actor.Role.IsElevated() && !task.IsCreatedBy(actor.ID) {
		return fmt.Errorf("%w: actor %d is neither elevated nor creator of task %d", domain.ErrForbidden, actor.ID, taskID)
	}

	checked, err := s.validator.ValidateUpdate(input)
	if err != nil {
		return err
	}

	oldTitle := task.Title
	changes := applyDiff(task, checked)

	task.UpdatedBy = actor.ID
	if err := s.taskRepo.Update(ctx, tx, task); err != nil {
		return err
	}

	if len(changes) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		slog.Info("task touched without changes", "task_id", taskID, "actor_id", actor.ID)
		s.invalidateListings(ctx)
		return nil
	}

	entry := &domain.AuditEntry{
		TaskID:   taskID,
		ActorID:  actor.ID,
		Action:   domain.AuditActionUpdate,
		OldValue: fmt.Sprintf("Before: %s", oldTitle),
		NewValue: "Changes:\n" + strings.Join(changes, "\n"),
	}
	if err := s.createAuditAndCommit(ctx, tx, entry); err != nil {
		return err
	}

	s.invalidateListings(ctx)

	slog.Info("task updated",
		"task_id", taskID,
		"actor_id", actor.ID,
		"changed_fields", len(changes),
	)

	return nil
}

// DeleteTask soft-deletes a task: the row stays, active flips to false, and
// one delete audit entry is written. Deleting an already-inactive task fails
// with ErrAlreadyDeleted and writes nothing.
func (s *TaskService) DeleteTask(ctx context.Context, taskID int64, actor domain.Actor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return err
	}

	if !task.Active {
		return fmt.Errorf("%w: task %d", domain.ErrAlreadyDeleted, taskID)
	}

	if err := s.taskRepo.SoftDelete(ctx, tx, taskID, actor.ID); err != nil {
		return err
	}

	entry := &domain.AuditEntry{
		TaskID:   taskID,
		ActorID:  actor.ID,
		Action:   domain.AuditActionDelete,
		NewValue: fmt.Sprintf("Task marked as inactive: %s", task.Title),
	}
	if err := s.createAuditAndCommit(ctx, tx, entry); err != nil {
		return err
	}

	s.invalidateListings(ctx)

	slog.Info("task deleted", "task_id", taskID, "actor_id", actor.ID)

	return nil
}

// BulkRow is one row of a bulk import. Nil fields were absent from the row.
type BulkRow struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
}

// complete reports whether the row carries every required field.
func (r BulkRow) complete() bool {
	return r.Title != nil && r.Description != nil && r.Status != nil
}

// BulkCreate applies CreateTask semantics across a sequence of rows in one
// batch transaction. Rows missing required fields are skipped silently; an
// unparseable field value on any row aborts and rolls back the whole batch.
// Returns the number of tasks created.
func (s *TaskService) BulkCreate(ctx context.Context, rows []BulkRow, actor domain.Actor) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	count := 0
	skipped := 0
	for i, row := range rows {
		if !row.complete() {
			skipped++
			continue
		}

		input := TaskInput{
			Title:       row.Title,
			Description: row.Description,
			Status:      row.Status,
		}
		if row.Priority != nil && *row.Priority != "" {
			priority, err := strconv.Atoi(*row.Priority)
			if err != nil {
				return 0, fmt.Errorf("%w: row %d: invalid priority %q", domain.ErrValidation, i, *row.Priority)
			}
			input.Priority = &priority
		}
		if row.DueDate != nil && *row.DueDate != "" {
			input.DueDate = row.DueDate
		}

		checked, err := s.validator.ValidateCreate(input)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}

		if _, err := s.createOne(ctx, tx, checked, actor, "Task created via bulk import: %s"); err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	if count > 0 {
		s.invalidateListings(ctx)
	}

	slog.Info("bulk create finished",
		"created", count,
		"skipped", skipped,
		"actor_id", actor.ID,
	)

	return count, nil
}
