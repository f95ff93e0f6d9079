package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerworks/taskledger/internal/domain"
)

// SnapshotRepository handles database operations for daily task snapshots.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// SnapshotListFilters holds supported filters for snapshot listing.
type SnapshotListFilters struct {
	LogDate *time.Time // Optional: exact calendar-date match
	Limit   int        // Required: page size
	Offset  int        // Required: page offset
}

// SnapshotListItem holds a snapshot joined with the owning task's summary fields.
type SnapshotListItem struct {
	Snapshot        domain.Snapshot
	TaskTitle       string
	TaskDescription string
}

// SnapshotDetail holds a snapshot joined with the owning task's detail fields.
type SnapshotDetail struct {
	Snapshot        domain.Snapshot
	TaskTitle       string
	TaskDescription string
	TaskPriority    int
	TaskDueDate     *time.Time
}

// Ensure atomically inserts a snapshot unless one already exists for the
// (task_id, log_date) pair. A duplicate is absorbed as success, never an
// error, so concurrent callers racing to create the same day's snapshot are
// safe without any external locking. Returns true if a row was inserted.
func (r *SnapshotRepository) Ensure(ctx context.Context, tx pgx.Tx, snapshot *domain.Snapshot) (bool, error) {
	query, args, err := psql.
		Insert("snapshots").
		Columns("task_id", "status", "log_date", "notes").
		Values(snapshot.TaskID, snapshot.Status, snapshot.LogDate, snapshot.Notes).
		Suffix("ON CONFLICT (task_id, log_date) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build Ensure query for task %d: %w", snapshot.TaskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("ensure snapshot: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves a snapshot by ID joined with the owning task.
func (r *SnapshotRepository) GetByID(ctx context.Context, snapshotID int64) (*SnapshotDetail, error) {
	query, args, err := psql.
		Select(
			"s.id", "s.task_id", "s.status", "s.log_date", "s.notes", "s.created_at",
			"t.title", "t.description", "t.priority", "t.due_date",
		).
		From("snapshots s").
		Join("tasks t ON t.id = s.task_id").
		Where(sq.Eq{"s.id": snapshotID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for snapshot: %w", err)
	}

	var detail SnapshotDetail
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&detail.Snapshot.ID,
		&detail.Snapshot.TaskID,
		&detail.Snapshot.Status,
		&detail.Snapshot.LogDate,
		&detail.Snapshot.Notes,
		&detail.Snapshot.CreatedAt,
		&detail.TaskTitle,
		&detail.TaskDescription,
		&detail.TaskPriority,
		&detail.TaskDueDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}

	return &detail, nil
}

// List retrieves snapshots with filters and pagination, plus the total count
// across all pages.
func (r *SnapshotRepository) List(ctx context.Context, filters SnapshotListFilters) ([]SnapshotListItem, int, error) {
	qb := psql.
		Select(
			"s.id", "s.task_id", "s.status", "s.log_date", "s.notes", "s.created_at",
			"t.title", "t.description",
		).
		From("snapshots s").
		Join("tasks t ON t.id = s.task_id")

	if filters.LogDate != nil {
		qb = qb.Where(sq.Eq{"s.log_date": *filters.LogDate})
	}

	qb = qb.
		OrderBy("s.id ASC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var items []SnapshotListItem
	for rows.Next() {
		var item SnapshotListItem
		err := rows.Scan(
			&item.Snapshot.ID,
			&item.Snapshot.TaskID,
			&item.Snapshot.Status,
			&item.Snapshot.LogDate,
			&item.Snapshot.Notes,
			&item.Snapshot.CreatedAt,
			&item.TaskTitle,
			&item.TaskDescription,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan snapshot: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rows: %w", err)
	}

	// Get total count (without pagination)
	countQb := psql.Select("COUNT(*)").From("snapshots s")
	if filters.LogDate != nil {
		countQb = countQb.Where(sq.Eq{"s.log_date": *filters.LogDate})
	}

	countQuery, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count snapshots: %w", err)
	}

	return items, total, nil
}

// CountByTaskAndDate reports how many snapshots exist for a (task, log date)
// pair. Used by tests asserting the uniqueness invariant.
func (r *SnapshotRepository) CountByTaskAndDate(ctx context.Context, taskID int64, logDate time.Time) (int, error) {
	query, args, err := psql.
		Select("COUNT(*)").
		From("snapshots").
		Where(sq.Eq{"task_id": taskID, "log_date": logDate}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build CountByTaskAndDate query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count snapshots for task %d: %w", taskID, err)
	}
	return count, nil
}
