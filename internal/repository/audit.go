package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerworks/taskledger/internal/domain"
)

// AuditRepository handles database operations for audit entries.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create creates a new audit entry within a transaction.
func (r *AuditRepository) Create(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	query, args, err := psql.
		Insert("audit_entries").
		Columns("task_id", "actor_id", "action", "old_value", "new_value").
		Values(entry.TaskID, entry.ActorID, entry.Action, entry.OldValue, entry.NewValue).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}

	return nil
}

// ListByTask retrieves all audit entries for a task, oldest first.
func (r *AuditRepository) ListByTask(ctx context.Context, taskID int64) ([]*domain.AuditEntry, error) {
	query, args, err := psql.
		Select("id", "task_id", "actor_id", "action", "old_value", "new_value", "created_at").
		From("audit_entries").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("created_at ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&entry.ActorID,
			&entry.Action,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
