package reconcile

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerworks/taskledger/internal/domain"
	"github.com/ledgerworks/taskledger/internal/repository"
)

// Store is the slice of the state store the reconciliation job needs. The
// production implementation wraps the PostgreSQL repositories; tests drive
// the job with an in-memory fake.
type Store interface {
	// ListActiveTasks returns every task not soft-deleted.
	ListActiveTasks(ctx context.Context) ([]*domain.Task, error)
	// Begin opens one attempt's unit of work.
	Begin(ctx context.Context) (Batch, error)
}

// Batch is one attempt's transactional unit of work. EnsureSnapshot is
// idempotent per (task, log date): a duplicate insert is absorbed as
// success, so overlapping runs for the same date cannot violate the
// one-snapshot-per-day invariant. Rollback after Commit is a no-op.
type Batch interface {
	EnsureSnapshot(ctx context.Context, snapshot *domain.Snapshot) (created bool, err error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// pgStore implements Store over a pgx connection pool.
type pgStore struct {
	pool         *pgxpool.Pool
	taskRepo     *repository.TaskRepository
	snapshotRepo *repository.SnapshotRepository
}

// NewStore creates the PostgreSQL-backed Store.
func NewStore(pool *pgxpool.Pool, taskRepo *repository.TaskRepository, snapshotRepo *repository.SnapshotRepository) Store {
	return &pgStore{
		pool:         pool,
		taskRepo:     taskRepo,
		snapshotRepo: snapshotRepo,
	}
}

func (s *pgStore) ListActiveTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.taskRepo.ListActive(ctx)
}

func (s *pgStore) Begin(ctx context.Context) (Batch, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &pgBatch{tx: tx, snapshotRepo: s.snapshotRepo}, nil
}

// pgBatch implements Batch over a single pgx transaction.
type pgBatch struct {
	tx           pgx.Tx
	snapshotRepo *repository.SnapshotRepository
}

func (b *pgBatch) EnsureSnapshot(ctx context.Context, snapshot *domain.Snapshot) (bool, error) {
	return b.snapshotRepo.Ensure(ctx, b.tx, snapshot)
}

func (b *pgBatch) Commit(ctx context.Context) error {
	return b.tx.Commit(ctx)
}

func (b *pgBatch) Rollback(ctx context.Context) error {
	err := b.tx.Rollback(ctx)
	if err != nil && err.Error() != "tx is closed" {
		return err
	}
	return nil
}
