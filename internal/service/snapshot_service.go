package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerworks/taskledger/internal/domain"
	"github.com/ledgerworks/taskledger/internal/repository"
)

// logDateLayout is the calendar-date shape accepted by the listing filter.
const logDateLayout = "2006-01-02"

// SnapshotService is the read-side query façade over snapshots and the
// audit trail. It never mutates state and never observes a torn write: every
// read is a single statement against committed rows.
type SnapshotService struct {
	taskRepo     *repository.TaskRepository
	snapshotRepo *repository.SnapshotRepository
	auditRepo    *repository.AuditRepository
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(
	taskRepo *repository.TaskRepository,
	snapshotRepo *repository.SnapshotRepository,
	auditRepo *repository.AuditRepository,
) *SnapshotService {
	return &SnapshotService{
		taskRepo:     taskRepo,
		snapshotRepo: snapshotRepo,
		auditRepo:    auditRepo,
	}
}

// SnapshotPage is one page of snapshot summaries.
type SnapshotPage struct {
	Items []repository.SnapshotListItem
	Page  int
	Pages int
	Total int
}

// ListSnapshots returns a 1-indexed page of snapshot summaries, optionally
// filtered by exact log date ("YYYY-MM-DD"). Out-of-range pages return an
// empty page, not an error.
func (s *SnapshotService) ListSnapshots(ctx context.Context, page, pageSize int, dateFilter string) (*SnapshotPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be positive, got %d", domain.ErrValidation, page)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", domain.ErrValidation, pageSize)
	}

	filters := repository.SnapshotListFilters{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if dateFilter != "" {
		parsed, err := time.Parse(logDateLayout, dateFilter)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD", domain.ErrValidation, dateFilter)
		}
		filters.LogDate = &parsed
	}

	items, total, err := s.snapshotRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &SnapshotPage{
		Items: items,
		Page:  page,
		Pages: (total + pageSize - 1) / pageSize,
		Total: total,
	}, nil
}

// GetSnapshot returns a single snapshot joined with the owning task's
// title, description, priority, and due date.
func (s *SnapshotService) GetSnapshot(ctx context.Context, snapshotID int64) (*repository.SnapshotDetail, error) {
	return s.snapshotRepo.GetByID(ctx, snapshotID)
}

// TaskHistory returns the full audit trail for a task, oldest entry first.
func (s *SnapshotService) TaskHistory(ctx context.Context, taskID int64) ([]*domain.AuditEntry, error) {
	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByTask(ctx, taskID)
}
