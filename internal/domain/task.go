package domain

import "time"

// TaskStatus represents the current status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts a string to a TaskStatus, rejecting unknown values.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(raw)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Task represents the current mutable state of a work item.
// Tasks are never hard-deleted: Active=false marks a soft delete and
// excludes the task from reconciliation and normal reads, while the row
// and its snapshot/audit history are retained forever.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      TaskStatus
	Priority    int
	DueDate     *time.Time
	Active      bool
	CreatedBy   int64
	UpdatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCreatedBy checks if the task was created by the given actor.
func (t *Task) IsCreatedBy(actorID int64) bool {
	return t.CreatedBy == actorID
}
