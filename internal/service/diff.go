package service

import (
	"fmt"
	"time"

	"github.com/ledgerworks/taskledger/internal/domain"
)

// applyDiff applies every present input field to the task and returns a
// human-readable description of each field whose value actually changed.
// Absent fields are left untouched. An empty result means a no-op diff.
func applyDiff(task *domain.Task, checked *checkedInput) []string {
	var changes []string

	if checked.title != nil && task.Title != *checked.title {
		changes = append(changes, fmt.Sprintf("title: %s -> %s", task.Title, *checked.title))
		task.Title = *checked.title
	}

	if checked.description != nil && task.Description != *checked.description {
		changes = append(changes, "description updated")
		task.Description = *checked.description
	}

	if checked.status != nil && task.Status != *checked.status {
		changes = append(changes, fmt.Sprintf("status: %s -> %s", task.Status, *checked.status))
		task.Status = *checked.status
	}

	if checked.priority != nil && task.Priority != *checked.priority {
		changes = append(changes, fmt.Sprintf("priority: %d -> %d", task.Priority, *checked.priority))
		task.Priority = *checked.priority
	}

	if checked.dueDateSet && !equalTimes(task.DueDate, checked.dueDate) {
		changes = append(changes, fmt.Sprintf("due_date: %s -> %s", formatDueDate(task.DueDate), formatDueDate(checked.dueDate)))
		task.DueDate = checked.dueDate
	}

	return changes
}

func equalTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func formatDueDate(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format(time.RFC3339)
}
