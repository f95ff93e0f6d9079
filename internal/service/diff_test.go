package service

import (
	"testing"
	"time"

	"github.com/ledgerworks/taskledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseTask() *domain.Task {
	return &domain.Task{
		ID:          1,
		Title:       "Ship report",
		Description: "quarterly numbers",
		Status:      domain.TaskStatusPending,
		Priority:    3,
	}
}

func TestApplyDiff_NoInput(t *testing.T) {
	task := baseTask()

	changes := applyDiff(task, &checkedInput{})

	assert.Empty(t, changes)
	assert.Equal(t, "Ship report", task.Title)
}

func TestApplyDiff_SameValuesIsNoOp(t *testing.T) {
	task := baseTask()
	status := domain.TaskStatusPending

	changes := applyDiff(task, &checkedInput{
		title:    strPtr("Ship report"),
		priority: intPtr(3),
		status:   &status,
	})

	assert.Empty(t, changes)
}

func TestApplyDiff_ChangedFieldsSummarized(t *testing.T) {
	task := baseTask()
	status := domain.TaskStatusCompleted

	changes := applyDiff(task, &checkedInput{
		title:    strPtr("Ship final report"),
		status:   &status,
		priority: intPtr(5),
	})

	require.Len(t, changes, 3)
	assert.Contains(t, changes, "title: Ship report -> Ship final report")
	assert.Contains(t, changes, "status: pending -> completed")
	assert.Contains(t, changes, "priority: 3 -> 5")
	assert.Equal(t, "Ship final report", task.Title)
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
	assert.Equal(t, 5, task.Priority)
}

func TestApplyDiff_DueDateSetAndCleared(t *testing.T) {
	task := baseTask()
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	changes := applyDiff(task, &checkedInput{dueDateSet: true, dueDate: &due})
	require.Len(t, changes, 1)
	require.NotNil(t, task.DueDate)

	// Submitting the same date again must not register a change.
	sameDue := due
	changes = applyDiff(task, &checkedInput{dueDateSet: true, dueDate: &sameDue})
	assert.Empty(t, changes)

	changes = applyDiff(task, &checkedInput{dueDateSet: true})
	require.Len(t, changes, 1)
	assert.Nil(t, task.DueDate)
}

func TestApplyDiff_AbsentFieldsUntouched(t *testing.T) {
	task := baseTask()

	changes := applyDiff(task, &checkedInput{description: strPtr("updated numbers")})

	require.Len(t, changes, 1)
	assert.Equal(t, "description updated", changes[0])
	assert.Equal(t, "Ship report", task.Title)
	assert.Equal(t, 3, task.Priority)
}
