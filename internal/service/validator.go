package service

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ledgerworks/taskledger/internal/domain"
)

const (
	titleMinLen = 3
	titleMaxLen = 120
	priorityMin = 1
	priorityMax = 5
)

// dueDateLayouts are the accepted ISO-8601 shapes for due dates: full
// timestamp with zone, local timestamp, or bare calendar date.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TaskInput is the task-input shape supplied by external callers. Nil fields
// are absent: on update they leave the stored value untouched. An empty
// DueDate string clears the stored due date.
type TaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *int
	DueDate     *string
}

// checkedInput is a TaskInput after validation, with status and due date
// parsed into their domain representations.
type checkedInput struct {
	title       *string
	description *string
	status      *domain.TaskStatus
	priority    *int
	dueDate     *time.Time
	dueDateSet  bool
}

// validator handles input validation for task mutations.
type validator struct{}

// newValidator creates a new validator.
func newValidator() *validator {
	return &validator{}
}

// ValidateCreate validates input for task creation. Title is required.
func (v *validator) ValidateCreate(input TaskInput) (*checkedInput, error) {
	if input.Title == nil {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	return v.check(input)
}

// ValidateUpdate validates input for a task update. All fields are optional.
func (v *validator) ValidateUpdate(input TaskInput) (*checkedInput, error) {
	return v.check(input)
}

// check validates every present field and parses status and due date.
func (v *validator) check(input TaskInput) (*checkedInput, error) {
	checked := &checkedInput{
		title:       input.Title,
		description: input.Description,
		priority:    input.Priority,
	}

	if input.Title != nil {
		if n := utf8.RuneCountInString(*input.Title); n < titleMinLen || n > titleMaxLen {
			return nil, fmt.Errorf("%w: title must be between %d and %d characters", domain.ErrValidation, titleMinLen, titleMaxLen)
		}
	}

	if input.Priority != nil {
		if *input.Priority < priorityMin || *input.Priority > priorityMax {
			return nil, fmt.Errorf("%w: priority must be between %d and %d", domain.ErrValidation, priorityMin, priorityMax)
		}
	}

	if input.Status != nil {
		status, err := domain.ParseTaskStatus(*input.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *input.Status)
		}
		checked.status = &status
	}

	if input.DueDate != nil {
		checked.dueDateSet = true
		if *input.DueDate != "" {
			parsed, err := parseDueDate(*input.DueDate)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid due date %q, use ISO-8601", domain.ErrValidation, *input.DueDate)
			}
			checked.dueDate = &parsed
		}
	}

	return checked, nil
}

// parseDueDate tries each accepted layout in order.
func parseDueDate(raw string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, domain.ErrInvalidDate
}
