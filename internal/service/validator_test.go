package service

import (
	"strings"
	"testing"

	"github.com/ledgerworks/taskledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestValidateCreate_RequiresTitle(t *testing.T) {
	v := newValidator()

	_, err := v.ValidateCreate(TaskInput{Description: strPtr("no title")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateCreate_TitleLength(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"too short", "ab", true},
		{"minimum", "abc", false},
		{"maximum", strings.Repeat("x", 120), false},
		{"too long", strings.Repeat("x", 121), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateCreate(TaskInput{Title: strPtr(tt.title)})
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCreate_PriorityRange(t *testing.T) {
	v := newValidator()

	for _, priority := range []int{1, 3, 5} {
		_, err := v.ValidateCreate(TaskInput{Title: strPtr("Ship report"), Priority: intPtr(priority)})
		assert.NoError(t, err)
	}
	for _, priority := range []int{0, 6, -1} {
		_, err := v.ValidateCreate(TaskInput{Title: strPtr("Ship report"), Priority: intPtr(priority)})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestValidateCreate_UnknownStatusRejected(t *testing.T) {
	v := newValidator()

	_, err := v.ValidateCreate(TaskInput{Title: strPtr("Ship report"), Status: strPtr("paused")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	checked, err := v.ValidateCreate(TaskInput{Title: strPtr("Ship report"), Status: strPtr("in_progress")})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, *checked.status)
}

func TestValidateCreate_DueDateFormats(t *testing.T) {
	v := newValidator()

	for _, raw := range []string{"2026-08-29", "2026-08-29T10:30:00", "2026-08-29T10:30:00Z"} {
		checked, err := v.ValidateCreate(TaskInput{Title: strPtr("Ship report"), DueDate: strPtr(raw)})
		require.NoError(t, err, "due date %q", raw)
		require.NotNil(t, checked.dueDate)
	}

	_, err := v.ValidateCreate(TaskInput{Title: strPtr("Ship report"), DueDate: strPtr("29/08/2026")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateUpdate_TitleOptional(t *testing.T) {
	v := newValidator()

	checked, err := v.ValidateUpdate(TaskInput{Priority: intPtr(2)})
	require.NoError(t, err)
	assert.Nil(t, checked.title)
	assert.Equal(t, 2, *checked.priority)
}

func TestValidateUpdate_EmptyDueDateClears(t *testing.T) {
	v := newValidator()

	checked, err := v.ValidateUpdate(TaskInput{DueDate: strPtr("")})
	require.NoError(t, err)
	assert.True(t, checked.dueDateSet)
	assert.Nil(t, checked.dueDate)
}
