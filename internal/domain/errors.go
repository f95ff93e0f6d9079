package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound     = errors.New("task not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrAlreadyDeleted   = errors.New("task already deleted")

	// Permission errors
	ErrForbidden = errors.New("not authorized to modify this task")

	// Validation errors
	ErrValidation    = errors.New("invalid input")
	ErrInvalidStatus = errors.New("invalid task status")
	ErrInvalidDate   = errors.New("invalid date format")

	// Storage / job errors
	ErrTransientStorage = errors.New("transient storage failure")
	ErrRunFailed        = errors.New("reconciliation run failed")
)
