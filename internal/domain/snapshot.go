package domain

import "time"

// Snapshot is an append-only daily record of a task's status. At most one
// snapshot exists per (task, log date) pair; once committed it is never
// updated or deleted.
type Snapshot struct {
	ID        int64
	TaskID    int64
	Status    TaskStatus
	LogDate   time.Time // calendar date, no time component
	Notes     string
	CreatedAt time.Time
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
