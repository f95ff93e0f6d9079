package domain

import "time"

// AuditAction represents the kind of mutation recorded by an audit entry.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditEntry is an immutable record of a single mutation. Exactly one entry
// is written per successful mutating operation.
type AuditEntry struct {
	ID        int64
	TaskID    int64
	ActorID   int64
	Action    AuditAction
	OldValue  string
	NewValue  string
	CreatedAt time.Time
}
