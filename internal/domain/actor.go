package domain

// Role represents the access level of an actor. Authorization mechanics
// (token issuance, session handling) live outside the core; the role
// arrives as an explicit parameter on each mutating operation.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// IsElevated returns true if the role may mutate tasks it does not own.
func (r Role) IsElevated() bool {
	return r == RoleAdmin
}

// Actor identifies who performs a mutation.
type Actor struct {
	ID   int64
	Role Role
}
