package model

// Package model contains domain models/data structures.
// Keep it free of database- or transport-specific concerns.

// DocumentStatus controls visibility of a document to non-admin readers.
type DocumentStatus string

const (
	StatusEnabled  DocumentStatus = "enabled"
	StatusDisabled DocumentStatus = "disabled"
)

// Valid reports whether s is a known document status.
func (s DocumentStatus) Valid() bool {
	return s == StatusEnabled || s == StatusDisabled
}

// Role is the binary access role assigned to a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// IsAdmin reports whether the role grants administrative access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
