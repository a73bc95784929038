package domain

import (
	"time"
)

// Membership links a user to a workspace with a role.
type Membership struct {
	ID          string
	UserID      string
	WorkspaceID string
	Role        Role
	CreatedAt   time.Time
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)
