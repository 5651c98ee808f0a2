package models

import "github.com/google/uuid"

type UserRole string

const (
	RolePlayer UserRole = "player"
	RoleOwner  UserRole = "owner"
	RoleAdmin  UserRole = "admin"
	// RoleSystem is used by background jobs, never issued in tokens.
	RoleSystem UserRole = "system"
)

// Actor is the principal on whose behalf an operation runs.
type Actor struct {
	ID   uuid.UUID
	Role UserRole
}

func (a Actor) IsPrivileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

// SystemActor runs scheduled work.
var SystemActor = Actor{Role: RoleSystem}
