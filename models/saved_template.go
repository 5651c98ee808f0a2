package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedTemplate is a named tournament template kept by an owner for reuse.
type SavedTemplate struct {
	ID        uuid.UUID          `json:"id"`
	OwnerID   uuid.UUID          `json:"owner_id"`
	Name      string             `json:"name"`
	Template  TournamentTemplate `json:"template"`
	CreatedAt time.Time          `json:"created_at"`
}
