package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentMessage is a post in a tournament's group, written by the store operator.
type TournamentMessage struct {
	ID             uuid.UUID `json:"id"`
	TournamentID   uuid.UUID `json:"tournament_id"`
	AuthorID       uuid.UUID `json:"author_id"`
	AuthorNickname *string   `json:"author_nickname,omitempty"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}
