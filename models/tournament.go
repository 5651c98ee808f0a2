package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TournamentStatus mirrors the status column of the tournaments table.
type TournamentStatus string

const (
	StatusDraft      TournamentStatus = "draft"
	StatusPublished  TournamentStatus = "published"
	StatusClosed     TournamentStatus = "closed"
	StatusInProgress TournamentStatus = "in_progress"
	StatusCompleted  TournamentStatus = "completed"
	StatusCancelled  TournamentStatus = "cancelled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusClosed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AcceptsCheckIn reports whether operators may mark attendance in this status.
func (s TournamentStatus) AcceptsCheckIn() bool {
	return s == StatusPublished || s == StatusClosed || s == StatusInProgress
}

type GameType string

const (
	GameMagic    GameType = "magic"
	GamePokemon  GameType = "pokemon"
	GameOnePiece GameType = "onepiece"
	GameYugioh   GameType = "yugioh"
	GameOther    GameType = "other"
)

type TournamentFormat string

const (
	FormatSwiss             TournamentFormat = "swiss"
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatOther             TournamentFormat = "other"
)

type TournamentResult struct {
	Position int       `json:"position"`
	PlayerID uuid.UUID `json:"player_id"`
	Points   int       `json:"points"`
}

// TournamentResults is stored as a JSONB array.
type TournamentResults []TournamentResult

func (r TournamentResults) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

func (r *TournamentResults) Scan(src interface{}) error {
	return scanJSONB(src, r)
}

type Tournament struct {
	ID                              uuid.UUID         `json:"id"`
	StoreID                         uuid.UUID         `json:"store_id"`
	Name                            string            `json:"name"`
	Game                            GameType          `json:"game"`
	Format                          TournamentFormat  `json:"format"`
	Description                     *string           `json:"description,omitempty"`
	Rules                           *string           `json:"rules,omitempty"`
	Prizes                          *string           `json:"prizes,omitempty"`
	StartDate                       Date              `json:"start_date"`
	StartTime                       string            `json:"start_time"`
	EndDate                         *Date             `json:"end_date,omitempty"`
	EndTime                         *string           `json:"end_time,omitempty"`
	MinParticipants                 int               `json:"min_participants"`
	MaxParticipants                 *int              `json:"max_participants"`
	EntryFeeCents                   int64             `json:"entry_fee_cents"`
	RegistrationClosesMinutesBefore int               `json:"registration_closes_minutes_before"`
	Status                          TournamentStatus  `json:"status"`
	Results                         TournamentResults `json:"results"`
	IsRecurring                     bool              `json:"is_recurring"`
	RecurringScheduleID             *uuid.UUID        `json:"recurring_schedule_id,omitempty"`
	CreatedAt                       time.Time         `json:"created_at"`
	UpdatedAt                       time.Time         `json:"updated_at"`

	// Populated by the detail view only.
	Registrations []*Registration `json:"registrations,omitempty"`
}
