package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// TournamentTemplate is the partial tournament used to seed each generated occurrence.
// Nil fields fall back to defaults at generation time.
type TournamentTemplate struct {
	Name                            *string           `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Game                            *GameType         `json:"game,omitempty" validate:"omitempty,oneof=magic pokemon onepiece yugioh other"`
	Format                          *TournamentFormat `json:"format,omitempty" validate:"omitempty,oneof=swiss single_elimination round_robin other"`
	Description                     *string           `json:"description,omitempty"`
	Rules                           *string           `json:"rules,omitempty"`
	Prizes                          *string           `json:"prizes,omitempty"`
	MinParticipants                 *int              `json:"min_participants,omitempty" validate:"omitempty,gte=2"`
	MaxParticipants                 *int              `json:"max_participants,omitempty" validate:"omitempty,gte=2"`
	EntryFeeCents                   *int64            `json:"entry_fee_cents,omitempty" validate:"omitempty,gte=0"`
	RegistrationClosesMinutesBefore *int              `json:"registration_closes_minutes_before,omitempty" validate:"omitempty,gte=0"`
}

func (t TournamentTemplate) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *TournamentTemplate) Scan(src interface{}) error {
	return scanJSONB(src, t)
}

type RecurringSchedule struct {
	ID             uuid.UUID          `json:"id"`
	StoreID        uuid.UUID          `json:"store_id"`
	Name           string             `json:"name"`
	Template       TournamentTemplate `json:"template"`
	Frequency      Frequency          `json:"frequency"`
	DayOfWeek      *int               `json:"day_of_week"`
	DayOfMonth     *int               `json:"day_of_month"`
	Time           string             `json:"time"`
	IsActive       bool               `json:"is_active"`
	NextOccurrence *Date              `json:"next_occurrence"`
	CreatedAt      time.Time          `json:"created_at"`
}
