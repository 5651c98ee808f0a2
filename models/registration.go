package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationPresent   RegistrationStatus = "present"
	RegistrationAbsent    RegistrationStatus = "absent"
	RegistrationWithdrawn RegistrationStatus = "withdrawn"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// IsActive reports whether the registration still holds a seat.
func (s RegistrationStatus) IsActive() bool {
	return s != RegistrationWithdrawn && s != RegistrationCancelled
}

var eligibleStatuses = []RegistrationStatus{RegistrationPresent, RegistrationConfirmed}

// EligibleStatuses returns the statuses ranked when a tournament completes.
func EligibleStatuses() []RegistrationStatus {
	return slices.Clone(eligibleStatuses)
}

// IsEligible reports whether the registration takes part in the final ranking.
func (s RegistrationStatus) IsEligible() bool {
	return slices.Contains(eligibleStatuses, s)
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Registration struct {
	ID            uuid.UUID          `json:"id"`
	TournamentID  uuid.UUID          `json:"tournament_id"`
	PlayerID      uuid.UUID          `json:"player_id"`
	Status        RegistrationStatus `json:"status"`
	PaymentStatus PaymentStatus      `json:"payment_status"`
	PaidAt        *time.Time         `json:"paid_at"`
	CheckedInAt   *time.Time         `json:"checked_in_at"`
	Position      *int               `json:"position"`
	Points        *int               `json:"points"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	PlayerNickname *string `json:"player_nickname,omitempty"`
}
