package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tcg-tournaments/ranking"
)

var (
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrScheduleNotFound     = errors.New("recurring schedule not found")
	ErrStoreNotFound        = errors.New("store not found")
	ErrTemplateNotFound     = errors.New("tournament template not found")

	// Validation errors are returned before any mutation.
	ErrValidationFailed = errors.New("validation failed")

	// State errors leave the target untouched.
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrInvalidState           = errors.New("operation not allowed in the current state")
	ErrTournamentNotOpen      = errors.New("tournament is not open for registration")
	ErrAlreadyRegistered      = errors.New("player is already registered for this tournament")
	ErrTournamentFull         = errors.New("tournament is full")
	ErrNoEligibleParticipants = ranking.ErrNoEligibleParticipants
	ErrDuplicatePodiumEntry   = ranking.ErrDuplicatePodiumEntry

	// ErrConflict means the entity changed after it was read; callers may re-read and retry.
	ErrConflict = errors.New("entity was modified concurrently")

	ErrUnauthorized = errors.New("actor is not allowed to perform this operation")
)

// TransitionError reports a rejected status change.
type TransitionError struct {
	Entity    string
	Current   string
	Requested string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Entity, e.Current, e.Requested)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Warnings collects non-fatal problems, such as failed notifications, of a successful operation.
type Warnings []string

func (w *Warnings) add(format string, args ...interface{}) {
	*w = append(*w, fmt.Sprintf(format, args...))
}
