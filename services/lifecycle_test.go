package services

import (
	"errors"
	"testing"

	"github.com/Dosada05/tcg-tournaments/models"
)

func TestNextTournamentStatus(t *testing.T) {
	tests := []struct {
		from    models.TournamentStatus
		cmd     tournamentCommand
		want    models.TournamentStatus
		wantErr bool
	}{
		{models.StatusDraft, cmdPublish, models.StatusPublished, false},
		{models.StatusDraft, cmdCancel, models.StatusCancelled, false},
		{models.StatusDraft, cmdStart, "", true},
		{models.StatusDraft, cmdComplete, "", true},
		{models.StatusPublished, cmdCloseRegistrations, models.StatusClosed, false},
		{models.StatusPublished, cmdStart, models.StatusInProgress, false},
		{models.StatusPublished, cmdComplete, "", true},
		{models.StatusPublished, cmdPublish, "", true},
		{models.StatusClosed, cmdStart, models.StatusInProgress, false},
		{models.StatusClosed, cmdComplete, models.StatusCompleted, false},
		{models.StatusClosed, cmdCloseRegistrations, "", true},
		{models.StatusInProgress, cmdComplete, models.StatusCompleted, false},
		{models.StatusInProgress, cmdCancel, models.StatusCancelled, false},
		{models.StatusInProgress, cmdPublish, "", true},
		{models.StatusCompleted, cmdCancel, "", true},
		{models.StatusCompleted, cmdPublish, "", true},
		{models.StatusCancelled, cmdPublish, "", true},
		{models.StatusCancelled, cmdCancel, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.cmd), func(t *testing.T) {
			got, err := nextTournamentStatus(tt.from, tt.cmd)
			if tt.wantErr {
				var terr *TransitionError
				if !errors.As(err, &terr) {
					t.Fatalf("expected *TransitionError, got %v", err)
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("expected error to wrap ErrInvalidTransition")
				}
				if terr.Current != string(tt.from) {
					t.Errorf("Current = %q, want %q", terr.Current, tt.from)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTerminalTournamentStatesHaveNoTransitions(t *testing.T) {
	for _, status := range []models.TournamentStatus{models.StatusCompleted, models.StatusCancelled} {
		if _, ok := tournamentTransitions[status]; ok {
			t.Errorf("terminal status %q has outgoing transitions", status)
		}
	}
}

func TestNextRegistrationStatus(t *testing.T) {
	tests := []struct {
		from    models.RegistrationStatus
		cmd     registrationCommand
		want    models.RegistrationStatus
		wantErr bool
	}{
		{models.RegistrationPending, cmdConfirm, models.RegistrationConfirmed, false},
		{models.RegistrationPending, cmdWithdraw, models.RegistrationWithdrawn, false},
		{models.RegistrationPending, cmdRegister, "", true},
		{models.RegistrationConfirmed, cmdMarkPresent, models.RegistrationPresent, false},
		{models.RegistrationConfirmed, cmdConfirm, "", true},
		{models.RegistrationPresent, cmdMarkAbsent, models.RegistrationAbsent, false},
		{models.RegistrationPresent, cmdWithdraw, "", true},
		{models.RegistrationAbsent, cmdMarkPresent, models.RegistrationPresent, false},
		{models.RegistrationAbsent, cmdCancelReg, "", true},
		{models.RegistrationWithdrawn, cmdRegister, models.RegistrationPending, false},
		{models.RegistrationWithdrawn, cmdConfirm, "", true},
		{models.RegistrationCancelled, cmdRegister, models.RegistrationPending, false},
		{models.RegistrationCancelled, cmdMarkPresent, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.cmd), func(t *testing.T) {
			got, err := nextRegistrationStatus(tt.from, tt.cmd)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
