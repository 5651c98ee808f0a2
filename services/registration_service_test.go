package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/google/uuid"
)

func TestRegister_WithdrawAndRegisterAgainReusesRow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tour := f.seedTournament(models.StatusPublished, nil)
	p := player(uuid.New())

	first, _, err := f.registrations.Register(ctx, p, tour.ID, uuid.Nil)
	if err != nil {
		t.Fatalf("register: unexpected error: %v", err)
	}
	if first.Status != models.RegistrationPending || first.PaymentStatus != models.PaymentPending {
		t.Fatalf("new registration = %q/%q, want pending/pending", first.Status, first.PaymentStatus)
	}
	if _, _, err := f.registrations.Register(ctx, p, tour.ID, uuid.Nil); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("second register: expected ErrAlreadyRegistered, got %v", err)
	}

	withdrawn, _, err := f.registrations.Withdraw(ctx, p, first.ID)
	if err != nil {
		t.Fatalf("withdraw: unexpected error: %v", err)
	}
	if withdrawn.Status != models.RegistrationWithdrawn {
		t.Fatalf("status = %q, want withdrawn", withdrawn.Status)
	}

	again, _, err := f.registrations.Register(ctx, p, tour.ID, uuid.Nil)
	if err != nil {
		t.Fatalf("re-register: unexpected error: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("re-register created row %s, want reuse of %s", again.ID, first.ID)
	}
	if again.Status != models.RegistrationPending {
		t.Errorf("status = %q, want pending", again.Status)
	}
	if regs := f.db.registrationsOf(tour.ID); len(regs) != 1 {
		t.Errorf("%d rows for the pair, want 1", len(regs))
	}
}

func TestRegister_CapacityCountsActiveOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tour := f.seedTournament(models.StatusPublished, intPtr(8))

	for i := 0; i < 7; i++ {
		f.seedRegistration(tour.ID, models.RegistrationConfirmed)
	}
	f.seedRegistration(tour.ID, models.RegistrationWithdrawn)
	f.seedRegistration(tour.ID, models.RegistrationCancelled)

	if _, _, err := f.registrations.Register(ctx, player(uuid.New()), tour.ID, uuid.Nil); err != nil {
		t.Fatalf("8th seat: unexpected error: %v", err)
	}
	before := len(f.db.registrationsOf(tour.ID))

	_, _, err := f.registrations.Register(ctx, player(uuid.New()), tour.ID, uuid.Nil)
	if !errors.Is(err, ErrTournamentFull) {
		t.Fatalf("9th seat: expected ErrTournamentFull, got %v", err)
	}
	if after := len(f.db.registrationsOf(tour.ID)); after != before {
		t.Errorf("rows = %d after a full rejection, want %d", after, before)
	}
}

func TestRegister_ConcurrentLastSeat(t *testing.T) {
	f := newFixture()
	tour := f.seedTournament(models.StatusPublished, intPtr(2))
	f.seedRegistration(tour.ID, models.RegistrationConfirmed)

	const callers = 6
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = f.registrations.Register(context.Background(), player(uuid.New()), tour.ID, uuid.Nil)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrTournamentFull):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d registrations took the last seat, want 1", ok)
	}
}

func TestRegister_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		status  models.TournamentStatus
		actor   func(f *fixture) models.Actor
		target  uuid.UUID
		wantErr error
	}{
		{"draft", models.StatusDraft, func(*fixture) models.Actor { return player(uuid.New()) }, uuid.Nil, ErrTournamentNotOpen},
		{"closed", models.StatusClosed, func(*fixture) models.Actor { return player(uuid.New()) }, uuid.Nil, ErrTournamentNotOpen},
		{"completed", models.StatusCompleted, func(*fixture) models.Actor { return player(uuid.New()) }, uuid.Nil, ErrTournamentNotOpen},
		{"player enrolling someone else", models.StatusPublished, func(*fixture) models.Actor { return player(uuid.New()) }, uuid.New(), ErrUnauthorized},
		{"anonymous", models.StatusPublished, func(*fixture) models.Actor { return models.Actor{} }, uuid.Nil, ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tour := f.seedTournament(tt.status, nil)
			_, _, err := f.registrations.Register(context.Background(), tt.actor(f), tour.ID, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if n := len(f.db.registrationsOf(tour.ID)); n != 0 {
				t.Errorf("%d rows created, want 0", n)
			}
		})
	}

	if _, _, err := newFixture().registrations.Register(context.Background(), player(uuid.New()), uuid.New(), uuid.Nil); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("unknown tournament: expected ErrTournamentNotFound, got %v", err)
	}
}

func TestRegister_OperatorEnrollsPlayerAndIsNotified(t *testing.T) {
	f := newFixture()
	tour := f.seedTournament(models.StatusPublished, nil)
	target := uuid.New()
	f.db.nicknames[target] = "spike"

	reg, w, err := f.registrations.Register(context.Background(), f.owner, tour.ID, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.PlayerID != target {
		t.Errorf("player = %s, want %s", reg.PlayerID, target)
	}
	if len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
	sent := f.notifier.sent()
	if len(sent) != 1 || sent[0].Audience != models.ToUser(f.owner.ID) || sent[0].Type != models.NotificationNewRegistration {
		t.Fatalf("expected a new_registration notification to the operator, got %+v", sent)
	}
	if sent[0].Message != "spike registered for Friday Modern" {
		t.Errorf("message = %q", sent[0].Message)
	}
}

func TestWithdraw_Rules(t *testing.T) {
	tests := []struct {
		name    string
		tStatus models.TournamentStatus
		rStatus models.RegistrationStatus
		byOther bool
		wantErr error
	}{
		{"tournament closed", models.StatusClosed, models.RegistrationPending, false, ErrInvalidState},
		{"tournament started", models.StatusInProgress, models.RegistrationConfirmed, false, ErrInvalidState},
		{"already checked in", models.StatusPublished, models.RegistrationPresent, false, ErrInvalidState},
		{"another player", models.StatusPublished, models.RegistrationPending, true, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tour := f.seedTournament(tt.tStatus, nil)
			reg := f.seedRegistration(tour.ID, tt.rStatus)
			actor := player(reg.PlayerID)
			if tt.byOther {
				actor = player(uuid.New())
			}

			_, _, err := f.registrations.Withdraw(context.Background(), actor, reg.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got := f.db.registrationsOf(tour.ID)[0].Status; got != tt.rStatus {
				t.Errorf("status = %q, want unchanged %q", got, tt.rStatus)
			}
		})
	}
}

func TestBulkCheckIn(t *testing.T) {
	f := newFixture()
	tour := f.seedTournament(models.StatusClosed, nil)

	seed := []models.RegistrationStatus{
		models.RegistrationPending,
		models.RegistrationConfirmed,
		models.RegistrationConfirmed,
		models.RegistrationAbsent,
		models.RegistrationPresent,
		models.RegistrationWithdrawn,
		models.RegistrationCancelled,
	}
	for _, s := range seed {
		f.seedRegistration(tour.ID, s)
	}

	n, err := f.registrations.BulkCheckIn(context.Background(), f.owner, tour.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("checked in %d, want 4", n)
	}

	for i, reg := range f.db.registrationsOf(tour.ID) {
		switch seed[i] {
		case models.RegistrationWithdrawn, models.RegistrationCancelled:
			if reg.Status != seed[i] {
				t.Errorf("row %d: %q changed to %q", i, seed[i], reg.Status)
			}
		default:
			if reg.Status != models.RegistrationPresent {
				t.Errorf("row %d: status = %q, want present", i, reg.Status)
			}
		}
	}

	if n, err := f.registrations.BulkCheckIn(context.Background(), f.owner, tour.ID); err != nil || n != 0 {
		t.Errorf("second run = %d, %v; want 0, nil", n, err)
	}
}

func TestBulkCheckIn_Rejected(t *testing.T) {
	f := newFixture()
	draft := f.seedTournament(models.StatusDraft, nil)
	f.seedRegistration(draft.ID, models.RegistrationPending)

	if _, err := f.registrations.BulkCheckIn(context.Background(), f.owner, draft.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("draft: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.registrations.BulkCheckIn(context.Background(), player(uuid.New()), draft.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("player: expected ErrUnauthorized, got %v", err)
	}
}

func TestMarkPresentAndAbsent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tour := f.seedTournament(models.StatusInProgress, nil)
	reg := f.seedRegistration(tour.ID, models.RegistrationConfirmed)

	present, err := f.registrations.MarkPresent(ctx, f.owner, reg.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if present.Status != models.RegistrationPresent || present.CheckedInAt == nil || !present.CheckedInAt.Equal(testNow) {
		t.Errorf("present = %q checked_in_at=%v", present.Status, present.CheckedInAt)
	}

	absent, err := f.registrations.MarkAbsent(ctx, f.owner, reg.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if absent.Status != models.RegistrationAbsent || absent.CheckedInAt != nil {
		t.Errorf("absent = %q checked_in_at=%v", absent.Status, absent.CheckedInAt)
	}

	if _, err := f.registrations.MarkPresent(ctx, player(reg.PlayerID), reg.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("self check-in: expected ErrUnauthorized, got %v", err)
	}

	draft := f.seedTournament(models.StatusDraft, nil)
	early := f.seedRegistration(draft.ID, models.RegistrationPending)
	if _, err := f.registrations.MarkPresent(ctx, f.owner, early.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("draft check-in: expected ErrInvalidState, got %v", err)
	}
}

func TestConfirmAndCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tour := f.seedTournament(models.StatusPublished, nil)
	reg := f.seedRegistration(tour.ID, models.RegistrationPending)

	confirmed, err := f.registrations.Confirm(ctx, f.owner, reg.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != models.RegistrationConfirmed {
		t.Errorf("status = %q, want confirmed", confirmed.Status)
	}
	if _, err := f.registrations.Confirm(ctx, f.owner, reg.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double confirm: expected ErrInvalidTransition, got %v", err)
	}

	cancelled, _, err := f.registrations.CancelRegistration(ctx, f.owner, reg.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != models.RegistrationCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
	sent := f.notifier.sent()
	if len(sent) != 1 || sent[0].Audience != models.ToUser(reg.PlayerID) {
		t.Errorf("expected a notification to the player, got %+v", sent)
	}
}

func TestPayments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tour := f.seedTournament(models.StatusPublished, nil)
	reg := f.seedRegistration(tour.ID, models.RegistrationConfirmed)

	if _, err := f.registrations.MarkRefunded(ctx, f.owner, reg.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("refund unpaid: expected ErrInvalidState, got %v", err)
	}

	paid, err := f.registrations.MarkPaid(ctx, f.owner, reg.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.PaymentStatus != models.PaymentPaid || paid.PaidAt == nil {
		t.Fatalf("payment = %q paid_at=%v", paid.PaymentStatus, paid.PaidAt)
	}
	again, err := f.registrations.MarkPaid(ctx, f.owner, reg.ID)
	if err != nil || again.PaymentStatus != models.PaymentPaid {
		t.Errorf("second MarkPaid = %v, %v", again, err)
	}

	refunded, err := f.registrations.MarkRefunded(ctx, f.owner, reg.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refunded.PaymentStatus != models.PaymentRefunded || refunded.PaidAt != nil {
		t.Errorf("payment = %q paid_at=%v", refunded.PaymentStatus, refunded.PaidAt)
	}
	if refunded.Status != models.RegistrationConfirmed {
		t.Errorf("payment must not change registration status, got %q", refunded.Status)
	}
}

func TestMarkRefunded_ConflictWhenPaymentChangesUnderneath(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tour := f.seedTournament(models.StatusPublished, nil)
	reg := f.seedRegistration(tour.ID, models.RegistrationConfirmed)
	if _, err := f.registrations.MarkPaid(ctx, f.owner, reg.ID); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	// The payment is reverted after the refund has read it as paid.
	f.db.beforePaymentUpdate = func() {
		f.db.mu.Lock()
		defer f.db.mu.Unlock()
		row := f.db.registrations[reg.ID]
		row.reg.PaymentStatus, row.reg.PaidAt = models.PaymentPending, nil
		f.db.registrations[reg.ID] = row
	}

	if _, err := f.registrations.MarkRefunded(ctx, f.owner, reg.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	f.db.beforePaymentUpdate = nil

	f.db.mu.Lock()
	got := f.db.registrations[reg.ID].reg.PaymentStatus
	f.db.mu.Unlock()
	if got != models.PaymentPending {
		t.Fatalf("payment = %q, want pending to be left untouched", got)
	}
}

func TestRemove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	open := f.seedTournament(models.StatusPublished, nil)
	reg := f.seedRegistration(open.ID, models.RegistrationPending)
	if err := f.registrations.Remove(ctx, f.owner, reg.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(f.db.registrationsOf(open.ID)); n != 0 {
		t.Errorf("%d rows left, want 0", n)
	}

	done := f.seedTournament(models.StatusCompleted, nil)
	kept := f.seedRegistration(done.ID, models.RegistrationPresent)
	if err := f.registrations.Remove(ctx, f.owner, kept.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("completed: expected ErrInvalidState, got %v", err)
	}
	if err := f.registrations.Remove(ctx, f.owner, uuid.New()); !errors.Is(err, ErrRegistrationNotFound) {
		t.Errorf("unknown: expected ErrRegistrationNotFound, got %v", err)
	}
}
