package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tcg-tournaments/live"
	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/repositories"
	"github.com/google/uuid"
)

type RegistrationService interface {
	// Register enrolls playerID, or the actor when playerID is uuid.Nil.
	Register(ctx context.Context, actor models.Actor, tournamentID, playerID uuid.UUID) (*models.Registration, Warnings, error)
	Withdraw(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, Warnings, error)
	Confirm(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error)
	MarkPresent(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error)
	MarkAbsent(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error)
	CancelRegistration(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, Warnings, error)
	BulkCheckIn(ctx context.Context, actor models.Actor, tournamentID uuid.UUID) (int, error)
	MarkPaid(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error)
	MarkRefunded(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error)
	Remove(ctx context.Context, actor models.Actor, registrationID uuid.UUID) error
	ListRegistrations(ctx context.Context, tournamentID uuid.UUID) ([]*models.Registration, error)
}

type registrationService struct {
	tx            repositories.Transactor
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	stores        repositories.StoreRepository
	events        *Events
	clock         Clock
	logger        *slog.Logger
}

func NewRegistrationService(
	tx repositories.Transactor,
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	stores repositories.StoreRepository,
	events *Events,
	clock Clock,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		tx:            tx,
		tournaments:   tournaments,
		registrations: registrations,
		stores:        stores,
		events:        events,
		clock:         clock,
		logger:        logger,
	}
}

func (s *registrationService) Register(ctx context.Context, actor models.Actor, tournamentID, playerID uuid.UUID) (*models.Registration, Warnings, error) {
	if playerID == uuid.Nil {
		playerID = actor.ID
	}
	if playerID == uuid.Nil {
		return nil, nil, validationError("player_id is required")
	}

	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if actor.ID != playerID {
		if err := authorizeStore(ctx, s.stores, actor, t.StoreID); err != nil {
			return nil, nil, err
		}
	}
	if t.Status != models.StatusPublished {
		return nil, nil, ErrTournamentNotOpen
	}

	var reg *models.Registration
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.tournaments.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if locked.Status != models.StatusPublished {
			return ErrTournamentNotOpen
		}

		existing, err := s.registrations.FindByTournamentAndPlayer(ctx, exec, tournamentID, playerID)
		switch {
		case err == nil && existing.Status.IsActive():
			return ErrAlreadyRegistered
		case err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound):
			return err
		}

		if locked.MaxParticipants != nil {
			active, err := s.registrations.CountActive(ctx, exec, tournamentID)
			if err != nil {
				return err
			}
			if active >= *locked.MaxParticipants {
				return ErrTournamentFull
			}
		}

		if existing != nil {
			if _, err := nextRegistrationStatus(existing.Status, cmdRegister); err != nil {
				return err
			}
			reg, err = s.registrations.Reactivate(ctx, exec, existing.ID, existing.Status)
			return err
		}
		reg = &models.Registration{
			ID:            uuid.New(),
			TournamentID:  tournamentID,
			PlayerID:      playerID,
			Status:        models.RegistrationPending,
			PaymentStatus: models.PaymentPending,
		}
		return s.registrations.Create(ctx, exec, reg)
	})
	if err != nil {
		return nil, nil, mapRepoError(err)
	}

	s.logger.InfoContext(ctx, "player registered",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("registration_id", reg.ID.String()))

	var w Warnings
	name := s.displayName(ctx, reg)
	s.notifyOperator(ctx, &w, t, models.NotificationNewRegistration, "New registration",
		fmt.Sprintf("%s registered for %s", name, t.Name), reg)
	s.events.broadcast(tournamentID, live.EventRegistrationChanged, reg)
	return reg, w, nil
}

func (s *registrationService) Withdraw(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, Warnings, error) {
	reg, t, err := s.transition(ctx, actor, registrationID, cmdWithdraw, true, func(status models.TournamentStatus) error {
		if status != models.StatusPublished {
			return fmt.Errorf("%w: withdrawal is closed once the tournament is %s", ErrInvalidState, status)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		return nil, nil, err
	}

	var w Warnings
	s.notifyOperator(ctx, &w, t, models.NotificationRegistrationWithdrawn, "Registration withdrawn",
		fmt.Sprintf("%s withdrew from %s", s.displayName(ctx, reg), t.Name), reg)
	return reg, w, nil
}

func (s *registrationService) Confirm(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error) {
	reg, _, err := s.transition(ctx, actor, registrationID, cmdConfirm, false, requireNonTerminal)
	return reg, err
}

func (s *registrationService) MarkPresent(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error) {
	reg, _, err := s.transition(ctx, actor, registrationID, cmdMarkPresent, false, requireCheckIn)
	return reg, err
}

func (s *registrationService) MarkAbsent(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error) {
	reg, _, err := s.transition(ctx, actor, registrationID, cmdMarkAbsent, false, requireCheckIn)
	return reg, err
}

func (s *registrationService) CancelRegistration(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, Warnings, error) {
	reg, t, err := s.transition(ctx, actor, registrationID, cmdCancelReg, false, requireNonTerminal)
	if err != nil {
		return nil, nil, err
	}
	var w Warnings
	s.events.notify(ctx, &w, models.NotificationRequest{
		Audience: models.ToUser(reg.PlayerID),
		Type:     models.NotificationRegistrationCancelled,
		Title:    "Registration cancelled",
		Message:  fmt.Sprintf("Your registration for %s was cancelled by the organizer.", t.Name),
		Data:     map[string]interface{}{"tournament_id": t.ID.String(), "registration_id": reg.ID.String()},
	}, slog.String("registration_id", reg.ID.String()))
	return reg, w, nil
}

func (s *registrationService) BulkCheckIn(ctx context.Context, actor models.Actor, tournamentID uuid.UUID) (int, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return 0, mapRepoError(err)
	}
	if err := authorizeStore(ctx, s.stores, actor, t.StoreID); err != nil {
		return 0, err
	}
	if err := requireCheckIn(t.Status); err != nil {
		return 0, err
	}

	var count int
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.tournaments.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if locked.Status != t.Status {
			return ErrConflict
		}
		count, err = s.registrations.BulkCheckIn(ctx, exec, tournamentID, s.clock.Now())
		return err
	})
	if err != nil {
		return 0, mapRepoError(err)
	}

	s.logger.InfoContext(ctx, "bulk check-in completed",
		slog.String("tournament_id", tournamentID.String()), slog.Int("count", count))
	s.events.broadcast(tournamentID, live.EventCheckInCompleted, map[string]int{"count": count})
	return count, nil
}

func (s *registrationService) MarkPaid(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error) {
	reg, _, err := s.loadForOperator(ctx, actor, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.PaymentStatus == models.PaymentPaid {
		return reg, nil
	}
	now := s.clock.Now()
	return s.updatePayment(ctx, reg, models.PaymentPaid, &now)
}

func (s *registrationService) MarkRefunded(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, error) {
	reg, _, err := s.loadForOperator(ctx, actor, registrationID)
	if err != nil {
		return nil, err
	}
	switch reg.PaymentStatus {
	case models.PaymentRefunded:
		return reg, nil
	case models.PaymentPending:
		return nil, fmt.Errorf("%w: registration has not been paid", ErrInvalidState)
	}
	return s.updatePayment(ctx, reg, models.PaymentRefunded, nil)
}

func (s *registrationService) Remove(ctx context.Context, actor models.Actor, registrationID uuid.UUID) error {
	reg, t, err := s.loadForOperator(ctx, actor, registrationID)
	if err != nil {
		return err
	}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.tournaments.GetForUpdate(ctx, exec, t.ID)
		if err != nil {
			return err
		}
		if locked.Status == models.StatusCompleted {
			return fmt.Errorf("%w: registrations of a completed tournament are kept", ErrInvalidState)
		}
		return s.registrations.Delete(ctx, exec, reg.ID)
	})
	if err != nil {
		return mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "registration removed",
		slog.String("tournament_id", t.ID.String()), slog.String("registration_id", reg.ID.String()))
	s.events.broadcast(t.ID, live.EventRegistrationChanged, map[string]interface{}{
		"registration_id": reg.ID.String(),
		"removed":         true,
	})
	return nil
}

func (s *registrationService) ListRegistrations(ctx context.Context, tournamentID uuid.UUID) ([]*models.Registration, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		return nil, mapRepoError(err)
	}
	regs, err := s.registrations.ListByTournament(ctx, nil, tournamentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return regs, nil
}

// transition applies cmd to a registration while holding the tournament row, so the
// tournament guard and the registration update see the same tournament status.
func (s *registrationService) transition(
	ctx context.Context,
	actor models.Actor,
	registrationID uuid.UUID,
	cmd registrationCommand,
	allowSelf bool,
	guard func(models.TournamentStatus) error,
) (*models.Registration, *models.Tournament, error) {
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	t, err := s.tournaments.GetByID(ctx, reg.TournamentID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if !allowSelf || actor.ID != reg.PlayerID {
		if err := authorizeStore(ctx, s.stores, actor, t.StoreID); err != nil {
			return nil, nil, err
		}
	}
	next, err := nextRegistrationStatus(reg.Status, cmd)
	if err != nil {
		return nil, nil, err
	}

	var updated *models.Registration
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.tournaments.GetForUpdate(ctx, exec, t.ID)
		if err != nil {
			return err
		}
		if err := guard(locked.Status); err != nil {
			return err
		}
		var checkedInAt *time.Time
		if next == models.RegistrationPresent {
			now := s.clock.Now()
			checkedInAt = &now
		}
		updated, err = s.registrations.UpdateStatus(ctx, exec, reg.ID, reg.Status, next, checkedInAt)
		return err
	})
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	updated.PlayerNickname = reg.PlayerNickname

	s.logger.InfoContext(ctx, "registration status changed",
		slog.String("registration_id", reg.ID.String()),
		slog.String("from", string(reg.Status)),
		slog.String("to", string(next)))
	s.events.broadcast(t.ID, live.EventRegistrationChanged, updated)
	return updated, t, nil
}

func (s *registrationService) loadForOperator(ctx context.Context, actor models.Actor, registrationID uuid.UUID) (*models.Registration, *models.Tournament, error) {
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	t, err := s.tournaments.GetByID(ctx, reg.TournamentID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if err := authorizeStore(ctx, s.stores, actor, t.StoreID); err != nil {
		return nil, nil, err
	}
	return reg, t, nil
}

func (s *registrationService) updatePayment(ctx context.Context, reg *models.Registration, status models.PaymentStatus, paidAt *time.Time) (*models.Registration, error) {
	updated, err := s.registrations.UpdatePayment(ctx, nil, reg.ID, reg.PaymentStatus, status, paidAt)
	if err != nil {
		return nil, mapRepoError(err)
	}
	updated.PlayerNickname = reg.PlayerNickname
	s.events.broadcast(reg.TournamentID, live.EventRegistrationChanged, updated)
	return updated, nil
}

func (s *registrationService) notifyOperator(ctx context.Context, w *Warnings, t *models.Tournament, typ models.NotificationType, title, message string, reg *models.Registration) {
	ownerID, err := s.stores.GetOwnerID(ctx, t.StoreID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve store operator",
			slog.String("store_id", t.StoreID.String()), slog.Any("error", err))
		w.add("notification %s was not delivered: store operator unknown", typ)
		return
	}
	s.events.notify(ctx, w, models.NotificationRequest{
		Audience: models.ToUser(ownerID),
		Type:     typ,
		Title:    title,
		Message:  message,
		Data:     map[string]interface{}{"tournament_id": t.ID.String(), "registration_id": reg.ID.String()},
	}, slog.String("registration_id", reg.ID.String()))
}

func (s *registrationService) displayName(ctx context.Context, reg *models.Registration) string {
	if reg.PlayerNickname != nil && *reg.PlayerNickname != "" {
		return *reg.PlayerNickname
	}
	if name, err := s.stores.GetNickname(ctx, reg.PlayerID); err == nil && name != "" {
		return name
	}
	return "A player"
}

func requireNonTerminal(status models.TournamentStatus) error {
	if status.IsTerminal() {
		return fmt.Errorf("%w: tournament is %s", ErrInvalidState, status)
	}
	return nil
}

func requireCheckIn(status models.TournamentStatus) error {
	if !status.AcceptsCheckIn() {
		return fmt.Errorf("%w: check-in is not possible while the tournament is %s", ErrInvalidState, status)
	}
	return nil
}
