package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tcg-tournaments/live"
	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/ranking"
	"github.com/Dosada05/tcg-tournaments/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMinParticipants      = 2
	defaultClosesMinutesBefore  = 30
	defaultTournamentStartClock = "18:00"
)

// publicStatuses are visible in listings to actors that do not manage the store.
var publicStatuses = []models.TournamentStatus{models.StatusPublished, models.StatusClosed, models.StatusInProgress}

// ResultsPublisher stores a public snapshot of a completed tournament.
type ResultsPublisher interface {
	Publish(ctx context.Context, t *models.Tournament, nicknames map[string]string, completedAt time.Time) (string, error)
}

type TournamentService interface {
	CreateTournament(ctx context.Context, actor models.Actor, input CreateTournamentInput) (*models.Tournament, Warnings, error)
	UpdateTournament(ctx context.Context, actor models.Actor, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, Warnings, error)
	Publish(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, Warnings, error)
	CloseRegistrations(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, Warnings, error)
	Start(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, Warnings, error)
	Cancel(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, Warnings, error)
	Complete(ctx context.Context, actor models.Actor, id uuid.UUID, input ranking.Input) (*models.Tournament, Warnings, error)
	GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context, actor models.Actor, filter TournamentFilter) ([]*models.Tournament, error)
}

type CreateTournamentInput struct {
	StoreID                         uuid.UUID               `json:"store_id"`
	Name                            string                  `json:"name" validate:"required,min=1,max=200"`
	Game                            models.GameType         `json:"game" validate:"required,oneof=magic pokemon onepiece yugioh other"`
	Format                          models.TournamentFormat `json:"format" validate:"required,oneof=swiss single_elimination round_robin other"`
	Description                     *string                 `json:"description,omitempty"`
	Rules                           *string                 `json:"rules,omitempty"`
	Prizes                          *string                 `json:"prizes,omitempty"`
	StartDate                       models.Date             `json:"start_date"`
	StartTime                       string                  `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndDate                         *models.Date            `json:"end_date,omitempty"`
	EndTime                         *string                 `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	MinParticipants                 *int                    `json:"min_participants,omitempty" validate:"omitempty,gte=2"`
	MaxParticipants                 *int                    `json:"max_participants,omitempty" validate:"omitempty,gte=2"`
	EntryFeeCents                   int64                   `json:"entry_fee_cents" validate:"gte=0"`
	RegistrationClosesMinutesBefore *int                    `json:"registration_closes_minutes_before,omitempty" validate:"omitempty,gte=0"`
	Recurrence                      *RecurrenceInput        `json:"recurrence,omitempty"`
	// TemplateID seeds the fields left empty from one of the actor's saved templates.
	TemplateID *uuid.UUID `json:"template_id,omitempty"`
}

// RecurrenceInput opts a new tournament into a recurring schedule. Missing days are
// taken from the start date.
type RecurrenceInput struct {
	Frequency  models.Frequency `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	DayOfWeek  *int             `json:"day_of_week,omitempty" validate:"omitempty,gte=0,lte=6"`
	DayOfMonth *int             `json:"day_of_month,omitempty" validate:"omitempty,gte=1,lte=31"`
}

// UpdateTournamentInput carries a partial edit; nil fields are left unchanged.
type UpdateTournamentInput struct {
	Name                            *string                  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Game                            *models.GameType         `json:"game,omitempty" validate:"omitempty,oneof=magic pokemon onepiece yugioh other"`
	Format                          *models.TournamentFormat `json:"format,omitempty" validate:"omitempty,oneof=swiss single_elimination round_robin other"`
	Description                     *string                  `json:"description,omitempty"`
	Rules                           *string                  `json:"rules,omitempty"`
	Prizes                          *string                  `json:"prizes,omitempty"`
	StartDate                       *models.Date             `json:"start_date,omitempty"`
	StartTime                       *string                  `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndDate                         *models.Date             `json:"end_date,omitempty"`
	EndTime                         *string                  `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	MinParticipants                 *int                     `json:"min_participants,omitempty" validate:"omitempty,gte=2"`
	MaxParticipants                 *int                     `json:"max_participants,omitempty" validate:"omitempty,gte=2"`
	UnlimitedParticipants           bool                     `json:"unlimited_participants,omitempty"`
	EntryFeeCents                   *int64                   `json:"entry_fee_cents,omitempty" validate:"omitempty,gte=0"`
	RegistrationClosesMinutesBefore *int                     `json:"registration_closes_minutes_before,omitempty" validate:"omitempty,gte=0"`
}

type TournamentFilter struct {
	StoreID  *uuid.UUID
	Game     *models.GameType
	Status   *models.TournamentStatus
	FromDate *models.Date
	ToDate   *models.Date
	Limit    int
	Offset   int
}

type tournamentService struct {
	tx            repositories.Transactor
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	schedules     repositories.ScheduleRepository
	stores        repositories.StoreRepository
	templates     repositories.TemplateRepository
	events        *Events
	results       ResultsPublisher
	clock         Clock
	logger        *slog.Logger
}

// NewTournamentService builds the tournament state machine. results may be nil.
func NewTournamentService(
	tx repositories.Transactor,
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	schedules repositories.ScheduleRepository,
	stores repositories.StoreRepository,
	templates repositories.TemplateRepository,
	events *Events,
	results ResultsPublisher,
	clock Clock,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:            tx,
		tournaments:   tournaments,
		registrations: registrations,
		schedules:     schedules,
		stores:        stores,
		templates:     templates,
		events:        events,
		results:       results,
		clock:         clock,
		logger:        logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, actor models.Actor, input CreateTournamentInput) (*models.Tournament, Warnings, error) {
	if input.TemplateID != nil {
		tpl, err := loadOwnedTemplate(ctx, s.templates, actor, *input.TemplateID)
		if err != nil {
			return nil, nil, err
		}
		applyTemplate(&input, tpl.Template)
	}
	if err := validateStruct(input); err != nil {
		return nil, nil, err
	}
	if input.StoreID == uuid.Nil {
		return nil, nil, validationError("store_id is required")
	}
	if input.StartDate.IsZero() {
		return nil, nil, validationError("start_date is required")
	}

	t := &models.Tournament{
		ID:                              uuid.New(),
		StoreID:                         input.StoreID,
		Name:                            input.Name,
		Game:                            input.Game,
		Format:                          input.Format,
		Description:                     input.Description,
		Rules:                           input.Rules,
		Prizes:                          input.Prizes,
		StartDate:                       input.StartDate,
		StartTime:                       input.StartTime,
		EndDate:                         input.EndDate,
		EndTime:                         input.EndTime,
		MinParticipants:                 defaultMinParticipants,
		MaxParticipants:                 input.MaxParticipants,
		EntryFeeCents:                   input.EntryFeeCents,
		RegistrationClosesMinutesBefore: defaultClosesMinutesBefore,
		Status:                          models.StatusDraft,
		Results:                         models.TournamentResults{},
	}
	if t.StartTime == "" {
		t.StartTime = defaultTournamentStartClock
	}
	if input.MinParticipants != nil {
		t.MinParticipants = *input.MinParticipants
	}
	if input.RegistrationClosesMinutesBefore != nil {
		t.RegistrationClosesMinutesBefore = *input.RegistrationClosesMinutesBefore
	}
	if err := checkTournamentFields(t); err != nil {
		return nil, nil, err
	}

	var schedule *models.RecurringSchedule
	if input.Recurrence != nil {
		if err := validateStruct(*input.Recurrence); err != nil {
			return nil, nil, err
		}
		var err error
		if schedule, err = scheduleFromTournament(t, *input.Recurrence); err != nil {
			return nil, nil, err
		}
	}

	if err := authorizeStore(ctx, s.stores, actor, t.StoreID); err != nil {
		return nil, nil, err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if schedule != nil {
			if err := s.schedules.Create(ctx, exec, schedule); err != nil {
				return err
			}
			t.IsRecurring = true
			t.RecurringScheduleID = &schedule.ID
		}
		return s.tournaments.Create(ctx, exec, t)
	})
	if err != nil {
		return nil, nil, mapRepoError(err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.String("tournament_id", t.ID.String()),
		slog.String("store_id", t.StoreID.String()),
		slog.Bool("recurring", t.IsRecurring))

	var w Warnings
	s.events.notify(ctx, &w, models.NotificationRequest{
		Audience: models.ToAdmins(),
		Type:     models.NotificationTournamentCreated,
		Title:    "New tournament",
		Message:  fmt.Sprintf("%s was created for %s", t.Name, t.StartDate),
		Data:     tournamentData(t),
	}, slog.String("tournament_id", t.ID.String()))
	return t, w, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, actor models.Actor, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, Warnings, error) {
	if err := validateStruct(input); err != nil {
		return nil, nil, err
	}
	current, err := s.loadForManagement(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if current.Status.IsTerminal() {
		return nil, nil, fmt.Errorf("%w: tournament is %s", ErrInvalidState, current.Status)
	}

	updated := *current
	applyTournamentPatch(&updated, input)
	if err := checkTournamentFields(&updated); err != nil {
		return nil, nil, err
	}
	if err := s.tournaments.Update(ctx, nil, &updated, current.Status); err != nil {
		return nil, nil, mapRepoError(err)
	}

	var w Warnings
	count, err := s.registrations.CountAll(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to count registrations after update",
			slog.String("tournament_id", id.String()), slog.Any("error", err))
		w.add("registrants could not be determined, no update notification sent")
	} else if count > 0 {
		s.events.notify(ctx, &w, models.NotificationRequest{
			Audience: models.ToRegistrants(id),
			Type:     models.NotificationTournamentUpdated,
			Title:    "Tournament updated",
			Message:  fmt.Sprintf("%s was updated. Check date, time and details.", updated.Name),
			Data:     tournamentData(&updated),
		}, slog.String("tournament_id", id.String()))
	}
	s.events.broadcast(id, live.EventTournamentUpdated, &updated)
	return &updated, w, nil
}

func (s *tournamentService) Publish(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, Warnings, error) {
	t, err := s.applyTransition(ctx, actor, id, cmdPublish)
	if err != nil {
		return nil, nil, err
	}
	var w Warnings
	s.events.notify(ctx, &w, models.NotificationRequest{
		Audience: models.ToAdmins(),
		Type:     models.NotificationTournamentPublished,
		Title:    "Tournament published",
		Message:  fmt.Sprintf("%s: registration is open", t.Name),
		Data:     tournamentData(t),
	}, slog.String("tournament_id", id.String()))
	return t, w, nil
}

func (s *tournamentService) CloseRegistrations(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, Warnings, error) {
	t, err := s.applyTransition(ctx, actor, id, cmdCloseRegistrations)
	if err != nil {
		return nil, nil, err
	}
	var w Warnings
	s.notifyRegistrants(ctx, &w, t, "Registration closed", fmt.Sprintf("Registration for %s is now closed.", t.Name))
	return t, w, nil
}

func (s *tournamentService) Start(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, Warnings, error) {
	t, err := s.applyTransition(ctx, actor, id, cmdStart)
	if err != nil {
		return nil, nil, err
	}
	var w Warnings
	s.events.notify(ctx, &w, models.NotificationRequest{
		Audience: models.ToAdmins(),
		Type:     models.NotificationTournamentStarted,
		Title:    "Tournament started",
		Message:  fmt.Sprintf("%s is in progress", t.Name),
		Data:     tournamentData(t),
	}, slog.String("tournament_id", id.String()))
	s.notifyRegistrants(ctx, &w, t, "Tournament started", fmt.Sprintf("%s has started!", t.Name))
	return t, w, nil
}

// Cancel leaves payments untouched; refunds are recorded by the operator.
func (s *tournamentService) Cancel(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, Warnings, error) {
	t, err := s.applyTransition(ctx, actor, id, cmdCancel)
	if err != nil {
		return nil, nil, err
	}
	var w Warnings
	s.notifyRegistrants(ctx, &w, t, "Tournament cancelled", fmt.Sprintf("%s has been cancelled.", t.Name))
	return t, w, nil
}

func (s *tournamentService) Complete(ctx context.Context, actor models.Actor, id uuid.UUID, input ranking.Input) (*models.Tournament, Warnings, error) {
	if err := validateStruct(input); err != nil {
		return nil, nil, err
	}
	current, err := s.loadForManagement(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if _, err := nextTournamentStatus(current.Status, cmdComplete); err != nil {
		return nil, nil, err
	}

	var (
		completed *models.Tournament
		eligible  []*models.Registration
	)
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.tournaments.GetForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if locked.Status != current.Status {
			return ErrConflict
		}

		eligible, err = s.registrations.ListByTournament(ctx, exec, id, models.EligibleStatuses())
		if err != nil {
			return err
		}
		results, err := rankEligible(eligible, input)
		if err != nil {
			return err
		}
		if completed, err = s.tournaments.Complete(ctx, exec, id, current.Status, results); err != nil {
			return err
		}
		return s.registrations.SetResults(ctx, exec, id, results)
	})
	if err != nil {
		return nil, nil, mapRepoError(err)
	}

	s.logger.InfoContext(ctx, "tournament completed",
		slog.String("tournament_id", id.String()),
		slog.Int("ranked", len(completed.Results)))

	var w Warnings
	s.notifyRegistrants(ctx, &w, completed, "Tournament completed", fmt.Sprintf("%s is over. Final standings are available.", completed.Name))
	s.events.broadcast(id, live.EventResultsPublished, completed.Results)

	if s.results != nil {
		nicknames := make(map[string]string, len(eligible))
		for _, reg := range eligible {
			if reg.PlayerNickname != nil {
				nicknames[reg.PlayerID.String()] = *reg.PlayerNickname
			}
		}
		url, err := s.results.Publish(ctx, completed, nicknames, s.clock.Now())
		if err != nil {
			s.logger.WarnContext(ctx, "failed to publish results snapshot",
				slog.String("tournament_id", id.String()), slog.Any("error", err))
			w.add("results snapshot was not published")
		} else {
			s.logger.InfoContext(ctx, "results snapshot published",
				slog.String("tournament_id", id.String()), slog.String("url", url))
		}
	}
	return completed, w, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	var (
		t    *models.Tournament
		regs []*models.Registration
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = s.tournaments.GetByID(gctx, id)
		return mapRepoError(err)
	})
	g.Go(func() error {
		var err error
		regs, err = s.registrations.ListByTournament(gctx, nil, id, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}
	t.Registrations = regs
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, actor models.Actor, filter TournamentFilter) ([]*models.Tournament, error) {
	repoFilter := repositories.ListTournamentsFilter{
		StoreID:  filter.StoreID,
		Game:     filter.Game,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}

	manager := false
	if filter.StoreID != nil {
		switch err := authorizeStore(ctx, s.stores, actor, *filter.StoreID); {
		case err == nil:
			manager = true
		case errors.Is(err, ErrUnauthorized):
		default:
			return nil, err
		}
	} else {
		manager = actor.IsPrivileged()
	}

	switch {
	case filter.Status != nil && (manager || isPublicStatus(*filter.Status)):
		repoFilter.Statuses = []models.TournamentStatus{*filter.Status}
	case filter.Status != nil:
		return []*models.Tournament{}, nil
	case !manager:
		repoFilter.Statuses = publicStatuses
	}

	tournaments, err := s.tournaments.List(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) loadForManagement(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := authorizeStore(ctx, s.stores, actor, t.StoreID); err != nil {
		return nil, err
	}
	return t, nil
}

// applyTransition moves the tournament with a compare-and-swap on the status read here.
func (s *tournamentService) applyTransition(ctx context.Context, actor models.Actor, id uuid.UUID, cmd tournamentCommand) (*models.Tournament, error) {
	current, err := s.loadForManagement(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	next, err := nextTournamentStatus(current.Status, cmd)
	if err != nil {
		return nil, err
	}
	updated, err := s.tournaments.UpdateStatus(ctx, nil, id, current.Status, next)
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.InfoContext(ctx, "tournament status changed",
		slog.String("tournament_id", id.String()),
		slog.String("from", string(current.Status)),
		slog.String("to", string(next)))
	s.events.broadcast(id, live.EventStatusChanged, map[string]interface{}{
		"tournament_id": id.String(),
		"status":        next,
	})
	return updated, nil
}

func (s *tournamentService) notifyRegistrants(ctx context.Context, w *Warnings, t *models.Tournament, title, message string) {
	s.events.notify(ctx, w, models.NotificationRequest{
		Audience: models.ToRegistrants(t.ID),
		Type:     models.NotificationTournamentUpdated,
		Title:    title,
		Message:  message,
		Data:     tournamentData(t),
	}, slog.String("tournament_id", t.ID.String()))
}

func isPublicStatus(status models.TournamentStatus) bool {
	for _, s := range publicStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func checkTournamentFields(t *models.Tournament) error {
	if t.MinParticipants < 2 {
		return validationError("min_participants must be at least 2")
	}
	if t.MaxParticipants != nil && *t.MaxParticipants < t.MinParticipants {
		return validationError("max_participants (%d) must not be lower than min_participants (%d)", *t.MaxParticipants, t.MinParticipants)
	}
	if t.EntryFeeCents < 0 {
		return validationError("entry_fee_cents must not be negative")
	}
	if t.RegistrationClosesMinutesBefore < 0 {
		return validationError("registration_closes_minutes_before must not be negative")
	}
	if _, err := t.StartDate.At(t.StartTime, time.UTC); err != nil {
		return validationError("%v", err)
	}
	if t.EndDate != nil && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate.Time) {
		return validationError("end_date must not be before start_date")
	}
	if t.EndTime != nil {
		if _, err := t.StartDate.At(*t.EndTime, time.UTC); err != nil {
			return validationError("%v", err)
		}
	}
	return nil
}

func applyTournamentPatch(t *models.Tournament, in UpdateTournamentInput) {
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Game != nil {
		t.Game = *in.Game
	}
	if in.Format != nil {
		t.Format = *in.Format
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Rules != nil {
		t.Rules = in.Rules
	}
	if in.Prizes != nil {
		t.Prizes = in.Prizes
	}
	if in.StartDate != nil && !in.StartDate.IsZero() {
		t.StartDate = *in.StartDate
	}
	if in.StartTime != nil {
		t.StartTime = *in.StartTime
	}
	if in.EndDate != nil {
		t.EndDate = in.EndDate
	}
	if in.EndTime != nil {
		t.EndTime = in.EndTime
	}
	if in.MinParticipants != nil {
		t.MinParticipants = *in.MinParticipants
	}
	if in.UnlimitedParticipants {
		t.MaxParticipants = nil
	} else if in.MaxParticipants != nil {
		t.MaxParticipants = in.MaxParticipants
	}
	if in.EntryFeeCents != nil {
		t.EntryFeeCents = *in.EntryFeeCents
	}
	if in.RegistrationClosesMinutesBefore != nil {
		t.RegistrationClosesMinutesBefore = *in.RegistrationClosesMinutesBefore
	}
}

// rankEligible assembles the final ranking from registrations in display order.
// Registrations that are not eligible are skipped.
func rankEligible(regs []*models.Registration, input ranking.Input) (models.TournamentResults, error) {
	ids := make([]uuid.UUID, 0, len(regs))
	for _, reg := range regs {
		if reg.Status.IsEligible() {
			ids = append(ids, reg.PlayerID)
		}
	}
	results, err := ranking.Assemble(ids, input)
	if err != nil {
		return nil, err
	}
	if err := ranking.Validate(results); err != nil {
		return nil, err
	}
	return results, nil
}
