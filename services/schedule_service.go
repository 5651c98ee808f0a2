package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/recurrence"
	"github.com/Dosada05/tcg-tournaments/repositories"
	"github.com/google/uuid"
)

type ScheduleService interface {
	CreateSchedule(ctx context.Context, actor models.Actor, input CreateScheduleInput) (*models.RecurringSchedule, error)
	ListSchedules(ctx context.Context, actor models.Actor, storeID uuid.UUID) ([]*models.RecurringSchedule, error)
	SetScheduleActive(ctx context.Context, actor models.Actor, id uuid.UUID, active bool) (*models.RecurringSchedule, error)
	DeleteSchedule(ctx context.Context, actor models.Actor, id uuid.UUID) error
	// GenerateNext creates the next draft occurrence. Every call creates one tournament.
	GenerateNext(ctx context.Context, actor models.Actor, scheduleID uuid.UUID) (*models.Tournament, Warnings, error)
	// GenerateDue runs GenerateNext for every active schedule that is due today.
	GenerateDue(ctx context.Context) (int, error)
}

type CreateScheduleInput struct {
	StoreID    uuid.UUID                 `json:"store_id"`
	Name       string                    `json:"name" validate:"required,min=1,max=200"`
	Template   models.TournamentTemplate `json:"template"`
	Frequency  models.Frequency          `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	DayOfWeek  *int                      `json:"day_of_week,omitempty" validate:"omitempty,gte=0,lte=6"`
	DayOfMonth *int                      `json:"day_of_month,omitempty" validate:"omitempty,gte=1,lte=31"`
	Time       string                    `json:"time" validate:"omitempty,datetime=15:04"`
}

type scheduleService struct {
	tx          repositories.Transactor
	schedules   repositories.ScheduleRepository
	tournaments repositories.TournamentRepository
	stores      repositories.StoreRepository
	events      *Events
	clock       Clock
	logger      *slog.Logger
}

func NewScheduleService(
	tx repositories.Transactor,
	schedules repositories.ScheduleRepository,
	tournaments repositories.TournamentRepository,
	stores repositories.StoreRepository,
	events *Events,
	clock Clock,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		tx:          tx,
		schedules:   schedules,
		tournaments: tournaments,
		stores:      stores,
		events:      events,
		clock:       clock,
		logger:      logger,
	}
}

func (s *scheduleService) CreateSchedule(ctx context.Context, actor models.Actor, input CreateScheduleInput) (*models.RecurringSchedule, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.StoreID == uuid.Nil {
		return nil, validationError("store_id is required")
	}
	if err := checkScheduleDays(input.Frequency, input.DayOfWeek, input.DayOfMonth); err != nil {
		return nil, err
	}
	if err := checkTemplate(input.Template); err != nil {
		return nil, err
	}
	if err := authorizeStore(ctx, s.stores, actor, input.StoreID); err != nil {
		return nil, err
	}

	schedule := &models.RecurringSchedule{
		ID:         uuid.New(),
		StoreID:    input.StoreID,
		Name:       input.Name,
		Template:   input.Template,
		Frequency:  input.Frequency,
		DayOfWeek:  input.DayOfWeek,
		DayOfMonth: input.DayOfMonth,
		Time:       input.Time,
		IsActive:   true,
	}
	if schedule.Time == "" {
		schedule.Time = defaultTournamentStartClock
	}
	if err := s.schedules.Create(ctx, nil, schedule); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "recurring schedule created",
		slog.String("schedule_id", schedule.ID.String()),
		slog.String("frequency", string(schedule.Frequency)))
	return schedule, nil
}

func (s *scheduleService) ListSchedules(ctx context.Context, actor models.Actor, storeID uuid.UUID) ([]*models.RecurringSchedule, error) {
	if err := authorizeStore(ctx, s.stores, actor, storeID); err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring schedules: %w", err)
	}
	return schedules, nil
}

func (s *scheduleService) SetScheduleActive(ctx context.Context, actor models.Actor, id uuid.UUID, active bool) (*models.RecurringSchedule, error) {
	if _, err := s.loadForManagement(ctx, actor, id); err != nil {
		return nil, err
	}
	schedule, err := s.schedules.SetActive(ctx, id, active)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return schedule, nil
}

// DeleteSchedule keeps the tournaments it spawned; their schedule link is cleared.
func (s *scheduleService) DeleteSchedule(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if _, err := s.loadForManagement(ctx, actor, id); err != nil {
		return err
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "recurring schedule deleted", slog.String("schedule_id", id.String()))
	return nil
}

func (s *scheduleService) GenerateNext(ctx context.Context, actor models.Actor, scheduleID uuid.UUID) (*models.Tournament, Warnings, error) {
	schedule, err := s.loadForManagement(ctx, actor, scheduleID)
	if err != nil {
		return nil, nil, err
	}

	next, ok := recurrence.NextOccurrence(schedule.Frequency, schedule.DayOfWeek, schedule.DayOfMonth, s.clock.Today())
	if !ok {
		return nil, nil, fmt.Errorf("%w: schedule day does not match its %s frequency", ErrInvalidState, schedule.Frequency)
	}

	t := tournamentFromTemplate(schedule, next)
	if err := checkTournamentFields(t); err != nil {
		return nil, nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournaments.Create(ctx, exec, t); err != nil {
			return err
		}
		return s.schedules.SetNextOccurrence(ctx, exec, schedule.ID, next)
	})
	if err != nil {
		return nil, nil, mapRepoError(err)
	}

	s.logger.InfoContext(ctx, "recurring tournament generated",
		slog.String("schedule_id", schedule.ID.String()),
		slog.String("tournament_id", t.ID.String()),
		slog.String("date", next.String()))

	var w Warnings
	s.events.notify(ctx, &w, models.NotificationRequest{
		Audience: models.ToAdmins(),
		Type:     models.NotificationTournamentCreated,
		Title:    "New tournament",
		Message:  fmt.Sprintf("%s was scheduled for %s", t.Name, next),
		Data:     tournamentData(t),
	}, slog.String("schedule_id", schedule.ID.String()))
	return t, w, nil
}

func (s *scheduleService) GenerateDue(ctx context.Context) (int, error) {
	today := s.clock.Today()
	due, err := s.schedules.ListDue(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list due schedules: %w", err)
	}

	generated := 0
	var errs []error
	for _, schedule := range due {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, _, err := s.GenerateNext(ctx, models.SystemActor, schedule.ID); err != nil {
			s.logger.ErrorContext(ctx, "recurring generation failed",
				slog.String("schedule_id", schedule.ID.String()), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("schedule %s: %w", schedule.ID, err))
			continue
		}
		generated++
	}
	s.logger.InfoContext(ctx, "recurring generation run finished",
		slog.String("date", today.String()), slog.Int("due", len(due)), slog.Int("generated", generated))
	return generated, errors.Join(errs...)
}

// loadForManagement returns ErrScheduleNotFound before checking ownership.
func (s *scheduleService) loadForManagement(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.RecurringSchedule, error) {
	schedule, err := s.schedules.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := authorizeStore(ctx, s.stores, actor, schedule.StoreID); err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return schedule, nil
}

func checkScheduleDays(freq models.Frequency, dayOfWeek, dayOfMonth *int) error {
	switch freq {
	case models.FrequencyMonthly:
		if dayOfMonth == nil || dayOfWeek != nil {
			return validationError("monthly schedules need day_of_month and no day_of_week")
		}
	case models.FrequencyWeekly, models.FrequencyBiweekly:
		if dayOfWeek == nil || dayOfMonth != nil {
			return validationError("%s schedules need day_of_week and no day_of_month", freq)
		}
	default:
		return validationError("unknown frequency %q", freq)
	}
	return nil
}

func checkTemplate(tpl models.TournamentTemplate) error {
	if err := validateStruct(tpl); err != nil {
		return err
	}
	minP := defaultMinParticipants
	if tpl.MinParticipants != nil {
		minP = *tpl.MinParticipants
	}
	if tpl.MaxParticipants != nil && *tpl.MaxParticipants < minP {
		return validationError("template max_participants (%d) must not be lower than min_participants (%d)", *tpl.MaxParticipants, minP)
	}
	return nil
}

// scheduleFromTournament derives a schedule from the first occurrence of a recurring tournament.
func scheduleFromTournament(t *models.Tournament, rec RecurrenceInput) (*models.RecurringSchedule, error) {
	dayOfWeek, dayOfMonth := rec.DayOfWeek, rec.DayOfMonth
	switch rec.Frequency {
	case models.FrequencyMonthly:
		if dayOfMonth == nil && dayOfWeek == nil {
			d := t.StartDate.Day()
			dayOfMonth = &d
		}
	default:
		if dayOfWeek == nil && dayOfMonth == nil {
			d := int(t.StartDate.Weekday())
			dayOfWeek = &d
		}
	}
	if err := checkScheduleDays(rec.Frequency, dayOfWeek, dayOfMonth); err != nil {
		return nil, err
	}

	first := t.StartDate
	return &models.RecurringSchedule{
		ID:             uuid.New(),
		StoreID:        t.StoreID,
		Name:           t.Name,
		Template:       templateFromTournament(t),
		Frequency:      rec.Frequency,
		DayOfWeek:      dayOfWeek,
		DayOfMonth:     dayOfMonth,
		Time:           t.StartTime,
		IsActive:       true,
		NextOccurrence: &first,
	}, nil
}

func templateFromTournament(t *models.Tournament) models.TournamentTemplate {
	name, game, format := t.Name, t.Game, t.Format
	minP, fee, closes := t.MinParticipants, t.EntryFeeCents, t.RegistrationClosesMinutesBefore
	tpl := models.TournamentTemplate{
		Name:                            &name,
		Game:                            &game,
		Format:                          &format,
		Description:                     t.Description,
		Rules:                           t.Rules,
		Prizes:                          t.Prizes,
		MinParticipants:                 &minP,
		EntryFeeCents:                   &fee,
		RegistrationClosesMinutesBefore: &closes,
	}
	if t.MaxParticipants != nil {
		maxP := *t.MaxParticipants
		tpl.MaxParticipants = &maxP
	}
	return tpl
}

// tournamentFromTemplate builds the draft for date, filling template gaps with defaults.
func tournamentFromTemplate(schedule *models.RecurringSchedule, date models.Date) *models.Tournament {
	tpl := schedule.Template
	scheduleID := schedule.ID
	t := &models.Tournament{
		ID:                              uuid.New(),
		StoreID:                         schedule.StoreID,
		Name:                            schedule.Name,
		Game:                            models.GameMagic,
		Format:                          models.FormatSwiss,
		Description:                     tpl.Description,
		Rules:                           tpl.Rules,
		Prizes:                          tpl.Prizes,
		StartDate:                       date,
		StartTime:                       schedule.Time,
		MinParticipants:                 defaultMinParticipants,
		MaxParticipants:                 tpl.MaxParticipants,
		RegistrationClosesMinutesBefore: defaultClosesMinutesBefore,
		Status:                          models.StatusDraft,
		Results:                         models.TournamentResults{},
		IsRecurring:                     true,
		RecurringScheduleID:             &scheduleID,
	}
	if tpl.Name != nil && *tpl.Name != "" {
		t.Name = *tpl.Name
	}
	if tpl.Game != nil {
		t.Game = *tpl.Game
	}
	if tpl.Format != nil {
		t.Format = *tpl.Format
	}
	if tpl.MinParticipants != nil {
		t.MinParticipants = *tpl.MinParticipants
	}
	if tpl.EntryFeeCents != nil {
		t.EntryFeeCents = *tpl.EntryFeeCents
	}
	if tpl.RegistrationClosesMinutesBefore != nil {
		t.RegistrationClosesMinutesBefore = *tpl.RegistrationClosesMinutesBefore
	}
	if t.StartTime == "" {
		t.StartTime = defaultTournamentStartClock
	}
	return t
}
