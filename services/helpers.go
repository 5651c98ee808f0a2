package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/Dosada05/tcg-tournaments/live"
	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Clock supplies the current instant and the location used to derive "today".
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) Today() models.Date {
	return models.DateOf(c.Now().In(c.Location))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func validateStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			if fe.Param() != "" {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			} else {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
			}
		}
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", ErrValidationFailed, err)
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

// canManage reports whether actor may mutate entities of a store owned by ownerID.
func canManage(actor models.Actor, ownerID uuid.UUID) bool {
	if actor.IsPrivileged() {
		return true
	}
	return actor.ID != uuid.Nil && actor.ID == ownerID
}

// authorizeStore resolves the store owner and checks actor against it.
func authorizeStore(ctx context.Context, stores repositories.StoreRepository, actor models.Actor, storeID uuid.UUID) error {
	if actor.IsPrivileged() {
		return nil
	}
	ownerID, err := stores.GetOwnerID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrStoreNotFound) {
			return ErrStoreNotFound
		}
		return fmt.Errorf("failed to resolve store owner: %w", err)
	}
	if !canManage(actor, ownerID) {
		return ErrUnauthorized
	}
	return nil
}

// mapRepoError translates storage errors into the service taxonomy.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrScheduleNotFound):
		return ErrScheduleNotFound
	case errors.Is(err, repositories.ErrTemplateNotFound):
		return ErrTemplateNotFound
	case errors.Is(err, repositories.ErrMessageInvalidTournament):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrStoreNotFound),
		errors.Is(err, repositories.ErrTournamentInvalidStore),
		errors.Is(err, repositories.ErrScheduleInvalidStore):
		return ErrStoreNotFound
	case errors.Is(err, repositories.ErrStatusConflict):
		return ErrConflict
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrTournamentConstraintViolate),
		errors.Is(err, repositories.ErrScheduleDayMismatch),
		errors.Is(err, repositories.ErrRegistrationPlayerInvalid):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return err
}

// Notifier delivers notification requests. A delivery failure never undoes a committed change.
type Notifier interface {
	Notify(ctx context.Context, req models.NotificationRequest) error
}

type repositoryNotifier struct {
	repo repositories.NotificationRepository
}

// NewNotifier stores notifications in the notifications table.
func NewNotifier(repo repositories.NotificationRepository) Notifier {
	return &repositoryNotifier{repo: repo}
}

func (n *repositoryNotifier) Notify(ctx context.Context, req models.NotificationRequest) error {
	_, err := n.repo.CreateForAudience(ctx, req)
	return err
}

// Events emits the side effects of committed mutations: notifications and live room messages.
type Events struct {
	notifier    Notifier
	broadcaster live.Broadcaster
	logger      *slog.Logger
}

func NewEvents(notifier Notifier, broadcaster live.Broadcaster, logger *slog.Logger) *Events {
	return &Events{notifier: notifier, broadcaster: broadcaster, logger: logger}
}

// notify sends req and records a warning if delivery fails.
func (e *Events) notify(ctx context.Context, w *Warnings, req models.NotificationRequest, attrs ...slog.Attr) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, req); err != nil {
		args := []any{slog.String("type", string(req.Type)), slog.String("audience", string(req.Audience.Kind)), slog.Any("error", err)}
		for _, a := range attrs {
			args = append(args, a)
		}
		e.logger.WarnContext(ctx, "notification delivery failed", args...)
		w.add("notification %s to %s was not delivered", req.Type, req.Audience.Kind)
	}
}

func (e *Events) broadcast(tournamentID uuid.UUID, eventType string, payload interface{}) {
	if e.broadcaster == nil {
		return
	}
	e.broadcaster.BroadcastToRoom(live.RoomForTournament(tournamentID), live.Message{Type: eventType, Payload: payload})
}

func tournamentData(t *models.Tournament) map[string]interface{} {
	return map[string]interface{}{"tournament_id": t.ID.String()}
}
