package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTournamentCreated     NotificationType = "tournament_created"
	NotificationTournamentPublished   NotificationType = "tournament_published"
	NotificationTournamentStarted     NotificationType = "tournament_started"
	NotificationTournamentUpdated     NotificationType = "tournament_updated"
	NotificationNewRegistration       NotificationType = "new_registration"
	NotificationRegistrationWithdrawn NotificationType = "registration_withdrawn"
	NotificationRegistrationCancelled NotificationType = "registration_cancelled"
	NotificationTournamentMessage     NotificationType = "tournament_message"
)

type AudienceKind string

const (
	AudienceUser        AudienceKind = "user"
	AudienceAdmins      AudienceKind = "admins"
	AudienceRegistrants AudienceKind = "registrants"
)

// Audience selects the recipients of a notification.
type Audience struct {
	Kind         AudienceKind
	UserID       uuid.UUID
	TournamentID uuid.UUID
}

func ToUser(id uuid.UUID) Audience { return Audience{Kind: AudienceUser, UserID: id} }

func ToAdmins() Audience { return Audience{Kind: AudienceAdmins} }

// ToRegistrants targets every active registrant of the tournament.
func ToRegistrants(tournamentID uuid.UUID) Audience {
	return Audience{Kind: AudienceRegistrants, TournamentID: tournamentID}
}

// NotificationRequest is emitted by the services after a successful mutation.
type NotificationRequest struct {
	Audience Audience
	Type     NotificationType
	Title    string
	Message  string
	Data     map[string]interface{}
}

type Notification struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"user_id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   *string                `json:"message"`
	Data      map[string]interface{} `json:"data"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}
