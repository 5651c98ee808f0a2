package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dosada05/tcg-tournaments/live"
	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/google/uuid"
)

func TestPostMessage_NotifiesRegistrantsAndBroadcasts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tour := f.seedTournament(models.StatusPublished, nil)
	f.seedRegistration(tour.ID, models.RegistrationConfirmed)
	f.db.nicknames[f.owner.ID] = "gamestore"

	long := strings.Repeat("é", 120)
	msg, w, err := f.messages.PostMessage(ctx, f.owner, tour.ID, PostMessageInput{Message: "  " + long + "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
	if msg.Message != long || msg.AuthorID != f.owner.ID {
		t.Fatalf("message = %+v", msg)
	}
	if msg.AuthorNickname == nil || *msg.AuthorNickname != "gamestore" {
		t.Errorf("author nickname = %v", msg.AuthorNickname)
	}

	sent := f.notifier.sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sent))
	}
	req := sent[0]
	if req.Type != models.NotificationTournamentMessage || req.Audience != models.ToRegistrants(tour.ID) {
		t.Errorf("notification = %+v", req)
	}
	if want := strings.Repeat("é", 100) + "..."; req.Message != want {
		t.Errorf("preview = %q, want %q", req.Message, want)
	}
	if req.Data["message_id"] != msg.ID.String() {
		t.Errorf("data = %v", req.Data)
	}

	var posted bool
	for _, m := range f.broadcaster.messages {
		if m.Type == live.EventMessagePosted && m.RoomID == live.RoomForTournament(tour.ID) {
			posted = true
		}
	}
	if !posted {
		t.Errorf("message was not broadcast to the tournament room")
	}
}

func TestPostMessage_Rejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tour := f.seedTournament(models.StatusPublished, nil)
	reg := f.seedRegistration(tour.ID, models.RegistrationConfirmed)

	tests := []struct {
		name       string
		actor      models.Actor
		tournament uuid.UUID
		text       string
		wantErr    error
	}{
		{"blank message", f.owner, tour.ID, "   ", ErrValidationFailed},
		{"too long", f.owner, tour.ID, strings.Repeat("x", 2001), ErrValidationFailed},
		{"registered player", player(reg.PlayerID), tour.ID, "hello", ErrUnauthorized},
		{"anonymous", models.Actor{}, tour.ID, "hello", ErrUnauthorized},
		{"unknown tournament", f.owner, uuid.New(), "hello", ErrTournamentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.messages.PostMessage(ctx, tt.actor, tt.tournament, PostMessageInput{Message: tt.text})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
	if n := len(f.notifier.sent()); n != 0 {
		t.Errorf("rejected posts sent %d notifications", n)
	}
}

func TestListMessages_Readers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tour := f.seedTournament(models.StatusPublished, nil)
	active := f.seedRegistration(tour.ID, models.RegistrationPending)
	withdrawn := f.seedRegistration(tour.ID, models.RegistrationWithdrawn)

	for _, text := range []string{"doors open at 18:30", "bring your decklist"} {
		if _, _, err := f.messages.PostMessage(ctx, f.owner, tour.ID, PostMessageInput{Message: text}); err != nil {
			t.Fatalf("PostMessage: %v", err)
		}
	}

	tests := []struct {
		name    string
		actor   models.Actor
		wantErr error
	}{
		{"operator", f.owner, nil},
		{"admin", models.Actor{ID: uuid.New(), Role: models.RoleAdmin}, nil},
		{"active registrant", player(active.PlayerID), nil},
		{"withdrawn registrant", player(withdrawn.PlayerID), ErrUnauthorized},
		{"stranger", player(uuid.New()), ErrUnauthorized},
		{"anonymous", models.Actor{}, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := f.messages.ListMessages(ctx, tt.actor, tour.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				return
			}
			if len(msgs) != 2 || msgs[0].Message != "doors open at 18:30" {
				t.Fatalf("messages = %+v", msgs)
			}
		})
	}
}
