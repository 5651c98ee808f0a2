package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/google/uuid"
)

var testSecret = []byte("test-secret")

func TestAuthenticate(t *testing.T) {
	owner := models.Actor{ID: uuid.New(), Role: models.RoleOwner}
	valid, err := IssueToken(testSecret, owner, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	expired, _ := IssueToken(testSecret, owner, -time.Minute)
	foreign, _ := IssueToken([]byte("other-secret"), owner, time.Hour)
	system, _ := IssueToken(testSecret, models.Actor{ID: uuid.New(), Role: models.RoleSystem}, time.Hour)

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{"valid header", "Bearer " + valid, "", http.StatusOK},
		{"valid query token", "", "?token=" + valid, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, "", http.StatusUnauthorized},
		{"system role is never issued", "Bearer " + system, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.Actor
			h := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = ActorFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/tournaments"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && got != owner {
				t.Errorf("actor = %+v, want %+v", got, owner)
			}
		})
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	h := OptionalAuthenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); ok {
			w.WriteHeader(http.StatusAccepted)
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tournaments", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous: status = %d, want 200", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/tournaments", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}
}

func TestAuthorize(t *testing.T) {
	h := Authorize(models.RoleOwner, models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		role models.UserRole
		want int
	}{
		{models.RoleOwner, http.StatusOK},
		{models.RoleAdmin, http.StatusOK},
		{models.RolePlayer, http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/schedules", nil)
		req = req.WithContext(WithActor(req.Context(), models.Actor{ID: uuid.New(), Role: tt.role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.role, rec.Code, tt.want)
		}
	}
}
