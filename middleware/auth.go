package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/tcg-tournaments/models"
)

var errMissingToken = errors.New("missing bearer token")

// Authenticate requires a valid bearer token and stores the actor in the request context.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := actorFromRequest(r, secret)
			if err != nil {
				slog.DebugContext(r.Context(), "authentication failed", slog.Any("error", err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// OptionalAuthenticate lets anonymous requests through but rejects malformed or expired tokens.
func OptionalAuthenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := actorFromRequest(r, secret)
			switch {
			case errors.Is(err, errMissingToken):
				next.ServeHTTP(w, r)
			case err != nil:
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
			default:
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
			}
		})
	}
}

// Authorize allows only actors with one of roles. It must run after Authenticate.
func Authorize(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if role == actor.Role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func actorFromRequest(r *http.Request, secret []byte) (models.Actor, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		// Browsers cannot set headers on websocket upgrades.
		if token := r.URL.Query().Get("token"); token != "" {
			return ParseToken(secret, token)
		}
		return models.Actor{}, errMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return models.Actor{}, errors.New("authorization header must be 'Bearer <token>'")
	}
	return ParseToken(secret, strings.TrimSpace(token))
}
