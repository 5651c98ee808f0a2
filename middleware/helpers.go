package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Claims carried by access tokens. The subject is the profile id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the authenticated actor, or the anonymous actor and false.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(models.Actor)
	return actor, ok
}

// ParseToken verifies an HS256 token and converts its claims into an actor.
func ParseToken(secret []byte, raw string) (models.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return models.Actor{}, err
	}
	if !token.Valid {
		return models.Actor{}, errors.New("token is not valid")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid subject claim: %w", err)
	}
	role := models.UserRole(claims.Role)
	switch role {
	case models.RolePlayer, models.RoleOwner, models.RoleAdmin:
	default:
		return models.Actor{}, fmt.Errorf("invalid role claim %q", claims.Role)
	}
	return models.Actor{ID: id, Role: role}, nil
}

// IssueToken signs an access token for actor. Used by tooling and tests; production
// tokens come from the identity service.
func IssueToken(secret []byte, actor models.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
