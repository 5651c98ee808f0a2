package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// StoreRepository reads the store and profile tables owned by the identity service.
type StoreRepository interface {
	GetOwnerID(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error)
	GetNickname(ctx context.Context, profileID uuid.UUID) (string, error)
}

type postgresStoreRepository struct {
	db *sql.DB
}

func NewPostgresStoreRepository(db *sql.DB) StoreRepository {
	return &postgresStoreRepository{db: db}
}

func (r *postgresStoreRepository) GetOwnerID(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM stores WHERE id = $1`, storeID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrStoreNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get store owner: %w", err)
	}
	return ownerID, nil
}

func (r *postgresStoreRepository) GetNickname(ctx context.Context, profileID uuid.UUID) (string, error) {
	var nickname sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT nickname FROM profiles WHERE id = $1`, profileID).Scan(&nickname)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrProfileNotFound
		}
		return "", fmt.Errorf("failed to get profile nickname: %w", err)
	}
	return nickname.String, nil
}
