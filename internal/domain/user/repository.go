package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByGoogleID(ctx context.Context, googleID string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	SetGoogleID(ctx context.Context, id uuid.UUID, googleID string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	SetActiveProfile(ctx context.Context, id uuid.UUID, profileID uuid.UUID) error
}
