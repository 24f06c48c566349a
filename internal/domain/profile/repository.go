package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("profile not found")
	ErrTypeExists = errors.New("profile type already exists for user")
)

type Repository interface {
	// Create inserts the profile and its detail record atomically.
	Create(ctx context.Context, p Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Profile, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
	ExistsByUserAndType(ctx context.Context, userID uuid.UUID, t Type) (bool, error)
	// Update persists the contact fields and the detail record atomically.
	// Type and IsCertified are never written.
	Update(ctx context.Context, p Profile) error
	// Delete removes the profile; detail and role rows go with it via
	// FK cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}

type RoleRepository interface {
	ListByProfileID(ctx context.Context, profileID uuid.UUID) ([]ProfileRole, error)
	Get(ctx context.Context, profileID uuid.UUID, role Role) (ProfileRole, error)
	// Upsert creates the (profileID, role) row with the given active state,
	// or flips the state of the existing row. Uniqueness on (profileID, role)
	// holds at all times.
	Upsert(ctx context.Context, profileID uuid.UUID, role Role, active bool) error
}

var ErrRoleNotFound = errors.New("profile role not found")
