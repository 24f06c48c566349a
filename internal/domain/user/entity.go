package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID
	Email           string
	Name            string
	PasswordHash    string
	GoogleID        *string
	EmailVerifiedAt *time.Time
	// ActiveProfileID is a weak reference: nil, or the id of one of the
	// user's own profiles.
	ActiveProfileID *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
