package dto

import (
	"time"

	"github.com/google/uuid"

	"nyumba/internal/domain/user"
)

type UserResponse struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	EmailVerified   bool       `json:"email_verified"`
	ActiveProfileID *uuid.UUID `json:"active_profile_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		EmailVerified:   u.EmailVerifiedAt != nil,
		ActiveProfileID: u.ActiveProfileID,
		CreatedAt:       u.CreatedAt,
	}
}
