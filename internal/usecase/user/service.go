package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"nyumba/internal/domain/user"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

type UpdateMeInput struct {
	Name     *string
	Password *string
}

type Service struct {
	users user.Repository
}

func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, err
		}
		return user.User{}, ErrInternal
	}
	return sanitizeUser(usr), nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	if in.Name == nil && in.Password == nil {
		return user.User{}, ErrInvalidInput
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return user.User{}, ErrInvalidInput
		}
		if err := s.users.UpdateName(ctx, userID, name); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return user.User{}, err
			}
			return user.User{}, ErrInternal
		}
	}

	if in.Password != nil {
		if len(strings.TrimSpace(*in.Password)) < 8 {
			return user.User{}, ErrInvalidInput
		}
		// Hash the password exactly as given so it matches what Login compares.
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return user.User{}, ErrInternal
		}
		if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return user.User{}, err
			}
			return user.User{}, ErrInternal
		}
	}

	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(updated), nil
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
