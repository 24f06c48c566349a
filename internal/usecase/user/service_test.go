package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"nyumba/internal/domain/user"
)

type memRepo struct {
	users map[uuid.UUID]user.User
}

func (r *memRepo) Create(_ context.Context, u user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *memRepo) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (r *memRepo) GetByGoogleID(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (r *memRepo) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }

func (r *memRepo) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Name = name
	r.users[id] = u
	return nil
}

func (r *memRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r *memRepo) SetGoogleID(context.Context, uuid.UUID, string) error { return nil }

func (r *memRepo) MarkEmailVerified(context.Context, uuid.UUID) error { return nil }

func (r *memRepo) SetActiveProfile(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func TestGetMe_StripsPasswordHash(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: "hash"}
	svc := NewService(&memRepo{users: map[uuid.UUID]user.User{u.ID: u}})

	got, err := svc.GetMe(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped")
	}
}

func TestGetMe_UnknownUser(t *testing.T) {
	svc := NewService(&memRepo{users: map[uuid.UUID]user.User{}})
	if _, err := svc.GetMe(context.Background(), uuid.New()); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateMe_NothingToUpdate(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc := NewService(&memRepo{users: map[uuid.UUID]user.User{u.ID: u}})

	if _, err := svc.UpdateMe(context.Background(), u.ID, UpdateMeInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateMe_NameAndPassword(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	repo := &memRepo{users: map[uuid.UUID]user.User{u.ID: u}}
	svc := NewService(repo)

	name := "New Name"
	password := "new-password-1"
	got, err := svc.UpdateMe(context.Background(), u.ID, UpdateMeInput{Name: &name, Password: &password})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Name != "New Name" {
		t.Fatalf("expected name to change, got %q", got.Name)
	}

	stored := repo.users[u.ID]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)); err != nil {
		t.Fatalf("expected stored hash to match the new password: %v", err)
	}
}

func TestUpdateMe_KeepsSurroundingSpacesInPassword(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	repo := &memRepo{users: map[uuid.UUID]user.User{u.ID: u}}
	svc := NewService(repo)

	spaced := " new-password-1 "
	if _, err := svc.UpdateMe(context.Background(), u.ID, UpdateMeInput{Password: &spaced}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	stored := repo.users[u.ID]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(spaced)); err != nil {
		t.Fatalf("expected stored hash to match the exact string given: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password-1")); err == nil {
		t.Fatalf("expected the trimmed variant not to match")
	}
}

func TestUpdateMe_RejectsBlankNameAndShortPassword(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc := NewService(&memRepo{users: map[uuid.UUID]user.User{u.ID: u}})

	blank := "   "
	if _, err := svc.UpdateMe(context.Background(), u.ID, UpdateMeInput{Name: &blank}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}

	short := "short"
	if _, err := svc.UpdateMe(context.Background(), u.ID, UpdateMeInput{Password: &short}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
}
