package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"nyumba/internal/domain/profile"
	"nyumba/internal/domain/user"
	ucprofile "nyumba/internal/usecase/profile"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrInternal               = errors.New("internal error")
)

const (
	verifyTokenPrefix = "verify:"
	resetTokenPrefix  = "pwreset:"

	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	ProfileType profile.Type

	FirstName    *string
	LastName     *string
	BusinessName *string
}

type LoginInput struct {
	Email    string
	Password string
}

// TokenStore keeps one-shot verification and reset tokens with a TTL.
type TokenStore interface {
	SetToken(ctx context.Context, key, value string, ttl time.Duration) error
	ConsumeToken(ctx context.Context, key string) (string, bool, error)
}

// Notifier delivers account emails fire-and-forget; callers never depend on
// delivery succeeding.
type Notifier interface {
	SendVerificationEmail(to, name, token string)
	SendPasswordResetEmail(to, name, token string)
}

// Provisioner creates the signup profile, best-effort.
type Provisioner interface {
	AutoProvision(ctx context.Context, userID uuid.UUID, t profile.Type, seed ucprofile.SeedInput)
}

// GoogleVerifier validates a Google ID token and returns the claims this
// service cares about.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (GoogleUser, error)
	ExchangeCode(ctx context.Context, code string) (GoogleUser, error)
}

type GoogleUser struct {
	Sub       string
	Email     string
	FirstName string
	LastName  string
}

type Service struct {
	users       user.Repository
	provisioner Provisioner
	tokens      TokenStore
	notifier    Notifier
	google      GoogleVerifier
	logger      *log.Logger
}

func NewService(users user.Repository, provisioner Provisioner, tokens TokenStore, notifier Notifier, google GoogleVerifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		users:       users,
		provisioner: provisioner,
		tokens:      tokens,
		notifier:    notifier,
		google:      google,
		logger:      logger,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !isValidPassword(in.Password) {
		return user.User{}, ErrInvalidInput
	}
	if in.ProfileType != "" && !in.ProfileType.Valid() {
		return user.User{}, ErrInvalidInput
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, ErrInternal
	}
	if exists {
		return user.User{}, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, ErrInternal
	}

	u := user.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, u); err != nil {
		exists, exErr := s.users.ExistsByEmail(ctx, email)
		if exErr == nil && exists {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, ErrInternal
	}

	s.provisionSignupProfile(ctx, u.ID, in)
	s.sendVerification(ctx, u)

	created, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(created), nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return sanitizeUser(u), nil
}

// GoogleSignIn authenticates a Google ID token, creating and provisioning
// the account on first sign-in. Google emails arrive pre-verified.
func (s *Service) GoogleSignIn(ctx context.Context, idToken string) (user.User, error) {
	if s.google == nil || strings.TrimSpace(idToken) == "" {
		return user.User{}, ErrInvalidCredentials
	}

	gu, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return user.User{}, ErrInvalidCredentials
	}
	return s.loginOrCreateGoogleUser(ctx, gu)
}

// GoogleCallback finishes the server-side authorization-code flow.
func (s *Service) GoogleCallback(ctx context.Context, code string) (user.User, error) {
	if s.google == nil || strings.TrimSpace(code) == "" {
		return user.User{}, ErrInvalidCredentials
	}

	gu, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return user.User{}, ErrInvalidCredentials
	}
	return s.loginOrCreateGoogleUser(ctx, gu)
}

func (s *Service) loginOrCreateGoogleUser(ctx context.Context, gu GoogleUser) (user.User, error) {
	if gu.Sub == "" || normalizeEmail(gu.Email) == "" {
		return user.User{}, ErrInvalidCredentials
	}

	if u, err := s.users.GetByGoogleID(ctx, gu.Sub); err == nil {
		return sanitizeUser(u), nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrInternal
	}

	email := normalizeEmail(gu.Email)
	if u, err := s.users.GetByEmail(ctx, email); err == nil {
		if err := s.users.SetGoogleID(ctx, u.ID, gu.Sub); err != nil {
			return user.User{}, ErrInternal
		}
		return sanitizeUser(u), nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrInternal
	}

	now := time.Now().UTC()
	sub := gu.Sub
	u := user.User{
		ID:              uuid.New(),
		Email:           email,
		Name:            strings.TrimSpace(gu.FirstName + " " + gu.LastName),
		GoogleID:        &sub,
		EmailVerifiedAt: &now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return user.User{}, ErrInternal
	}

	seed := ucprofile.SeedInput{}
	if gu.FirstName != "" {
		fn := gu.FirstName
		seed.FirstName = &fn
	}
	if gu.LastName != "" {
		ln := gu.LastName
		seed.LastName = &ln
	}
	if s.provisioner != nil {
		s.provisioner.AutoProvision(ctx, u.ID, profile.TypeIndividual, seed)
	}

	created, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(created), nil
}

// RequestEmailVerification issues a fresh verification token and mails it.
func (s *Service) RequestEmailVerification(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return err
		}
		return ErrInternal
	}
	if u.EmailVerifiedAt != nil {
		return nil
	}
	s.sendVerification(ctx, u)
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}

	raw, ok, err := s.tokens.ConsumeToken(ctx, verifyTokenPrefix+token)
	if err != nil {
		return ErrInternal
	}
	if !ok {
		return ErrInvalidToken
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.users.MarkEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidToken
		}
		return ErrInternal
	}
	return nil
}

// RequestPasswordReset always reports success to the caller so account
// existence is not leaked.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return ErrInternal
	}

	token, err := newToken()
	if err != nil {
		return ErrInternal
	}
	if err := s.tokens.SetToken(ctx, resetTokenPrefix+token, u.ID.String(), resetTokenTTL); err != nil {
		s.logger.Printf("password reset token not stored | user_id=%s error=%v", u.ID, err)
		return ErrInternal
	}
	if s.notifier != nil {
		s.notifier.SendPasswordResetEmail(u.Email, u.Name, token)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	if !isValidPassword(newPassword) {
		return ErrInvalidInput
	}

	raw, ok, err := s.tokens.ConsumeToken(ctx, resetTokenPrefix+token)
	if err != nil {
		return ErrInternal
	}
	if !ok {
		return ErrInvalidToken
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrInternal
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidToken
		}
		return ErrInternal
	}
	return nil
}

func (s *Service) provisionSignupProfile(ctx context.Context, userID uuid.UUID, in RegisterInput) {
	if s.provisioner == nil {
		return
	}
	t := in.ProfileType
	if t == "" {
		t = profile.TypeIndividual
	}
	s.provisioner.AutoProvision(ctx, userID, t, ucprofile.SeedInput{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		BusinessName: in.BusinessName,
	})
}

func (s *Service) sendVerification(ctx context.Context, u user.User) {
	if s.tokens == nil || s.notifier == nil {
		return
	}
	token, err := newToken()
	if err != nil {
		s.logger.Printf("verification token not generated | user_id=%s error=%v", u.ID, err)
		return
	}
	if err := s.tokens.SetToken(ctx, verifyTokenPrefix+token, u.ID.String(), verifyTokenTTL); err != nil {
		s.logger.Printf("verification token not stored | user_id=%s error=%v", u.ID, err)
		return
	}
	s.notifier.SendVerificationEmail(u.Email, u.Name, token)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return strings.ToLower(email)
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= 8
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
