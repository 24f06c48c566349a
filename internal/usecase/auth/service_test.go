package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"nyumba/internal/domain/profile"
	"nyumba/internal/domain/user"
	ucprofile "nyumba/internal/usecase/profile"
)

type memUserRepo struct {
	users map[uuid.UUID]user.User
}

func newMemUserRepo(users ...user.User) *memUserRepo {
	m := make(map[uuid.UUID]user.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &memUserRepo{users: m}
}

func (r *memUserRepo) Create(_ context.Context, u user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *memUserRepo) GetByGoogleID(_ context.Context, googleID string) (user.User, error) {
	for _, u := range r.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Name = name
	r.users[id] = u
	return nil
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r *memUserRepo) SetGoogleID(_ context.Context, id uuid.UUID, googleID string) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.GoogleID = &googleID
	r.users[id] = u
	return nil
}

func (r *memUserRepo) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	now := time.Now().UTC()
	u.EmailVerifiedAt = &now
	r.users[id] = u
	return nil
}

func (r *memUserRepo) SetActiveProfile(_ context.Context, id uuid.UUID, profileID uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.ActiveProfileID = &profileID
	r.users[id] = u
	return nil
}

type memTokenStore struct {
	tokens map[string]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]string)}
}

func (s *memTokenStore) SetToken(_ context.Context, key, value string, _ time.Duration) error {
	s.tokens[key] = value
	return nil
}

func (s *memTokenStore) ConsumeToken(_ context.Context, key string) (string, bool, error) {
	v, ok := s.tokens[key]
	if !ok {
		return "", false, nil
	}
	delete(s.tokens, key)
	return v, true, nil
}

type sentMail struct {
	kind  string
	to    string
	token string
}

type memNotifier struct {
	sent []sentMail
}

func (n *memNotifier) SendVerificationEmail(to, _, token string) {
	n.sent = append(n.sent, sentMail{kind: "verify", to: to, token: token})
}

func (n *memNotifier) SendPasswordResetEmail(to, _, token string) {
	n.sent = append(n.sent, sentMail{kind: "reset", to: to, token: token})
}

type provisionCall struct {
	userID uuid.UUID
	t      profile.Type
	seed   ucprofile.SeedInput
}

type memProvisioner struct {
	calls []provisionCall
}

func (p *memProvisioner) AutoProvision(_ context.Context, userID uuid.UUID, t profile.Type, seed ucprofile.SeedInput) {
	p.calls = append(p.calls, provisionCall{userID: userID, t: t, seed: seed})
}

type stubGoogle struct {
	user GoogleUser
	err  error
}

func (g stubGoogle) VerifyIDToken(context.Context, string) (GoogleUser, error) {
	return g.user, g.err
}

func (g stubGoogle) ExchangeCode(context.Context, string) (GoogleUser, error) {
	return g.user, g.err
}

type deps struct {
	users       *memUserRepo
	tokens      *memTokenStore
	notifier    *memNotifier
	provisioner *memProvisioner
}

func newTestService(google GoogleVerifier, users ...user.User) (*Service, deps) {
	d := deps{
		users:       newMemUserRepo(users...),
		tokens:      newMemTokenStore(),
		notifier:    &memNotifier{},
		provisioner: &memProvisioner{},
	}
	return NewService(d.users, d.provisioner, d.tokens, d.notifier, google, nil), d
}

func TestRegister_ProvisionsProfileAndSendsVerification(t *testing.T) {
	svc, d := newTestService(nil)

	first := "Asha"
	u, err := svc.Register(context.Background(), RegisterInput{
		Email:     "  Asha@Example.COM ",
		Password:  "secret-password",
		Name:      "Asha Okonkwo",
		FirstName: &first,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Email != "asha@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped from the result")
	}

	if len(d.provisioner.calls) != 1 {
		t.Fatalf("expected 1 provision call, got %d", len(d.provisioner.calls))
	}
	call := d.provisioner.calls[0]
	if call.t != profile.TypeIndividual {
		t.Fatalf("expected default individual provisioning, got %s", call.t)
	}
	if call.seed.FirstName == nil || *call.seed.FirstName != "Asha" {
		t.Fatalf("expected first-name seed to be forwarded")
	}

	if len(d.notifier.sent) != 1 || d.notifier.sent[0].kind != "verify" {
		t.Fatalf("expected one verification mail, got %+v", d.notifier.sent)
	}
}

func TestRegister_BusinessType(t *testing.T) {
	svc, d := newTestService(nil)

	name := "Acme Properties"
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:        "biz@example.com",
		Password:     "secret-password",
		ProfileType:  profile.TypeBusiness,
		BusinessName: &name,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(d.provisioner.calls) != 1 || d.provisioner.calls[0].t != profile.TypeBusiness {
		t.Fatalf("expected business provisioning, got %+v", d.provisioner.calls)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(nil)

	in := RegisterInput{Email: "a@example.com", Password: "secret-password"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _ := newTestService(nil)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "short"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	existing := user.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: string(hash)}
	svc, _ := newTestService(nil, existing)

	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	u, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "right-password"})
	if err != nil {
		t.Fatalf("expected login to succeed: %v", err)
	}
	if u.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped")
	}
}

func TestGoogleSignIn_CreatesVerifiedUser(t *testing.T) {
	g := stubGoogle{user: GoogleUser{Sub: "g-123", Email: "New@Example.com", FirstName: "New", LastName: "Person"}}
	svc, d := newTestService(g)

	u, err := svc.GoogleSignIn(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Email != "new@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.EmailVerifiedAt == nil {
		t.Fatalf("expected Google accounts to arrive verified")
	}
	if u.GoogleID == nil || *u.GoogleID != "g-123" {
		t.Fatalf("expected google id to be stored")
	}
	if len(d.provisioner.calls) != 1 || d.provisioner.calls[0].t != profile.TypeIndividual {
		t.Fatalf("expected individual provisioning, got %+v", d.provisioner.calls)
	}
}

func TestGoogleSignIn_LinksExistingAccountByEmail(t *testing.T) {
	existing := user.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: "x"}
	g := stubGoogle{user: GoogleUser{Sub: "g-456", Email: "a@example.com"}}
	svc, d := newTestService(g, existing)

	u, err := svc.GoogleSignIn(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.ID != existing.ID {
		t.Fatalf("expected the existing account, got %s", u.ID)
	}

	stored, _ := d.users.GetByID(context.Background(), existing.ID)
	if stored.GoogleID == nil || *stored.GoogleID != "g-456" {
		t.Fatalf("expected google id to be linked")
	}
	if len(d.provisioner.calls) != 0 {
		t.Fatalf("expected no provisioning for an existing account")
	}
}

func TestGoogleSignIn_InvalidToken(t *testing.T) {
	g := stubGoogle{err: errors.New("bad token")}
	svc, _ := newTestService(g)

	if _, err := svc.GoogleSignIn(context.Background(), "id-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyEmail_TokenIsOneShot(t *testing.T) {
	svc, d := newTestService(nil)

	u, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "secret-password"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(d.notifier.sent) != 1 {
		t.Fatalf("expected a verification mail")
	}
	token := d.notifier.sent[0].token

	if err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("verify: %v", err)
	}
	stored, _ := d.users.GetByID(context.Background(), u.ID)
	if stored.EmailVerifiedAt == nil {
		t.Fatalf("expected email to be marked verified")
	}

	if err := svc.VerifyEmail(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected second use to fail with ErrInvalidToken, got %v", err)
	}
}

func TestRequestPasswordReset_DoesNotLeakAccounts(t *testing.T) {
	svc, d := newTestService(nil)

	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected success for unknown email, got %v", err)
	}
	if len(d.notifier.sent) != 0 {
		t.Fatalf("expected no mail for unknown email")
	}
}

func TestResetPassword_Flow(t *testing.T) {
	svc, d := newTestService(nil)

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "old-password-1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.RequestPasswordReset(context.Background(), "a@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	var token string
	for _, m := range d.notifier.sent {
		if m.kind == "reset" {
			token = m.token
		}
	}
	if token == "" {
		t.Fatalf("expected a reset mail")
	}

	if err := svc.ResetPassword(context.Background(), token, "short"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a short password, got %v", err)
	}
	if err := svc.ResetPassword(context.Background(), token, "new-password-1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "old-password-1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to stop working, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "new-password-1"}); err != nil {
		t.Fatalf("expected new password to work: %v", err)
	}

	if err := svc.ResetPassword(context.Background(), token, "another-password-1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected reused token to fail, got %v", err)
	}
}

func TestResetPassword_KeepsSurroundingSpaces(t *testing.T) {
	svc, d := newTestService(nil)

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "old-password-1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RequestPasswordReset(context.Background(), "a@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	var token string
	for _, m := range d.notifier.sent {
		if m.kind == "reset" {
			token = m.token
		}
	}

	spaced := " new-password-1 "
	if err := svc.ResetPassword(context.Background(), token, spaced); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: spaced}); err != nil {
		t.Fatalf("expected login with the exact reset string to work: %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "new-password-1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected the trimmed variant to be rejected, got %v", err)
	}
}

func TestRequestEmailVerification_AlreadyVerifiedIsNoOp(t *testing.T) {
	now := time.Now().UTC()
	existing := user.User{ID: uuid.New(), Email: "a@example.com", EmailVerifiedAt: &now}
	svc, d := newTestService(nil, existing)

	if err := svc.RequestEmailVerification(context.Background(), existing.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(d.notifier.sent) != 0 {
		t.Fatalf("expected no mail for an already-verified account")
	}
}
