package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"nyumba/internal/domain/profile"
	"nyumba/internal/domain/user"
)

type fakeUserRepo struct {
	users map[uuid.UUID]user.User
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	m := make(map[uuid.UUID]user.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) Create(_ context.Context, u user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserRepo) GetByGoogleID(_ context.Context, googleID string) (user.User, error) {
	for _, u := range f.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserRepo) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Name = name
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) SetGoogleID(_ context.Context, id uuid.UUID, googleID string) error {
	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.GoogleID = &googleID
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	now := u.UpdatedAt
	u.EmailVerifiedAt = &now
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) SetActiveProfile(_ context.Context, id uuid.UUID, profileID uuid.UUID) error {
	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.ActiveProfileID = &profileID
	f.users[id] = u
	return nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]profile.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]profile.Profile)}
}

func (f *fakeProfileRepo) Create(_ context.Context, p profile.Profile) error {
	for _, existing := range f.profiles {
		if existing.UserID == p.UserID && existing.Type == p.Type {
			return profile.ErrTypeExists
		}
	}
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (profile.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]profile.Profile, error) {
	var out []profile.Profile
	for _, p := range f.profiles {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	ps, _ := f.ListByUserID(ctx, userID)
	return len(ps), nil
}

func (f *fakeProfileRepo) ExistsByUserAndType(_ context.Context, userID uuid.UUID, t profile.Type) (bool, error) {
	for _, p := range f.profiles {
		if p.UserID == userID && p.Type == t {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProfileRepo) Update(_ context.Context, p profile.Profile) error {
	if _, ok := f.profiles[p.ID]; !ok {
		return profile.ErrNotFound
	}
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfileRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.profiles[id]; !ok {
		return profile.ErrNotFound
	}
	delete(f.profiles, id)
	return nil
}

type roleKey struct {
	profileID uuid.UUID
	role      profile.Role
}

type fakeRoleRepo struct {
	roles map[roleKey]profile.ProfileRole
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[roleKey]profile.ProfileRole)}
}

func (f *fakeRoleRepo) ListByProfileID(_ context.Context, profileID uuid.UUID) ([]profile.ProfileRole, error) {
	var out []profile.ProfileRole
	for _, r := range f.roles {
		if r.ProfileID == profileID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRoleRepo) Get(_ context.Context, profileID uuid.UUID, role profile.Role) (profile.ProfileRole, error) {
	r, ok := f.roles[roleKey{profileID, role}]
	if !ok {
		return profile.ProfileRole{}, profile.ErrRoleNotFound
	}
	return r, nil
}

func (f *fakeRoleRepo) Upsert(_ context.Context, profileID uuid.UUID, role profile.Role, active bool) error {
	k := roleKey{profileID, role}
	r, ok := f.roles[k]
	if !ok {
		r = profile.ProfileRole{ID: uuid.New(), ProfileID: profileID, Role: role}
	}
	r.IsActive = active
	f.roles[k] = r
	return nil
}

type capturedEvent struct {
	userID     uuid.UUID
	profileID  uuid.UUID
	completion int
}

type fakePublisher struct {
	events []capturedEvent
}

func (f *fakePublisher) ProfileUpdated(userID, profileID uuid.UUID, completion int) {
	f.events = append(f.events, capturedEvent{userID, profileID, completion})
}

func newTestService(users ...user.User) (*Service, *fakeUserRepo, *fakeProfileRepo, *fakeRoleRepo, *fakePublisher) {
	ur := newFakeUserRepo(users...)
	pr := newFakeProfileRepo()
	rr := newFakeRoleRepo()
	pub := &fakePublisher{}
	return NewService(ur, pr, rr, pub, nil), ur, pr, rr, pub
}

func TestAutoProvision_CreatesFirstProfileAndActivates(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, ur, pr, _, _ := newTestService(u)

	first := "Asha"
	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{FirstName: &first})

	ps, _ := pr.ListByUserID(context.Background(), u.ID)
	if len(ps) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(ps))
	}
	if ps[0].Type != profile.TypeIndividual {
		t.Fatalf("expected individual profile, got %s", ps[0].Type)
	}
	if ps[0].Individual == nil || ps[0].Individual.FirstName == nil || *ps[0].Individual.FirstName != "Asha" {
		t.Fatalf("expected seeded first name")
	}
	if ps[0].IsCertified {
		t.Fatalf("expected a fresh profile to start uncertified")
	}

	stored, _ := ur.GetByID(context.Background(), u.ID)
	if stored.ActiveProfileID == nil || *stored.ActiveProfileID != ps[0].ID {
		t.Fatalf("expected active profile to point at the new profile")
	}
}

func TestAutoProvision_NoOpWhenProfileExists(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, pr, _, _ := newTestService(u)

	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})
	svc.AutoProvision(context.Background(), u.ID, profile.TypeBusiness, SeedInput{})

	n, _ := pr.CountByUserID(context.Background(), u.ID)
	if n != 1 {
		t.Fatalf("expected second call to be a no-op, got %d profiles", n)
	}
}

func TestAutoProvision_InvalidTypeFallsBackToIndividual(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, pr, _, _ := newTestService(u)

	svc.AutoProvision(context.Background(), u.ID, profile.Type("WEIRD"), SeedInput{})

	ps, _ := pr.ListByUserID(context.Background(), u.ID)
	if len(ps) != 1 || ps[0].Type != profile.TypeIndividual {
		t.Fatalf("expected fallback to individual profile")
	}
}

func TestAdd_SecondTypeSucceedsDuplicateTypeConflicts(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, _, _, _ := newTestService(u)

	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})

	name := "Acme Properties"
	v, err := svc.Add(context.Background(), u.ID, profile.TypeBusiness, SeedInput{BusinessName: &name})
	if err != nil {
		t.Fatalf("unexpected err adding business profile: %v", err)
	}
	if v.Profile.Business == nil || v.Profile.Business.BusinessName == nil || *v.Profile.Business.BusinessName != name {
		t.Fatalf("expected business seed to be applied")
	}

	if _, err := svc.Add(context.Background(), u.ID, profile.TypeBusiness, SeedInput{}); !errors.Is(err, profile.ErrTypeExists) {
		t.Fatalf("expected ErrTypeExists, got %v", err)
	}
}

func TestAdd_FirstProfileBecomesActive(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, ur, _, _, _ := newTestService(u)

	v, err := svc.Add(context.Background(), u.ID, profile.TypeBusiness, SeedInput{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	stored, _ := ur.GetByID(context.Background(), u.ID)
	if stored.ActiveProfileID == nil || *stored.ActiveProfileID != v.Profile.ID {
		t.Fatalf("expected first profile to become active")
	}
}

func TestAddRole_Idempotent(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, _, rr, _ := newTestService(u)
	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})
	profileID := onlyProfileID(t, svc, u.ID)

	for i := 0; i < 3; i++ {
		if err := svc.AddRole(context.Background(), u.ID, profileID, profile.RoleTenant); err != nil {
			t.Fatalf("call %d: unexpected err: %v", i, err)
		}
	}

	roles, _ := rr.ListByProfileID(context.Background(), profileID)
	if len(roles) != 1 {
		t.Fatalf("expected 1 role row, got %d", len(roles))
	}
	if !roles[0].IsActive {
		t.Fatalf("expected role to be active")
	}
}

func TestRemoveRole_DeactivatesAndReAddReactivates(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, _, rr, _ := newTestService(u)
	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})
	profileID := onlyProfileID(t, svc, u.ID)

	if err := svc.AddRole(context.Background(), u.ID, profileID, profile.RoleLandlord); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RemoveRole(context.Background(), u.ID, profileID, profile.RoleLandlord); err != nil {
		t.Fatalf("remove: %v", err)
	}

	r, err := rr.Get(context.Background(), profileID, profile.RoleLandlord)
	if err != nil {
		t.Fatalf("expected role row to survive removal: %v", err)
	}
	if r.IsActive {
		t.Fatalf("expected role to be inactive after removal")
	}
	firstID := r.ID

	if err := svc.AddRole(context.Background(), u.ID, profileID, profile.RoleLandlord); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	r, _ = rr.Get(context.Background(), profileID, profile.RoleLandlord)
	if !r.IsActive {
		t.Fatalf("expected role to be active after re-add")
	}
	if r.ID != firstID {
		t.Fatalf("expected re-add to reuse the original row")
	}
}

func TestRemoveRole_UnknownRoleIsNoOp(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, _, _, _ := newTestService(u)
	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})
	profileID := onlyProfileID(t, svc, u.ID)

	if err := svc.RemoveRole(context.Background(), u.ID, profileID, profile.RoleAgent); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestRemove_DeletesOwnedProfile(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, pr, _, _ := newTestService(u)
	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})
	profileID := onlyProfileID(t, svc, u.ID)

	if err := svc.Remove(context.Background(), u.ID, profileID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := pr.GetByID(context.Background(), profileID); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected profile to be gone, got %v", err)
	}
	views, err := svc.List(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no profiles left, got %d", len(views))
	}
}

func TestRemove_OwnershipEnforced(t *testing.T) {
	owner := user.User{ID: uuid.New(), Email: "a@example.com"}
	other := user.User{ID: uuid.New(), Email: "b@example.com"}
	svc, _, pr, _, _ := newTestService(owner, other)

	svc.AutoProvision(context.Background(), owner.ID, profile.TypeIndividual, SeedInput{})
	ownerProfileID := onlyProfileID(t, svc, owner.ID)

	if err := svc.Remove(context.Background(), other.ID, ownerProfileID); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	if _, err := pr.GetByID(context.Background(), ownerProfileID); err != nil {
		t.Fatalf("expected profile to survive: %v", err)
	}
}

func TestSwitchActive_OwnershipEnforced(t *testing.T) {
	owner := user.User{ID: uuid.New(), Email: "a@example.com"}
	other := user.User{ID: uuid.New(), Email: "b@example.com"}
	svc, _, _, _, _ := newTestService(owner, other)

	svc.AutoProvision(context.Background(), owner.ID, profile.TypeIndividual, SeedInput{})
	ownerProfileID := onlyProfileID(t, svc, owner.ID)

	if err := svc.SwitchActive(context.Background(), other.ID, ownerProfileID); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
}

func TestSwitchActive_MovesBetweenOwnProfiles(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, ur, _, _, _ := newTestService(u)

	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})
	business, err := svc.Add(context.Background(), u.ID, profile.TypeBusiness, SeedInput{})
	if err != nil {
		t.Fatalf("add business: %v", err)
	}

	if err := svc.SwitchActive(context.Background(), u.ID, business.Profile.ID); err != nil {
		t.Fatalf("switch: %v", err)
	}
	stored, _ := ur.GetByID(context.Background(), u.ID)
	if stored.ActiveProfileID == nil || *stored.ActiveProfileID != business.Profile.ID {
		t.Fatalf("expected active profile to move to the business profile")
	}

	// switching to the already-active profile is a no-op success
	if err := svc.SwitchActive(context.Background(), u.ID, business.Profile.ID); err != nil {
		t.Fatalf("repeat switch: %v", err)
	}
}

func TestUpdate_RejectsWrongTypeFields(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, _, _, _ := newTestService(u)
	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})
	profileID := onlyProfileID(t, svc, u.ID)

	name := "Acme Properties"
	_, err := svc.Update(context.Background(), u.ID, profileID, UpdateInput{BusinessName: &name})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdate_ClearsFieldWithEmptyString(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, _, _, _ := newTestService(u)
	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})
	profileID := onlyProfileID(t, svc, u.ID)

	phone := "+254700000000"
	v, err := svc.Update(context.Background(), u.ID, profileID, UpdateInput{PhoneNumber: &phone})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if v.Profile.PhoneNumber == nil || *v.Profile.PhoneNumber != phone {
		t.Fatalf("expected phone to be set")
	}

	empty := ""
	v, err = svc.Update(context.Background(), u.ID, profileID, UpdateInput{PhoneNumber: &empty})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if v.Profile.PhoneNumber != nil {
		t.Fatalf("expected phone to be cleared")
	}
}

func TestUpdate_EmitsCompletionEvent(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, _, _, pub := newTestService(u)
	svc.AutoProvision(context.Background(), u.ID, profile.TypeIndividual, SeedInput{})
	profileID := onlyProfileID(t, svc, u.ID)

	first := "Asha"
	last := "Okonkwo"
	v, err := svc.Update(context.Background(), u.ID, profileID, UpdateInput{FirstName: &first, LastName: &last})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if v.Completion != 25 {
		t.Fatalf("expected completion 25, got %d", v.Completion)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.userID != u.ID || ev.profileID != profileID || ev.completion != 25 {
		t.Fatalf("unexpected event payload: %+v", ev)
	}
}

func TestGetActive_NoActiveProfile(t *testing.T) {
	u := user.User{ID: uuid.New(), Email: "a@example.com"}
	svc, _, _, _, _ := newTestService(u)

	if _, err := svc.GetActive(context.Background(), u.ID); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func onlyProfileID(t *testing.T, svc *Service, userID uuid.UUID) uuid.UUID {
	t.Helper()
	views, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected exactly 1 profile, got %d", len(views))
	}
	return views[0].Profile.ID
}
