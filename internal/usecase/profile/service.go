package profile

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"nyumba/internal/domain/profile"
	"nyumba/internal/domain/user"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotOwned     = errors.New("profile not owned by user")
	ErrInternal     = errors.New("internal error")
)

// View is a fully loaded profile as the API serves it: the entity, its
// derived completion score and its role associations.
type View struct {
	Profile    profile.Profile
	Completion int
	Roles      []profile.ProfileRole
}

// UpdateInput uses nil for "leave unchanged"; an empty string clears the
// field. Fields that do not belong to the profile's type are rejected.
type UpdateInput struct {
	PhoneNumber *string
	Country     *string
	City        *string
	Address     *string

	FirstName        *string
	LastName         *string
	DateOfBirth      *time.Time
	Gender           *profile.Gender
	NationalIDNumber *string

	BusinessName            *string
	RegistrationNumber      *string
	TaxID                   *string
	LegalRepresentativeName *string
}

// SeedInput carries the name fields copied into a freshly provisioned
// profile.
type SeedInput struct {
	FirstName    *string
	LastName     *string
	BusinessName *string
}

// EventPublisher receives profile-changed notifications, fire-and-forget.
type EventPublisher interface {
	ProfileUpdated(userID, profileID uuid.UUID, completion int)
}

type Service struct {
	users    user.Repository
	profiles profile.Repository
	roles    profile.RoleRepository
	events   EventPublisher
	logger   *log.Logger
}

func NewService(users user.Repository, profiles profile.Repository, roles profile.RoleRepository, events EventPublisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{users: users, profiles: profiles, roles: roles, events: events, logger: logger}
}

// Get loads one of the caller's profiles with completion and roles.
func (s *Service) Get(ctx context.Context, userID, profileID uuid.UUID) (View, error) {
	p, err := s.ownedProfile(ctx, userID, profileID)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, p)
}

// GetActive resolves the caller's active profile. ErrNotFound when the user
// has no active profile set.
func (s *Service) GetActive(ctx context.Context, userID uuid.UUID) (View, error) {
	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if usr.ActiveProfileID == nil {
		return View{}, profile.ErrNotFound
	}
	return s.Get(ctx, userID, *usr.ActiveProfileID)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]View, error) {
	profiles, err := s.profiles.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(profiles))
	for _, p := range profiles {
		v, err := s.view(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Add creates the user's second persona via the explicit add-profile flow.
// At most one profile per type exists per user.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, t profile.Type, seed SeedInput) (View, error) {
	if !t.Valid() {
		return View{}, ErrInvalidInput
	}

	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return View{}, err
	}

	exists, err := s.profiles.ExistsByUserAndType(ctx, userID, t)
	if err != nil {
		return View{}, err
	}
	if exists {
		return View{}, profile.ErrTypeExists
	}

	p := newProfile(userID, t, seed)
	if err := s.profiles.Create(ctx, p); err != nil {
		return View{}, err
	}

	if usr.ActiveProfileID == nil {
		if err := s.users.SetActiveProfile(ctx, userID, p.ID); err != nil {
			return View{}, err
		}
	}

	return s.view(ctx, p)
}

// Update mutates the owned profile's editable fields. Type and certification
// are never touched here: certification belongs to the external verification
// process.
func (s *Service) Update(ctx context.Context, userID, profileID uuid.UUID, in UpdateInput) (View, error) {
	p, err := s.ownedProfile(ctx, userID, profileID)
	if err != nil {
		return View{}, err
	}

	applyOptional(&p.PhoneNumber, in.PhoneNumber)
	applyOptional(&p.Country, in.Country)
	applyOptional(&p.City, in.City)
	applyOptional(&p.Address, in.Address)

	switch p.Type {
	case profile.TypeIndividual:
		if in.BusinessName != nil || in.RegistrationNumber != nil || in.TaxID != nil || in.LegalRepresentativeName != nil {
			return View{}, ErrInvalidInput
		}
		if in.Gender != nil && *in.Gender != "" && !in.Gender.Valid() {
			return View{}, ErrInvalidInput
		}
		if p.Individual == nil {
			p.Individual = &profile.IndividualDetail{}
		}
		applyOptional(&p.Individual.FirstName, in.FirstName)
		applyOptional(&p.Individual.LastName, in.LastName)
		applyOptional(&p.Individual.NationalIDNumber, in.NationalIDNumber)
		if in.DateOfBirth != nil {
			if in.DateOfBirth.IsZero() {
				p.Individual.DateOfBirth = nil
			} else {
				dob := *in.DateOfBirth
				p.Individual.DateOfBirth = &dob
			}
		}
		if in.Gender != nil {
			if *in.Gender == "" {
				p.Individual.Gender = nil
			} else {
				g := *in.Gender
				p.Individual.Gender = &g
			}
		}
	case profile.TypeBusiness:
		if in.FirstName != nil || in.LastName != nil || in.DateOfBirth != nil || in.Gender != nil || in.NationalIDNumber != nil {
			return View{}, ErrInvalidInput
		}
		if p.Business == nil {
			p.Business = &profile.BusinessDetail{}
		}
		applyOptional(&p.Business.BusinessName, in.BusinessName)
		applyOptional(&p.Business.RegistrationNumber, in.RegistrationNumber)
		applyOptional(&p.Business.TaxID, in.TaxID)
		applyOptional(&p.Business.LegalRepresentativeName, in.LegalRepresentativeName)
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return View{}, err
	}

	v, err := s.view(ctx, p)
	if err != nil {
		return View{}, err
	}
	if s.events != nil {
		s.events.ProfileUpdated(userID, p.ID, v.Completion)
	}
	return v, nil
}

// Remove deletes the owned profile together with its detail and role rows.
// When the deleted profile was the active one the storage layer clears the
// pointer, so GetActive reports not found until the user switches.
func (s *Service) Remove(ctx context.Context, userID, profileID uuid.UUID) error {
	if _, err := s.ownedProfile(ctx, userID, profileID); err != nil {
		return err
	}
	return s.profiles.Delete(ctx, profileID)
}

// AddRole activates the role on the profile. Adding an already-active role
// is a success, not an error.
func (s *Service) AddRole(ctx context.Context, userID, profileID uuid.UUID, role profile.Role) error {
	if !role.Valid() {
		return ErrInvalidInput
	}
	if _, err := s.ownedProfile(ctx, userID, profileID); err != nil {
		return err
	}

	existing, err := s.roles.Get(ctx, profileID, role)
	if err == nil && existing.IsActive {
		return nil
	}
	if err != nil && !errors.Is(err, profile.ErrRoleNotFound) {
		return err
	}

	return s.roles.Upsert(ctx, profileID, role, true)
}

// RemoveRole deactivates the role. The row is kept so a later AddRole
// reactivates it with its original metadata.
func (s *Service) RemoveRole(ctx context.Context, userID, profileID uuid.UUID, role profile.Role) error {
	if !role.Valid() {
		return ErrInvalidInput
	}
	if _, err := s.ownedProfile(ctx, userID, profileID); err != nil {
		return err
	}

	existing, err := s.roles.Get(ctx, profileID, role)
	if err != nil {
		if errors.Is(err, profile.ErrRoleNotFound) {
			return nil
		}
		return err
	}
	if !existing.IsActive {
		return nil
	}

	return s.roles.Upsert(ctx, profileID, role, false)
}

// SwitchActive points the user's session at another of their profiles.
// Last write wins under concurrent switches.
func (s *Service) SwitchActive(ctx context.Context, userID, profileID uuid.UUID) error {
	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.ownedProfile(ctx, userID, profileID); err != nil {
		return err
	}

	if usr.ActiveProfileID != nil && *usr.ActiveProfileID == profileID {
		return nil
	}

	return s.users.SetActiveProfile(ctx, userID, profileID)
}

// AutoProvision creates the user's first profile at signup. Best effort: if
// the user already owns a profile it is a no-op, and every failure is logged
// and swallowed so account creation is never blocked.
func (s *Service) AutoProvision(ctx context.Context, userID uuid.UUID, t profile.Type, seed SeedInput) {
	if !t.Valid() {
		t = profile.TypeIndividual
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		s.logger.Printf("auto-provision skipped | user_id=%s error=%v", userID, err)
		return
	}

	n, err := s.profiles.CountByUserID(ctx, userID)
	if err != nil {
		s.logger.Printf("auto-provision failed | user_id=%s error=%v", userID, err)
		return
	}
	if n > 0 {
		return
	}

	p := newProfile(userID, t, seed)
	if err := s.profiles.Create(ctx, p); err != nil {
		// A concurrent signup hook may have won the race; either way the
		// user ends up with a profile.
		s.logger.Printf("auto-provision failed | user_id=%s error=%v", userID, err)
		return
	}

	if err := s.users.SetActiveProfile(ctx, userID, p.ID); err != nil {
		s.logger.Printf("auto-provision active profile not set | user_id=%s profile_id=%s error=%v", userID, p.ID, err)
	}
}

func (s *Service) ownedProfile(ctx context.Context, userID, profileID uuid.UUID) (profile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return profile.Profile{}, err
	}
	if p.UserID != userID {
		return profile.Profile{}, ErrNotOwned
	}
	return p, nil
}

func (s *Service) view(ctx context.Context, p profile.Profile) (View, error) {
	roles, err := s.roles.ListByProfileID(ctx, p.ID)
	if err != nil {
		return View{}, err
	}
	return View{Profile: p, Completion: profile.Completion(p), Roles: roles}, nil
}

func newProfile(userID uuid.UUID, t profile.Type, seed SeedInput) profile.Profile {
	p := profile.Profile{
		ID:     uuid.New(),
		UserID: userID,
		Type:   t,
	}
	switch t {
	case profile.TypeBusiness:
		p.Business = &profile.BusinessDetail{BusinessName: trimmed(seed.BusinessName)}
	default:
		p.Individual = &profile.IndividualDetail{
			FirstName: trimmed(seed.FirstName),
			LastName:  trimmed(seed.LastName),
		}
	}
	return p
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func applyOptional(dst **string, src *string) {
	if src == nil {
		return
	}
	v := strings.TrimSpace(*src)
	if v == "" {
		*dst = nil
		return
	}
	*dst = &v
}
