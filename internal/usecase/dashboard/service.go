package dashboard

import (
	"context"
	"encoding/binary"

	"github.com/google/uuid"

	"nyumba/internal/domain/profile"
	ucprofile "nyumba/internal/usecase/profile"
)

// Stats is the dashboard payload for the caller's active profile. The
// numbers are mock statistics: derived deterministically from the profile id
// so a dashboard stays stable between reloads, sectioned by active role.
type Stats struct {
	ProfileID  uuid.UUID
	Completion int

	Tenant   *TenantStats
	Landlord *LandlordStats
	Agent    *AgentStats
}

type TenantStats struct {
	SavedListings   int
	Applications    int
	ScheduledVisits int
}

type LandlordStats struct {
	Listings  int
	Views     int
	Inquiries int
}

type AgentStats struct {
	Clients     int
	ActiveDeals int
	ClosedDeals int
}

type Service struct {
	profiles *ucprofile.Service
}

func NewService(profiles *ucprofile.Service) *Service {
	return &Service{profiles: profiles}
}

func (s *Service) ForUser(ctx context.Context, userID uuid.UUID) (Stats, error) {
	v, err := s.profiles.GetActive(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{ProfileID: v.Profile.ID, Completion: v.Completion}
	for _, r := range v.Roles {
		if !r.IsActive {
			continue
		}
		switch r.Role {
		case profile.RoleTenant:
			st.Tenant = &TenantStats{
				SavedListings:   mock(v.Profile.ID, 1, 40),
				Applications:    mock(v.Profile.ID, 2, 10),
				ScheduledVisits: mock(v.Profile.ID, 3, 6),
			}
		case profile.RoleLandlord:
			st.Landlord = &LandlordStats{
				Listings:  mock(v.Profile.ID, 4, 12),
				Views:     mock(v.Profile.ID, 5, 900),
				Inquiries: mock(v.Profile.ID, 6, 45),
			}
		case profile.RoleAgent:
			st.Agent = &AgentStats{
				Clients:     mock(v.Profile.ID, 7, 25),
				ActiveDeals: mock(v.Profile.ID, 8, 8),
				ClosedDeals: mock(v.Profile.ID, 9, 60),
			}
		}
	}
	return st, nil
}

// mock folds the profile id and a per-metric salt into [0, max).
func mock(id uuid.UUID, salt uint64, max uint64) int {
	h := binary.BigEndian.Uint64(id[:8]) ^ (salt * 0x9e3779b97f4a7c15)
	return int(h % max)
}
