package dto

import (
	"github.com/google/uuid"

	"nyumba/internal/usecase/dashboard"
)

type DashboardResponse struct {
	ProfileID  uuid.UUID `json:"profile_id"`
	Completion int       `json:"completion"`

	Tenant   *TenantStatsResponse   `json:"tenant,omitempty"`
	Landlord *LandlordStatsResponse `json:"landlord,omitempty"`
	Agent    *AgentStatsResponse    `json:"agent,omitempty"`
}

type TenantStatsResponse struct {
	SavedListings   int `json:"saved_listings"`
	Applications    int `json:"applications"`
	ScheduledVisits int `json:"scheduled_visits"`
}

type LandlordStatsResponse struct {
	Listings  int `json:"listings"`
	Views     int `json:"views"`
	Inquiries int `json:"inquiries"`
}

type AgentStatsResponse struct {
	Clients     int `json:"clients"`
	ActiveDeals int `json:"active_deals"`
	ClosedDeals int `json:"closed_deals"`
}

func NewDashboardResponse(st dashboard.Stats) DashboardResponse {
	res := DashboardResponse{ProfileID: st.ProfileID, Completion: st.Completion}
	if st.Tenant != nil {
		res.Tenant = &TenantStatsResponse{
			SavedListings:   st.Tenant.SavedListings,
			Applications:    st.Tenant.Applications,
			ScheduledVisits: st.Tenant.ScheduledVisits,
		}
	}
	if st.Landlord != nil {
		res.Landlord = &LandlordStatsResponse{
			Listings:  st.Landlord.Listings,
			Views:     st.Landlord.Views,
			Inquiries: st.Landlord.Inquiries,
		}
	}
	if st.Agent != nil {
		res.Agent = &AgentStatsResponse{
			Clients:     st.Agent.Clients,
			ActiveDeals: st.Agent.ActiveDeals,
			ClosedDeals: st.Agent.ClosedDeals,
		}
	}
	return res
}
