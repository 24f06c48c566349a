package dto

import (
	"time"

	"github.com/google/uuid"

	"nyumba/internal/domain/profile"
	ucprofile "nyumba/internal/usecase/profile"
)

type ProfileResponse struct {
	ID          uuid.UUID    `json:"id"`
	Type        profile.Type `json:"type"`
	IsCertified bool         `json:"is_certified"`
	Completion  int          `json:"completion"`

	PhoneNumber *string `json:"phone_number"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
	Address     *string `json:"address"`

	Individual *IndividualDetailResponse `json:"individual,omitempty"`
	Business   *BusinessDetailResponse   `json:"business,omitempty"`

	Roles []RoleResponse `json:"roles"`

	CreatedAt time.Time `json:"created_at"`
}

type IndividualDetailResponse struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	DateOfBirth      *string `json:"date_of_birth"`
	Gender           *string `json:"gender"`
	NationalIDNumber *string `json:"national_id_number"`
}

type BusinessDetailResponse struct {
	BusinessName            *string `json:"business_name"`
	RegistrationNumber      *string `json:"registration_number"`
	TaxID                   *string `json:"tax_id"`
	LegalRepresentativeName *string `json:"legal_representative_name"`
}

type RoleResponse struct {
	Role     profile.Role `json:"role"`
	IsActive bool         `json:"is_active"`
}

func NewProfileResponse(v ucprofile.View) ProfileResponse {
	res := ProfileResponse{
		ID:          v.Profile.ID,
		Type:        v.Profile.Type,
		IsCertified: v.Profile.IsCertified,
		Completion:  v.Completion,
		PhoneNumber: v.Profile.PhoneNumber,
		Country:     v.Profile.Country,
		City:        v.Profile.City,
		Address:     v.Profile.Address,
		Roles:       make([]RoleResponse, 0, len(v.Roles)),
		CreatedAt:   v.Profile.CreatedAt,
	}

	if d := v.Profile.Individual; d != nil {
		res.Individual = &IndividualDetailResponse{
			FirstName:        d.FirstName,
			LastName:         d.LastName,
			NationalIDNumber: d.NationalIDNumber,
		}
		if d.DateOfBirth != nil {
			dob := d.DateOfBirth.Format("2006-01-02")
			res.Individual.DateOfBirth = &dob
		}
		if d.Gender != nil {
			g := string(*d.Gender)
			res.Individual.Gender = &g
		}
	}
	if d := v.Profile.Business; d != nil {
		res.Business = &BusinessDetailResponse{
			BusinessName:            d.BusinessName,
			RegistrationNumber:      d.RegistrationNumber,
			TaxID:                   d.TaxID,
			LegalRepresentativeName: d.LegalRepresentativeName,
		}
	}

	for _, r := range v.Roles {
		res.Roles = append(res.Roles, RoleResponse{Role: r.Role, IsActive: r.IsActive})
	}
	return res
}
