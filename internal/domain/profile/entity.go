package profile

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeIndividual Type = "INDIVIDUAL"
	TypeBusiness   Type = "BUSINESS"
)

func (t Type) Valid() bool {
	return t == TypeIndividual || t == TypeBusiness
}

type Gender string

const (
	GenderMale           Gender = "MALE"
	GenderFemale         Gender = "FEMALE"
	GenderOther          Gender = "OTHER"
	GenderPreferNotToSay Gender = "PREFER_NOT_TO_SAY"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay:
		return true
	}
	return false
}

type Role string

const (
	RoleTenant   Role = "TENANT"
	RoleLandlord Role = "LANDLORD"
	RoleAgent    Role = "AGENT"
)

func (r Role) Valid() bool {
	return r == RoleTenant || r == RoleLandlord || r == RoleAgent
}

// Profile is one persona owned by a user. Type is immutable after creation and
// determines which detail record is attached: Individual for TypeIndividual,
// Business for TypeBusiness, never both.
type Profile struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        Type
	IsCertified bool

	PhoneNumber *string
	Country     *string
	City        *string
	Address     *string

	Individual *IndividualDetail
	Business   *BusinessDetail

	CreatedAt time.Time
	UpdatedAt time.Time
}

type IndividualDetail struct {
	FirstName        *string
	LastName         *string
	DateOfBirth      *time.Time
	Gender           *Gender
	NationalIDNumber *string
}

type BusinessDetail struct {
	BusinessName            *string
	RegistrationNumber      *string
	TaxID                   *string
	LegalRepresentativeName *string
}

// ProfileRole associates a profile with a marketplace role. Rows are unique
// per (ProfileID, Role); removal deactivates instead of deleting so prior
// association metadata survives reactivation.
type ProfileRole struct {
	ID        uuid.UUID
	ProfileID uuid.UUID
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
