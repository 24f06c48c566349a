package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"nyumba/internal/delivery/http/dto"
	"nyumba/internal/delivery/http/middleware"
	"nyumba/internal/domain/profile"
	"nyumba/internal/pkg/response"
	ucprofile "nyumba/internal/usecase/profile"
)

type ProfileHandler struct {
	uc *ucprofile.Service
}

type addProfileRequest struct {
	Type         string  `json:"type" validate:"required,oneof=INDIVIDUAL BUSINESS"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	BusinessName *string `json:"business_name"`
}

type updateProfileRequest struct {
	PhoneNumber *string `json:"phone_number"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
	Address     *string `json:"address"`

	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	DateOfBirth      *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender           *string `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER PREFER_NOT_TO_SAY"`
	NationalIDNumber *string `json:"national_id_number"`

	BusinessName            *string `json:"business_name"`
	RegistrationNumber      *string `json:"registration_number"`
	TaxID                   *string `json:"tax_id"`
	LegalRepresentativeName *string `json:"legal_representative_name"`
}

type switchProfileRequest struct {
	ProfileID string `json:"profile_id" validate:"required,uuid"`
}

type addRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=TENANT LANDLORD AGENT"`
}

func NewProfileHandler(uc *ucprofile.Service) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Get("/active", h.GetActive)
	r.Put("/active", h.SwitchActive)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Remove)
	r.Post("/:id/roles", h.AddRole)
	r.Delete("/:id/roles/:role", h.RemoveRole)
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	views, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	out := make([]dto.ProfileResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewProfileResponse(v))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ProfileHandler) Add(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req addProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	v, err := h.uc.Add(c.Context(), userID, profile.Type(req.Type), ucprofile.SeedInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Profile created", dto.NewProfileResponse(v))
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	profileID, appErr := pathProfileID(c)
	if appErr != nil {
		return appErr
	}

	v, err := h.uc.Get(c.Context(), userID, profileID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) GetActive(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	v, err := h.uc.GetActive(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) Update(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	profileID, appErr := pathProfileID(c)
	if appErr != nil {
		return appErr
	}

	var req updateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	in, err := req.toInput()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	v, err := h.uc.Update(c.Context(), userID, profileID, in)
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) Remove(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	profileID, appErr := pathProfileID(c)
	if appErr != nil {
		return appErr
	}

	if err := h.uc.Remove(c.Context(), userID, profileID); err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Profile deleted", nil)
}

func (h *ProfileHandler) SwitchActive(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req switchProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid profile id", nil, err)
	}

	if err := h.uc.SwitchActive(c.Context(), userID, profileID); err != nil {
		return mapProfileUsecaseError(err)
	}

	v, err := h.uc.Get(c.Context(), userID, profileID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) AddRole(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	profileID, appErr := pathProfileID(c)
	if appErr != nil {
		return appErr
	}

	var req addRoleRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.AddRole(c.Context(), userID, profileID, profile.Role(req.Role)); err != nil {
		return mapProfileUsecaseError(err)
	}

	v, err := h.uc.Get(c.Context(), userID, profileID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) RemoveRole(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	profileID, appErr := pathProfileID(c)
	if appErr != nil {
		return appErr
	}

	role := profile.Role(strings.ToUpper(strings.TrimSpace(c.Params("role"))))
	if !role.Valid() {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid role", nil, nil)
	}

	if err := h.uc.RemoveRole(c.Context(), userID, profileID, role); err != nil {
		return mapProfileUsecaseError(err)
	}

	v, err := h.uc.Get(c.Context(), userID, profileID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (r updateProfileRequest) toInput() (ucprofile.UpdateInput, error) {
	in := ucprofile.UpdateInput{
		PhoneNumber:             r.PhoneNumber,
		Country:                 r.Country,
		City:                    r.City,
		Address:                 r.Address,
		FirstName:               r.FirstName,
		LastName:                r.LastName,
		NationalIDNumber:        r.NationalIDNumber,
		BusinessName:            r.BusinessName,
		RegistrationNumber:      r.RegistrationNumber,
		TaxID:                   r.TaxID,
		LegalRepresentativeName: r.LegalRepresentativeName,
	}

	if r.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *r.DateOfBirth)
		if err != nil {
			return ucprofile.UpdateInput{}, err
		}
		in.DateOfBirth = &dob
	}
	if r.Gender != nil {
		g := profile.Gender(*r.Gender)
		if !g.Valid() {
			return ucprofile.UpdateInput{}, errors.New("invalid gender")
		}
		in.Gender = &g
	}
	return in, nil
}

func pathProfileID(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid profile id", nil, err)
	}
	return id, nil
}

func mapProfileUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, profile.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	case errors.Is(err, profile.ErrTypeExists):
		return middleware.NewAppError(fiber.StatusConflict, "Profile of this type already exists", nil, err)
	case errors.Is(err, ucprofile.ErrNotOwned):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, ucprofile.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
