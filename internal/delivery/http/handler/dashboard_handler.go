package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"nyumba/internal/delivery/http/dto"
	"nyumba/internal/delivery/http/middleware"
	"nyumba/internal/pkg/response"
	"nyumba/internal/usecase/dashboard"
)

type DashboardHandler struct {
	uc *dashboard.Service
}

func NewDashboardHandler(uc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

func (h *DashboardHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.Get)
}

func (h *DashboardHandler) Get(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	st, err := h.uc.ForUser(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewDashboardResponse(st))
}
