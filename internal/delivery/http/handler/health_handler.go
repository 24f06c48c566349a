package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"nyumba/internal/pkg/response"
)

// Pinger is the subset of a backing store needed for health probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Live)
	r.Get("/health/ready", h.Ready)
}

func (h *HealthHandler) Live(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	checks["database"] = "ok"
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "unreachable"
			healthy = false
		}
	}

	checks["cache"] = "ok"
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			// cache loss degrades token flows but the API stays up
			checks["cache"] = "unreachable"
		}
	}

	if !healthy {
		return response.Error(c, fiber.StatusServiceUnavailable, "not ready", checks)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, checks)
}
