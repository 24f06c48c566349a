package routes

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"nyumba/internal/config"
	"nyumba/internal/delivery/http/handler"
	"nyumba/internal/delivery/http/middleware"
	v1 "nyumba/internal/delivery/http/routes/v1"
	"nyumba/internal/infrastructure/cache"
	"nyumba/internal/infrastructure/persistence/postgres"
	"nyumba/internal/pkg/jwt"
	"nyumba/internal/ws"
)

type Registry struct {
	cfg    config.Config
	db     *postgres.Pool
	cache  *cache.Redis
	hub    *ws.Hub
	logger *log.Logger

	health *handler.HealthHandler
}

func NewRegistry(cfg config.Config, db *postgres.Pool, rds *cache.Redis, hub *ws.Hub, logger *log.Logger) *Registry {
	return &Registry{
		cfg:    cfg,
		db:     db,
		cache:  rds,
		hub:    hub,
		logger: logger,
		health: handler.NewHealthHandler(db, rds),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(
		r.cfg.JWT.AccessSecret,
		r.cfg.JWT.RefreshSecret,
		r.cfg.JWT.AccessExpiresIn,
		r.cfg.JWT.RefreshExpiresIn,
	)
	authMw := middleware.NewAuthMiddleware(jwtSvc)

	r.registerHealth(app)
	r.registerAPI(app, jwtSvc, authMw)
	r.registerWS(app, authMw)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App, jwtSvc jwt.Service, authMw *middleware.AuthMiddleware) {
	api := app.Group("/api")
	v1.Register(api.Group("/v1"), v1.Deps{
		Config: r.cfg,
		DB:     r.db,
		Cache:  r.cache,
		Hub:    r.hub,
		Logger: r.logger,
	}, jwtSvc, authMw)
}

func (r *Registry) registerWS(app *fiber.App, authMw *middleware.AuthMiddleware) {
	wsHandler := ws.NewHandler(r.hub, r.logger)
	app.Get("/ws/dashboard", wsHandler.HandleDashboardWS, authMw.Middleware())
}
