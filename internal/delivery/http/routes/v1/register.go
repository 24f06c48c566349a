package v1

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"nyumba/internal/config"
	"nyumba/internal/delivery/http/handler"
	"nyumba/internal/delivery/http/middleware"
	"nyumba/internal/infrastructure/cache"
	"nyumba/internal/infrastructure/persistence/postgres"
	"nyumba/internal/notifier"
	"nyumba/internal/pkg/jwt"
	"nyumba/internal/repository"
	"nyumba/internal/service/googleauth"
	"nyumba/internal/usecase"
	ucauth "nyumba/internal/usecase/auth"
	"nyumba/internal/usecase/dashboard"
	ucprofile "nyumba/internal/usecase/profile"
	useruc "nyumba/internal/usecase/user"
	"nyumba/internal/ws"
)

// Deps carries the shared infrastructure the v1 surface is built on.
type Deps struct {
	Config config.Config
	DB     *postgres.Pool
	Cache  *cache.Redis
	Hub    *ws.Hub
	Logger *log.Logger
}

func Register(r fiber.Router, d Deps, jwtSvc jwt.Service, authMw *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	userRepo := repository.NewPostgresUserRepository(d.DB.Pgx)
	profileRepo := repository.NewPostgresProfileRepository(d.DB.Pgx)
	roleRepo := repository.NewPostgresProfileRoleRepository(d.DB.Pgx)

	events := ws.NewNotifier(d.Hub)
	profileUC := ucprofile.NewService(userRepo, profileRepo, roleRepo, events, d.Logger)

	mailer := notifier.NewMailer(d.Config.Mail, d.Config.App.BaseURL, d.Logger)
	google := googleauth.New(d.Config.OAuth)

	authSvc := ucauth.NewService(userRepo, profileUC, d.Cache, mailer, google, d.Logger)
	authUC := usecase.NewAuthUsecase(authSvc, userRepo, jwtSvc)
	userUC := useruc.NewService(userRepo)
	dashboardUC := dashboard.NewService(profileUC)

	authHandler := handler.NewAuthHandler(authUC, authSvc, google)
	userHandler := handler.NewUserHandler(userUC)
	profileHandler := handler.NewProfileHandler(profileUC)
	dashboardHandler := handler.NewDashboardHandler(dashboardUC)

	authGroup := r.Group("/auth")
	authHandler.RegisterRoutes(authGroup)

	protected := r.Group("", authMw.Middleware())

	authHandler.RegisterProtectedRoutes(protected.Group("/auth"))
	userHandler.RegisterRoutes(protected.Group("/users"))
	profileHandler.RegisterRoutes(protected.Group("/profiles"))
	dashboardHandler.RegisterRoutes(protected.Group("/dashboard"))
}
