package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"nyumba/internal/delivery/http/dto"
	"nyumba/internal/delivery/http/middleware"
	"nyumba/internal/domain/profile"
	"nyumba/internal/domain/user"
	"nyumba/internal/pkg/response"
	"nyumba/internal/usecase"
	ucauth "nyumba/internal/usecase/auth"
)

// ConsentURLBuilder renders the Google consent-screen redirect for the
// login page.
type ConsentURLBuilder interface {
	AuthCodeURL(state string) string
}

type AuthHandler struct {
	uc      usecase.AuthUsecase
	authSvc *ucauth.Service
	google  ConsentURLBuilder
}

type registerRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8"`
	Name         string  `json:"name" validate:"omitempty,max=120"`
	ProfileType  string  `json:"profile_type" validate:"omitempty,oneof=INDIVIDUAL BUSINESS"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	BusinessName *string `json:"business_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleSignInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func NewAuthHandler(uc usecase.AuthUsecase, authSvc *ucauth.Service, google ConsentURLBuilder) *AuthHandler {
	return &AuthHandler{uc: uc, authSvc: authSvc, google: google}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/google", h.GoogleSignIn)
	r.Get("/google/url", h.GoogleAuthURL)
	r.Get("/google/callback", h.GoogleCallback)
	r.Post("/verify-email/confirm", h.VerifyEmail)
	r.Post("/password-reset/request", h.RequestPasswordReset)
	r.Post("/password-reset/confirm", h.ResetPassword)
}

// RegisterProtectedRoutes wires the endpoints that need an authenticated
// caller; the router passed in must already carry the auth middleware.
func (h *AuthHandler) RegisterProtectedRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/verify-email/request", h.RequestEmailVerification)
}

func (h *AuthHandler) RequestEmailVerification(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	if err := h.authSvc.RequestEmailVerification(c.Context(), userID); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, access, refresh, err := h.uc.Register(c.Context(), ucauth.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		ProfileType:  profile.Type(strings.ToUpper(strings.TrimSpace(req.ProfileType))),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Registered", tokenPayload(usr, access, refresh))
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, access, refresh, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, tokenPayload(usr, access, refresh))
}

func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := bearerFromAuthorizationHeader(c.Get("Authorization"))
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	access, refresh, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRefreshTokenExpired):
			return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
		case errors.Is(err, usecase.ErrInvalidRefreshToken):
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
		case errors.Is(err, usecase.ErrUnauthorized):
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	data := map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) GoogleSignIn(c fiber.Ctx) error {
	var req googleSignInRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, access, refresh, err := h.uc.GoogleSignIn(c.Context(), req.IDToken)
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, tokenPayload(usr, access, refresh))
}

// GoogleAuthURL hands the login page the consent-screen redirect. The state
// the client sends comes back on the callback for it to check.
func (h *AuthHandler) GoogleAuthURL(c fiber.Ctx) error {
	if h.google == nil {
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Google sign-in not configured", nil, nil)
	}

	url := h.google.AuthCodeURL(strings.TrimSpace(c.Query("state")))
	if url == "" {
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Google sign-in not configured", nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"url": url})
}

func (h *AuthHandler) GoogleCallback(c fiber.Ctx) error {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing authorization code", nil, nil)
	}

	usr, access, refresh, err := h.uc.GoogleCallback(c.Context(), code)
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, tokenPayload(usr, access, refresh))
}

func (h *AuthHandler) VerifyEmail(c fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.authSvc.VerifyEmail(c.Context(), req.Token); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *AuthHandler) RequestPasswordReset(c fiber.Ctx) error {
	var req passwordResetRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.authSvc.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var req passwordResetConfirmRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.authSvc.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func tokenPayload(usr user.User, access, refresh string) map[string]any {
	return map[string]any{
		"user":          dto.NewUserResponse(usr),
		"access_token":  access,
		"refresh_token": refresh,
	}
}

func bearerFromAuthorizationHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", false
	}
	return tok, true
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucauth.ErrEmailAlreadyRegistered):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, ucauth.ErrInvalidToken):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid or expired token", nil, err)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
