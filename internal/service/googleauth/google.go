package googleauth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"nyumba/internal/config"
	ucauth "nyumba/internal/usecase/auth"
)

var ErrNotConfigured = errors.New("google oauth not configured")

// Service verifies Google ID tokens and finishes the server-side
// authorization-code flow.
type Service struct {
	clientID string
	oauth    *oauth2.Config
}

func New(cfg config.OAuthConfig) *Service {
	return &Service{
		clientID: cfg.GoogleClientID,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (s *Service) VerifyIDToken(ctx context.Context, token string) (ucauth.GoogleUser, error) {
	if s == nil || s.clientID == "" {
		return ucauth.GoogleUser{}, ErrNotConfigured
	}

	payload, err := idtoken.Validate(ctx, token, s.clientID)
	if err != nil {
		return ucauth.GoogleUser{}, err
	}

	email, _ := payload.Claims["email"].(string)
	firstName, _ := payload.Claims["given_name"].(string)
	lastName, _ := payload.Claims["family_name"].(string)
	sub, _ := payload.Claims["sub"].(string)

	return ucauth.GoogleUser{
		Sub:       sub,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}, nil
}

func (s *Service) ExchangeCode(ctx context.Context, code string) (ucauth.GoogleUser, error) {
	if s == nil || s.clientID == "" || s.oauth.ClientSecret == "" {
		return ucauth.GoogleUser{}, ErrNotConfigured
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return ucauth.GoogleUser{}, err
	}

	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		return ucauth.GoogleUser{}, errors.New("token response missing id_token")
	}
	return s.VerifyIDToken(ctx, rawID)
}

// AuthCodeURL builds the consent-screen redirect for the login page. Empty
// when the client is not configured.
func (s *Service) AuthCodeURL(state string) string {
	if s == nil || s.clientID == "" {
		return ""
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}
