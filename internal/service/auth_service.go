package service

import (
	"context"
	"errors"

	"shipfire/config"
	"shipfire/internal/auth"
	"shipfire/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService issues access tokens for email+password sign-in. Accounts are
// provisioned out of band, so there is no register path here.
type AuthService struct {
	cfg   *config.JWTConfig
	users UserStore
}

func NewAuthService(cfg *config.JWTConfig, users UserStore) *AuthService {
	return &AuthService{cfg: cfg, users: users}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := auth.GenerateAccessToken(s.cfg, u.UUID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
