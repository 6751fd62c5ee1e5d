package service

import (
	"context"
	"errors"

	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
	"librental-backend/internal/security"
)

// ErrInvalidCredentials covers every authentication failure; the reason
// (unknown email, wrong password, disabled account) is deliberately not
// disclosed to the caller.
var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	users  repository.UserRepository
	tokens security.TokenManager
}

func NewAuthService(users repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		logger.Error("failed to load user for login", "error", err)
		return "", "", ErrTryAgain
	}

	if !user.Active || !security.CheckPassword(user.PasswordHash, password) {
		return "", "", ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		logger.Error("failed to generate access token", "user_id", user.ID, "error", err)
		return "", "", ErrTryAgain
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		logger.Error("failed to generate refresh token", "user_id", user.ID, "error", err)
		return "", "", ErrTryAgain
	}

	logger.Info("user logged in", "user_id", user.ID)
	return access, refresh, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return "", security.ErrInvalidToken
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", security.ErrWrongTokenType
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", security.ErrInvalidToken
	}
	if err != nil {
		logger.Error("failed to load user for token refresh", "user_id", claims.UserID, "error", err)
		return "", ErrTryAgain
	}
	if !user.Active {
		return "", security.ErrInvalidToken
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		logger.Error("failed to generate access token", "user_id", user.ID, "error", err)
		return "", ErrTryAgain
	}
	return access, nil
}
