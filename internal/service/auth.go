package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
	"labreserve-backend/internal/security"
)

const minPasswordLength = 8

type authService struct {
	userRepo     repository.UserRepository
	tokenManager security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokenManager security.TokenManager) AuthService {
	return &authService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
	}
}

func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	const method = "authService.SignUp"
	email := strings.ToLower(strings.TrimSpace(req.Email))
	logger.EnterMethod(method, "email", email)

	if email == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fail(method, fmt.Errorf("%w: email and name are required", ErrInvalidInput))
	}
	if len(req.Password) < minPasswordLength {
		return nil, fail(method, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fail(method, err)
	}

	// Self-registered accounts always start as plain users.
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Department:   strings.TrimSpace(req.Department),
		Role:         domain.UserRoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fail(method, ErrEmailTaken, "email", email)
		}
		return nil, fail(method, err, "email", email)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, fail(method, err, "userID", user.ID)
	}
	logger.ExitMethod(method, "userID", user.ID)
	return result, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	const method = "authService.SignIn"
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fail(method, ErrInvalidCredentials, "email", email)
		}
		return nil, fail(method, err, "email", email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fail(method, ErrInvalidCredentials, "email", email)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, fail(method, err, "userID", user.ID)
	}
	return result, nil
}

func (s *authService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	return &AuthResult{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}
