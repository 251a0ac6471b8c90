package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fail("userService.GetProfile", err, "userID", userID)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor domain.Actor, name, department string) (*domain.User, error) {
	const method = "userService.UpdateProfile"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fail(method, fmt.Errorf("%w: name is required", ErrInvalidInput), "userID", actor.UserID)
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fail(method, err, "userID", actor.UserID)
	}
	user.Name = name
	user.Department = strings.TrimSpace(department)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fail(method, err, "userID", actor.UserID)
	}
	return user, nil
}
