package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
)

type adminService struct {
	userRepo repository.UserRepository
}

func NewAdminService(userRepo repository.UserRepository) AdminService {
	return &adminService{userRepo: userRepo}
}

func (s *adminService) ListUsers(ctx context.Context, actor domain.Actor, roles ...domain.UserRole) ([]domain.User, error) {
	const method = "adminService.ListUsers"
	if err := requireAdmin(actor); err != nil {
		return nil, fail(method, err, "actorID", actor.UserID)
	}
	if len(roles) == 0 {
		roles = []domain.UserRole{domain.UserRoleUser, domain.UserRoleLabManager, domain.UserRoleAdmin}
	}
	users, err := s.userRepo.ListByRole(ctx, roles...)
	if err != nil {
		return nil, fail(method, err)
	}
	return users, nil
}

// SetRole changes a user's role. Admins cannot demote themselves, so the
// system always keeps at least the admin making the call.
func (s *adminService) SetRole(ctx context.Context, actor domain.Actor, userID uuid.UUID, role domain.UserRole) (*domain.User, error) {
	const method = "adminService.SetRole"
	logger.EnterMethod(method, "actorID", actor.UserID, "userID", userID, "role", role)

	if err := requireAdmin(actor); err != nil {
		return nil, fail(method, err, "actorID", actor.UserID)
	}
	switch role {
	case domain.UserRoleUser, domain.UserRoleLabManager, domain.UserRoleAdmin:
	default:
		return nil, fail(method, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role))
	}
	if userID == actor.UserID && role != domain.UserRoleAdmin {
		return nil, fail(method, fmt.Errorf("%w: admins cannot demote themselves", ErrInvalidInput))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fail(method, err, "userID", userID)
	}
	if user.Role == role {
		return user, nil
	}
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fail(method, err, "userID", userID)
	}

	logger.ExitMethod(method, "userID", userID, "role", role)
	return user, nil
}
