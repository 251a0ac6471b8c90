package service

import (
	"context"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
)

// notifier writes in-app notifications and emails. Every send is best
// effort: failures are logged and never fail the operation that caused them.
type notifier struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc EmailService
}

func (n *notifier) notify(ctx context.Context, userID uuid.UUID, title, message string, attrs map[string]string) {
	note := &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("Failed to create notification", "userID", userID, "title", title, "error", err)
	}
}

func (n *notifier) notifyManagers(ctx context.Context, title, message string, attrs map[string]string) {
	managers, err := n.userRepo.ListByRole(ctx, domain.UserRoleAdmin, domain.UserRoleLabManager)
	if err != nil {
		logger.Warn("Failed to list managers for notification", "title", title, "error", err)
		return
	}
	for _, m := range managers {
		n.notify(ctx, m.ID, title, message, attrs)
	}
}

// user fetches a recipient for email; nil when it cannot be loaded.
func (n *notifier) user(ctx context.Context, id uuid.UUID) *domain.User {
	u, err := n.userRepo.GetByID(ctx, id)
	if err != nil {
		logger.Warn("Failed to load user for email", "userID", id, "error", err)
		return nil
	}
	return u
}

func (n *notifier) emailDecision(ctx context.Context, userID uuid.UUID, resourceName string, status domain.ReservationStatus, note string) {
	u := n.user(ctx, userID)
	if u == nil {
		return
	}
	if err := n.emailSvc.SendReservationDecision(ctx, u.Email, u.Name, resourceName, status, note); err != nil {
		logger.Warn("Failed to send decision email", "userID", userID, "error", err)
	}
}
