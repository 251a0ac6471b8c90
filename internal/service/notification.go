package service

import (
	"context"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageOffset normalizes 1-based paging arguments into limit and offset.
func pageOffset(page, pageSize int32) (limit, offset int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int32) ([]domain.Notification, int32, error) {
	limit, offset := pageOffset(page, pageSize)
	notes, total, err := s.noteRepo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fail("notificationService.GetNotifications", err, "userID", userID)
	}
	return notes, total, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.noteRepo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return fail("notificationService.MarkAsRead", err, "userID", userID, "notificationID", notificationID)
	}
	return nil
}
