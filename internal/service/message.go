package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
)

type messageService struct {
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	notifier
}

func NewMessageService(msgRepo repository.MessageRepository, userRepo repository.UserRepository, noteRepo repository.NotificationRepository) MessageService {
	return &messageService{
		msgRepo:  msgRepo,
		userRepo: userRepo,
		notifier: notifier{noteRepo: noteRepo, userRepo: userRepo},
	}
}

func (s *messageService) SendMessage(ctx context.Context, actor domain.Actor, recipientID uuid.UUID, subject, body string) (*domain.Message, error) {
	const method = "messageService.SendMessage"
	logger.EnterMethod(method, "senderID", actor.UserID, "recipientID", recipientID)

	if recipientID == actor.UserID {
		return nil, fail(method, fmt.Errorf("%w: cannot message yourself", ErrInvalidInput))
	}
	if strings.TrimSpace(body) == "" {
		return nil, fail(method, fmt.Errorf("%w: message body is required", ErrInvalidInput))
	}
	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		return nil, fail(method, err, "recipientID", recipientID)
	}

	msg := &domain.Message{
		SenderID:    actor.UserID,
		RecipientID: recipientID,
		Subject:     strings.TrimSpace(subject),
		Body:        body,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, fail(method, err)
	}

	s.notify(ctx, recipientID, "New message", msg.Subject, map[string]string{
		"message_id": msg.ID.String(),
		"sender_id":  actor.UserID.String(),
	})

	logger.ExitMethod(method, "messageID", msg.ID)
	return msg, nil
}

func (s *messageService) ListInbox(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Message, int32, error) {
	limit, offset := pageOffset(page, pageSize)
	msgs, total, err := s.msgRepo.ListInbox(ctx, actor.UserID, limit, offset)
	if err != nil {
		return nil, 0, fail("messageService.ListInbox", err, "userID", actor.UserID)
	}
	return msgs, total, nil
}

func (s *messageService) ListConversation(ctx context.Context, actor domain.Actor, otherID uuid.UUID, page, pageSize int32) ([]domain.Message, error) {
	limit, offset := pageOffset(page, pageSize)
	msgs, err := s.msgRepo.ListConversation(ctx, actor.UserID, otherID, limit, offset)
	if err != nil {
		return nil, fail("messageService.ListConversation", err, "userID", actor.UserID, "otherID", otherID)
	}
	return msgs, nil
}

// MarkAsRead only touches messages addressed to the actor.
func (s *messageService) MarkAsRead(ctx context.Context, actor domain.Actor, messageID uuid.UUID) error {
	if err := s.msgRepo.MarkAsRead(ctx, messageID, actor.UserID); err != nil {
		return fail("messageService.MarkAsRead", err, "userID", actor.UserID, "messageID", messageID)
	}
	return nil
}
