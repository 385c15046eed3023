package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// Service records notifications and serves them back to their user. It
// satisfies order.Notifier, so order and checkout transitions write straight
// into the notification table. Email and realtime delivery hang off the same
// table and are outside this service.
type Service interface {
	Notify(ctx context.Context, userID uuid.UUID, message string, at time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Notify(ctx context.Context, userID uuid.UUID, message string, at time.Time) error {
	n := &Notification{UserID: userID, Message: message, CreatedAt: at}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to record notification")
		return fmt.Errorf("service: failed to record notification: %w", err)
	}
	return nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("service: failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("service: failed to mark notification read: %w", err)
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("service: failed to mark notifications read: %w", err)
	}
	return nil
}
