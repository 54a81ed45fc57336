package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/queue"
	"github.com/fidelize/notifyd/internal/repository"
)

// Dispatcher is the synchronous dispatch surface the service delegates to.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message) domain.DispatchResult
}

// NotificationService coordinates validation, the queue boundary, and the
// feed repository. HTTP handlers and workers depend on this service, not on
// each other.
type NotificationService struct {
	dispatcher Dispatcher
	transport  queue.Transport
	feed       repository.NotificationRepository
	logger     *zap.Logger
}

func NewNotificationService(
	dispatcher Dispatcher,
	transport queue.Transport,
	feed repository.NotificationRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		transport:  transport,
		feed:       feed,
		logger:     logger,
	}
}

// Send validates and dispatches a message inline, returning the per-channel
// results. Used by callers that need the outcome in the response.
func (s *NotificationService) Send(ctx context.Context, msg domain.Message) (domain.DispatchResult, error) {
	if err := msg.Validate(); err != nil {
		return domain.DispatchResult{}, err
	}
	return s.dispatcher.Dispatch(ctx, msg), nil
}

// SendAsync validates the message and places it on the queue, fire and
// forget. Delivery happens in the worker pool.
//
// An enqueue failure (transport unavailable, lane full) is logged and
// swallowed: async delivery is best-effort, and the durable in-app record is
// written by the in-app channel at dispatch time, not here.
func (s *NotificationService) SendAsync(ctx context.Context, msg domain.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	env := queue.Envelope{
		ID:         uuid.New().String(),
		Message:    msg,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := s.transport.Enqueue(ctx, env); err != nil {
		s.logger.Error("could not enqueue notification",
			zap.String("recipient_id", msg.RecipientID),
			zap.String("type", msg.Type),
			zap.Error(err))
		return nil
	}

	s.logger.Debug("notification enqueued",
		zap.String("envelope_id", env.ID),
		zap.String("recipient_id", msg.RecipientID),
		zap.String("type", msg.Type))
	return nil
}

// Feed returns a page of a user's in-app notifications plus the total count.
func (s *NotificationService) Feed(ctx context.Context, userID string, filter domain.FeedFilter) ([]*domain.Notification, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	return s.feed.Feed(ctx, userID, filter)
}

// MarkRead marks a single in-app notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	return s.feed.MarkRead(ctx, notificationID, time.Now().UTC())
}

// CountUnread returns the unread badge count for a user.
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.feed.CountUnread(ctx, userID)
}
