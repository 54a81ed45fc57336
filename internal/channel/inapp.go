package channel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/repository"
)

// InAppChannel persists the notification as a feed record. It supports every
// message and runs first, so a durable record exists before any
// external-facing channel is attempted.
type InAppChannel struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

func NewInAppChannel(
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	logger *zap.Logger,
) *InAppChannel {
	return &InAppChannel{users: users, notifications: notifications, logger: logger}
}

func (c *InAppChannel) ChannelID() string { return domain.ChannelInApp }
func (c *InAppChannel) Priority() int     { return PriorityInApp }

func (c *InAppChannel) Supports(_ context.Context, _ domain.Message) bool {
	return true
}

func (c *InAppChannel) Deliver(ctx context.Context, msg domain.Message) domain.DeliveryResult {
	user, err := c.users.FindByID(ctx, msg.RecipientID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DeliveryFailed(domain.ChannelInApp, domain.CodeUserNotFound,
			"recipient does not exist")
	}
	if err != nil {
		return domain.DeliveryFailed(domain.ChannelInApp, domain.CodeDatabaseError, err.Error())
	}

	now := time.Now().UTC()
	n := &domain.Notification{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Type:        msg.Type,
		Title:       msg.Title,
		Body:        msg.Body,
		Data:        msg.Data,
		ActionURL:   msg.ActionURL,
		ActionLabel: msg.ActionLabel,
		Priority:    msg.Priority,
		Locale:      msg.Locale,
		CreatedAt:   now,
	}
	d := &domain.Delivery{
		ID:             uuid.New().String(),
		NotificationID: n.ID,
		Channel:        domain.ChannelInApp,
		Status:         domain.DeliveryStatusSent,
		CreatedAt:      now,
	}

	if err := c.notifications.CreateWithDelivery(ctx, n, d); err != nil {
		c.logger.Error("in-app persist failed",
			zap.String("user_id", user.ID), zap.Error(err))
		return domain.DeliveryFailed(domain.ChannelInApp, domain.CodeDatabaseError, err.Error())
	}

	return domain.Delivered(domain.ChannelInApp, n.ID, nil)
}

var _ NotificationChannel = (*InAppChannel)(nil)
