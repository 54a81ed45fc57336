package channel

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/push"
	"github.com/fidelize/notifyd/internal/repository"
)

// PushChannel fans one message out to every active device the recipient has
// registered. Per-device outcomes are independent: the channel succeeds when
// at least one device accepted the push.
type PushChannel struct {
	devices repository.DeviceRepository
	sender  push.Sender
	logger  *zap.Logger
}

func NewPushChannel(devices repository.DeviceRepository, sender push.Sender, logger *zap.Logger) *PushChannel {
	return &PushChannel{devices: devices, sender: sender, logger: logger}
}

func (c *PushChannel) ChannelID() string { return domain.ChannelPush }
func (c *PushChannel) Priority() int     { return PriorityPush }

func (c *PushChannel) Supports(ctx context.Context, msg domain.Message) bool {
	devices, err := c.devices.FindActiveByUserID(ctx, msg.RecipientID)
	if err != nil {
		c.logger.Warn("device lookup failed during support check",
			zap.String("user_id", msg.RecipientID), zap.Error(err))
		return false
	}
	return len(devices) > 0
}

func (c *PushChannel) Deliver(ctx context.Context, msg domain.Message) domain.DeliveryResult {
	devices, err := c.devices.FindActiveByUserID(ctx, msg.RecipientID)
	if err != nil {
		return domain.DeliveryFailed(domain.ChannelPush, domain.CodeDatabaseError, err.Error())
	}
	if len(devices) == 0 {
		return domain.DeliveryFailed(domain.ChannelPush, domain.CodeNoDevices,
			"recipient has no active devices")
	}

	var (
		successCount int
		failedCount  int
		firstMsgID   string
	)

	for _, device := range devices {
		resp, err := c.sender.Send(ctx, push.Note{
			Token:        *device.PushToken,
			Title:        msg.Title,
			Body:         msg.Body,
			Data:         msg.Data,
			Platform:     device.Platform,
			HighPriority: msg.IsHighPriority(),
		})
		if err != nil {
			failedCount++
			if errors.Is(err, push.ErrUnregistered) {
				// Stale token: clean it up so the device stops counting as
				// active. Best effort, never fails the delivery.
				if clearErr := c.devices.ClearToken(ctx, device.ID); clearErr != nil {
					c.logger.Warn("failed to clear stale push token",
						zap.String("device_id", device.ID), zap.Error(clearErr))
				} else {
					c.logger.Info("cleared unregistered push token",
						zap.String("device_id", device.ID),
						zap.String("user_id", msg.RecipientID))
				}
				continue
			}
			c.logger.Warn("push send failed",
				zap.String("device_id", device.ID), zap.Error(err))
			continue
		}

		successCount++
		if firstMsgID == "" {
			firstMsgID = resp.MessageID
		}
	}

	metadata := map[string]any{
		"success_count": successCount,
		"failed_count":  failedCount,
	}
	if successCount == 0 {
		return domain.DeliveryFailedMeta(domain.ChannelPush, domain.CodeAllFailed,
			"no device accepted the push", metadata)
	}
	return domain.Delivered(domain.ChannelPush, firstMsgID, metadata)
}

var _ NotificationChannel = (*PushChannel)(nil)
