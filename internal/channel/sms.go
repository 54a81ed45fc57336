package channel

import (
	"context"

	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/smsprovider"
)

// maxSMSLength is the single-segment GSM limit the rendered text is
// truncated to.
const maxSMSLength = 160

// SMSChannel delegates sending to a pluggable provider strategy. It is gated
// three ways: the channel's enabled flag, a configured provider, and a
// phone_number entry in the message data.
type SMSChannel struct {
	enabled  bool
	provider smsprovider.Provider
	logger   *zap.Logger
}

func NewSMSChannel(enabled bool, provider smsprovider.Provider, logger *zap.Logger) *SMSChannel {
	return &SMSChannel{enabled: enabled, provider: provider, logger: logger}
}

func (c *SMSChannel) ChannelID() string { return domain.ChannelSMS }
func (c *SMSChannel) Priority() int     { return PrioritySMS }

func (c *SMSChannel) Supports(_ context.Context, msg domain.Message) bool {
	return c.enabled &&
		c.provider != nil && c.provider.IsAvailable() &&
		msg.DataString("phone_number") != ""
}

func (c *SMSChannel) Deliver(ctx context.Context, msg domain.Message) domain.DeliveryResult {
	if !c.enabled {
		return domain.DeliveryFailed(domain.ChannelSMS, domain.CodeChannelDisabled,
			"sms channel is disabled")
	}
	if c.provider == nil || !c.provider.IsAvailable() {
		return domain.DeliveryFailed(domain.ChannelSMS, domain.CodeNoProvider,
			"no sms provider configured")
	}
	phone := msg.DataString("phone_number")
	if phone == "" {
		return domain.DeliveryFailed(domain.ChannelSMS, domain.CodeMissingPhone,
			"message data has no phone_number")
	}

	text := formatSMS(msg)
	res := c.provider.Send(ctx, phone, text)

	// Raw phone numbers never reach the logs.
	masked := smsprovider.MaskPhone(phone)

	if !res.Success {
		code := res.ErrorCode
		if code == "" {
			code = domain.CodeUnknownError
		}
		c.logger.Warn("sms delivery failed",
			zap.String("provider", c.provider.Name()),
			zap.String("phone", masked),
			zap.String("error_code", code))
		return domain.DeliveryFailedMeta(domain.ChannelSMS, code, res.ErrorMessage,
			map[string]any{"provider": c.provider.Name()})
	}

	c.logger.Info("sms sent",
		zap.String("provider", c.provider.Name()),
		zap.String("phone", masked))

	metadata := map[string]any{"provider": c.provider.Name()}
	for k, v := range res.Metadata {
		metadata[k] = v
	}
	return domain.Delivered(domain.ChannelSMS, res.MessageID, metadata)
}

// formatSMS renders "title: body" truncated to one SMS segment with an
// ellipsis. Truncation is rune-safe.
func formatSMS(msg domain.Message) string {
	text := msg.Title
	if msg.Body != "" {
		text += ": " + msg.Body
	}
	runes := []rune(text)
	if len(runes) <= maxSMSLength {
		return text
	}
	return string(runes[:maxSMSLength-3]) + "..."
}

var _ NotificationChannel = (*SMSChannel)(nil)
