package channel

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/mailer"
)

// EmailChannel delivers transactional email through the configured mailer.
type EmailChannel struct {
	mailer mailer.Mailer
	logger *zap.Logger
}

func NewEmailChannel(m mailer.Mailer, logger *zap.Logger) *EmailChannel {
	return &EmailChannel{mailer: m, logger: logger}
}

func (c *EmailChannel) ChannelID() string { return domain.ChannelEmail }
func (c *EmailChannel) Priority() int     { return PriorityEmail }

func (c *EmailChannel) Supports(_ context.Context, msg domain.Message) bool {
	return msg.RecipientEmail != ""
}

func (c *EmailChannel) Deliver(ctx context.Context, msg domain.Message) domain.DeliveryResult {
	htmlBody := msg.DataString("email_html")
	if htmlBody == "" {
		htmlBody = renderEmailHTML(msg)
	}

	textBody := msg.Body
	if msg.ActionURL != "" {
		textBody += "\n\n" + msg.ActionURL
	}

	messageID, err := c.mailer.Send(ctx, mailer.Email{
		To:       msg.RecipientEmail,
		Subject:  msg.Title,
		TextBody: textBody,
		HTMLBody: htmlBody,
		Tag:      msg.Type,
	})
	if err != nil {
		code := classifyEmailError(err)
		c.logger.Warn("email delivery failed",
			zap.String("recipient", msg.RecipientEmail),
			zap.String("error_code", code),
			zap.Error(err))
		return domain.DeliveryFailed(domain.ChannelEmail, code, err.Error())
	}

	return domain.Delivered(domain.ChannelEmail, messageID, map[string]any{
		"recipient": msg.RecipientEmail,
	})
}

// renderEmailHTML produces the fallback HTML body when the caller did not
// supply data.email_html.
func renderEmailHTML(msg domain.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(msg.Title))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(msg.Body))
	if msg.ActionURL != "" {
		label := msg.ActionLabel
		if label == "" {
			label = msg.ActionURL
		}
		fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`,
			html.EscapeString(msg.ActionURL), html.EscapeString(label))
	}
	return b.String()
}

// Postmark error codes that identify an unusable recipient address.
const (
	postmarkInvalidEmailRequest = 300
	postmarkInactiveRecipient   = 406
	postmarkRateLimitExceeded   = 429
)

// classifyEmailError maps a transport error into a stable error code.
// Structured codes from the mailer are preferred; the substring heuristic
// over the error text is a best-effort fallback for unstructured failures.
func classifyEmailError(err error) string {
	var me *mailer.Error
	if errors.As(err, &me) {
		switch me.Code {
		case postmarkInvalidEmailRequest, postmarkInactiveRecipient:
			return domain.CodeInvalidRecipient
		case postmarkRateLimitExceeded:
			return domain.CodeRateLimited
		}
	}

	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "rate") || strings.Contains(text, "limit"):
		return domain.CodeRateLimited
	case strings.Contains(text, "timeout"):
		return domain.CodeTimeout
	case strings.Contains(text, "unavailable") || strings.Contains(text, "503"):
		return domain.CodeServiceUnavailable
	case strings.Contains(text, "invalid") && strings.Contains(text, "address"):
		return domain.CodeInvalidRecipient
	default:
		return domain.CodeUnknownError
	}
}

var _ NotificationChannel = (*EmailChannel)(nil)
