package mailer

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkMailer sends transactional email through the Postmark API.
type PostmarkMailer struct {
	client  *postmark.Client
	from    string
	replyTo string
}

// NewPostmarkMailer builds a Postmark-backed mailer. Both tokens and the
// sender address are required; failing here beats silent misconfiguration
// at send time.
func NewPostmarkMailer(serverToken, accountToken, from, replyTo string) (*PostmarkMailer, error) {
	if serverToken == "" || accountToken == "" {
		return nil, fmt.Errorf("postmark tokens are required")
	}
	if from == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	return &PostmarkMailer{
		client:  postmark.NewClient(serverToken, accountToken),
		from:    from,
		replyTo: replyTo,
	}, nil
}

func (m *PostmarkMailer) Send(ctx context.Context, email Email) (string, error) {
	resp, err := m.client.SendEmail(ctx, postmark.Email{
		From:     m.from,
		ReplyTo:  m.replyTo,
		To:       email.To,
		Subject:  email.Subject,
		TextBody: email.TextBody,
		HTMLBody: email.HTMLBody,
		Tag:      email.Tag,
	})
	if err != nil {
		return "", fmt.Errorf("postmark send: %w", err)
	}
	if resp.ErrorCode > 0 {
		return "", &Error{Code: int(resp.ErrorCode), Message: resp.Message}
	}
	return resp.MessageID, nil
}

var _ Mailer = (*PostmarkMailer)(nil)
