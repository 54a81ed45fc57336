package channel_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/channel"
	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/mailer"
)

// fakeMailer records the last email and returns a configured outcome.
type fakeMailer struct {
	lastEmail mailer.Email
	messageID string
	err       error
}

func (f *fakeMailer) Send(_ context.Context, email mailer.Email) (string, error) {
	f.lastEmail = email
	if f.err != nil {
		return "", f.err
	}
	return f.messageID, nil
}

func emailMsg() domain.Message {
	return domain.ForRecipient(&domain.User{ID: "u1", Email: "u1@example.com"},
		"welcome", "Bienvenue", "corps du message")
}

func TestEmailChannel_Supports(t *testing.T) {
	ch := channel.NewEmailChannel(&fakeMailer{}, zap.NewNop())

	if !ch.Supports(context.Background(), emailMsg()) {
		t.Fatal("expected support with a recipient email")
	}

	noEmail := emailMsg()
	noEmail.RecipientEmail = ""
	if ch.Supports(context.Background(), noEmail) {
		t.Fatal("expected no support without a recipient email")
	}
}

func TestEmailChannel_Deliver(t *testing.T) {
	fm := &fakeMailer{messageID: "pm-1"}
	ch := channel.NewEmailChannel(fm, zap.NewNop())

	msg := emailMsg().WithAction("https://app.example.com/activate", "Activer")
	res := ch.Deliver(context.Background(), msg)

	if !res.Success || res.ExternalID != "pm-1" {
		t.Fatalf("expected success with id pm-1, got %+v", res)
	}
	if res.Metadata["recipient"] != "u1@example.com" {
		t.Fatalf("expected recipient in metadata, got %v", res.Metadata)
	}
	if fm.lastEmail.Subject != "Bienvenue" {
		t.Fatalf("unexpected subject %q", fm.lastEmail.Subject)
	}
	if !strings.Contains(fm.lastEmail.HTMLBody, "https://app.example.com/activate") {
		t.Fatal("generated HTML should carry the action link")
	}
	if !strings.Contains(fm.lastEmail.TextBody, "https://app.example.com/activate") {
		t.Fatal("text body should carry the action link")
	}
}

func TestEmailChannel_Deliver_UsesProvidedHTML(t *testing.T) {
	fm := &fakeMailer{messageID: "pm-2"}
	ch := channel.NewEmailChannel(fm, zap.NewNop())

	msg := emailMsg().WithData(map[string]any{"email_html": "<p>custom</p>"})
	_ = ch.Deliver(context.Background(), msg)

	if fm.lastEmail.HTMLBody != "<p>custom</p>" {
		t.Fatalf("expected data.email_html to win, got %q", fm.lastEmail.HTMLBody)
	}
}

func TestEmailChannel_Deliver_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured invalid email", &mailer.Error{Code: 300, Message: "bad address"}, domain.CodeInvalidRecipient},
		{"structured inactive recipient", &mailer.Error{Code: 406, Message: "inactive"}, domain.CodeInvalidRecipient},
		{"structured rate limit", &mailer.Error{Code: 429, Message: "slow down"}, domain.CodeRateLimited},
		{"text rate limited", errors.New("sending rate exceeded"), domain.CodeRateLimited},
		{"text timeout", errors.New("i/o timeout"), domain.CodeTimeout},
		{"text unavailable", errors.New("upstream returned 503"), domain.CodeServiceUnavailable},
		{"text invalid address", errors.New("invalid recipient address"), domain.CodeInvalidRecipient},
		{"unclassified", errors.New("boom"), domain.CodeUnknownError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ch := channel.NewEmailChannel(&fakeMailer{err: tc.err}, zap.NewNop())
			res := ch.Deliver(context.Background(), emailMsg())

			if res.Success {
				t.Fatal("expected failure")
			}
			if res.ErrorCode != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, res.ErrorCode)
			}
		})
	}
}
