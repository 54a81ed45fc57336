package mailer

import (
	"context"
	"fmt"
)

// Email is one transactional email.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	Tag      string
}

// Mailer abstracts the transactional email transport.
// Send returns the transport's message id on success.
type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

// Error carries the transport's structured error code when the provider
// returned one. Callers should classify on Code before falling back to
// message-text heuristics.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mail transport error %d: %s", e.Code, e.Message)
}
