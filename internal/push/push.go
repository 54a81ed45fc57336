package push

import (
	"context"
	"errors"
)

// ErrUnregistered reports a stale device token. The push channel clears the
// device's token when it sees this error; it is not a delivery failure for
// the message as a whole.
var ErrUnregistered = errors.New("push token is not registered")

// Note is one push to a single device token.
type Note struct {
	Token        string
	Title        string
	Body         string
	Data         map[string]any
	Platform     string
	HighPriority bool
}

// Response is the provider's acknowledgement for an accepted push.
type Response struct {
	MessageID string
}

// Sender abstracts the push provider.
type Sender interface {
	Send(ctx context.Context, note Note) (*Response, error)
}
