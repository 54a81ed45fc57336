package channel

import (
	"context"

	"github.com/fidelize/notifyd/internal/domain"
)

// Channel ordering weights. Lower sorts first: the in-app record is written
// before any external-facing channel fires.
const (
	PriorityInApp = 5
	PriorityPush  = 10
	PriorityEmail = 20
	PrioritySMS   = 30
)

// NotificationChannel is the capability contract every delivery strategy
// implements.
type NotificationChannel interface {
	// ChannelID is the stable string key for this channel, used for
	// preference matching and as the result map key.
	ChannelID() string

	// Priority is the static ordering weight; lower runs first.
	Priority() int

	// Supports is a side-effect-free precondition check. It must be cheap,
	// though it may issue a lookup (e.g. "does this user have devices").
	Supports(ctx context.Context, msg domain.Message) bool

	// Deliver performs the send. It never returns an error: every failure
	// mode is classified into the returned DeliveryResult.
	Deliver(ctx context.Context, msg domain.Message) domain.DeliveryResult
}
