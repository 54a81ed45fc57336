package repository

import (
	"context"
	"time"

	"github.com/fidelize/notifyd/internal/domain"
)

// NotificationRepository persists in-app notification records and their
// per-channel delivery rows. The pgx implementation is in
// pg_notification_repo.go; tests use the hand-written mock.
type NotificationRepository interface {
	// CreateWithDelivery inserts the notification and its delivery row
	// atomically. The in-app channel relies on this to produce a durable
	// record in a single round trip.
	CreateWithDelivery(ctx context.Context, n *domain.Notification, d *domain.Delivery) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	Feed(ctx context.Context, userID string, filter domain.FeedFilter) ([]*domain.Notification, int, error)
	MarkRead(ctx context.Context, id string, readAt time.Time) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// DeviceRepository exposes the push targets registered for a user.
type DeviceRepository interface {
	// FindActiveByUserID returns enabled devices that still hold a token.
	FindActiveByUserID(ctx context.Context, userID string) ([]*domain.Device, error)
	// ClearToken drops a device's push token after the provider reports it
	// unregistered. Clearing twice is harmless.
	ClearToken(ctx context.Context, deviceID string) error
}

// PreferenceRepository resolves a user's channel opt-in record.
type PreferenceRepository interface {
	// FindByUserID returns domain.ErrNotFound when the user has no record,
	// in which case defaults apply.
	FindByUserID(ctx context.Context, userID string) (*domain.Preference, error)
}

// UserRepository resolves recipient identities.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
