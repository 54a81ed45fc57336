package domain

import "time"

// Notification is the persisted in-app record created by the in-app channel.
// It doubles as the user-facing notification feed entry.
type Notification struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Data        map[string]any `json:"data,omitempty"`
	ActionURL   string         `json:"action_url,omitempty"`
	ActionLabel string         `json:"action_label,omitempty"`
	Priority    int            `json:"priority"`
	Locale      string         `json:"locale"`
	Read        bool           `json:"read"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Delivery statuses for per-channel delivery rows.
const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// Delivery is the per-channel sub-record attached to a Notification.
type Delivery struct {
	ID             string    `json:"id"`
	NotificationID string    `json:"notification_id"`
	Channel        string    `json:"channel"`
	Status         string    `json:"status"`
	ExternalID     *string   `json:"external_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FeedFilter holds query parameters for paginated feed listing.
type FeedFilter struct {
	UnreadOnly bool
	Page       int
	Limit      int
}
