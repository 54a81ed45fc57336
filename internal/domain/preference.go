package domain

import "time"

// DefaultEnabledChannels apply when a user has no preference record.
func DefaultEnabledChannels() []string {
	return []string{ChannelInApp, ChannelPush}
}

// Urgent notification types bypass quiet-hours suppression.
var urgentTypes = map[string]struct{}{
	"security_alert":     {},
	"password_reset":     {},
	"account_locked":     {},
	"transaction_failed": {},
}

// IsUrgentType reports whether notifications of this type may never be
// suppressed by quiet hours.
func IsUrgentType(notifType string) bool {
	_, ok := urgentTypes[notifType]
	return ok
}

// Preference is a user's per-channel opt-in record.
type Preference struct {
	UserID string `json:"user_id"`

	// Channels maps channel id to enabled. Channels absent from the map
	// fall back to the opt-out default for that channel; in_app can never
	// be disabled.
	Channels map[string]bool `json:"channels"`

	// TypeOverrides maps a notification type to an explicit channel list,
	// replacing the Channels map for that type.
	TypeOverrides map[string][]string `json:"type_overrides,omitempty"`

	// Quiet-hours window in "HH:MM" local wall-clock form. When end < start
	// the window spans midnight. Both nil means no quiet hours.
	QuietHoursStart *string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   *string `json:"quiet_hours_end,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
