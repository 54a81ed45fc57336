package preference

import "context"

// Checker resolves which channels a message may use for a given recipient.
// It answers from the user's opt-in record and quiet-hours window; whether a
// channel technically supports a message is the registry's concern, not ours.
type Checker interface {
	// EnabledChannels returns the channels the user opted into for this
	// notification type. in_app is always present. Users without a
	// preference record get the platform defaults.
	EnabledChannels(ctx context.Context, userID, notifType string) ([]string, error)

	IsChannelEnabled(ctx context.Context, userID, channelID string) (bool, error)

	// InQuietHours reports whether the user's local clock currently falls
	// inside their configured quiet-hours window.
	InQuietHours(ctx context.Context, userID string) (bool, error)

	// FilterByPreference reduces candidates to what preferences and quiet
	// hours allow. Urgent notification types pass through untouched; other
	// types are restricted to in_app during quiet hours.
	FilterByPreference(ctx context.Context, userID, notifType string, candidates []string) ([]string, error)
}
