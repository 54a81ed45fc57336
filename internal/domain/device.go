package domain

import "time"

// Device platforms.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformWeb     = "web"
)

// Device is a registered push target for a user.
// A device is active when it is enabled and still holds a push token;
// the push channel clears tokens the provider reports as unregistered.
type Device struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Platform  string    `json:"platform"`
	PushToken *string   `json:"push_token,omitempty"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Device) HasToken() bool {
	return d.PushToken != nil && *d.PushToken != ""
}
