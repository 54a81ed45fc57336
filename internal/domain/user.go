package domain

import "time"

// User is the recipient identity as stored by the platform.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) GetUserID() string    { return u.ID }
func (u *User) GetUserEmail() string { return u.Email }
