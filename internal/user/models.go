package user

import "time"

// User is the stored account record.
//
// Lifecycle: created at signup unconfirmed; Confirmed flips to true exactly
// once via a valid email-verify token; RefreshToken is set on login/refresh
// and cleared on logout; Role is mutated only through the admin operation.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Confirmed    bool      `json:"confirmed"`
	RefreshToken string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
