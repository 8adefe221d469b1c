package domain

import "time"

// User represents an account created through Google sign-in
type User struct {
	ID        string    `json:"id" db:"id"`
	GoogleID  string    `json:"-" db:"google_id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	AvatarURL string    `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Identity is the authenticated caller resolved from a session
type Identity struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	SessionID string `json:"-"`
}

// IsZero reports whether no user is attached
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// GoogleProfile is the subset of Google's userinfo response we persist
type GoogleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}
