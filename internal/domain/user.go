package domain

import "time"

// User is an authenticated identity. Display data lives on Profile;
// User carries only what login and authorization need.
type User struct {
	Record
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Empty for OAuth-only accounts
	OAuthSubject string    `json:"-"` // Provider subject ("google:1234..."), empty for password accounts
	IsAdmin      bool      `json:"is_admin"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// HasPassword reports whether the account can log in with email/password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
