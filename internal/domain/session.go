package domain

import "time"

// Session tracks a refresh-token grant for one client.
// The refresh token itself is stored only as a hash.
type Session struct {
	Record
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	UserAgent        string    `json:"user_agent,omitempty"`
	IPAddress        string    `json:"ip_address,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	LastUsedAt       time.Time `json:"last_used_at"`
}

// IsExpired reports whether the session can no longer be refreshed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
