package domain

// Profile carries a user's public display data.
// One-to-one with User; created lazily the first time the user authenticates
// (self-healing upsert), so reads must tolerate a missing row.
type Profile struct {
	Record
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	Bio            string `json:"bio,omitempty"`
	WebsiteURL     string `json:"website_url,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	AvatarBlurhash string `json:"avatar_blurhash,omitempty"`
}
