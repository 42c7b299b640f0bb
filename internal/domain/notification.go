package domain

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationTypeVote    NotificationType = "vote"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeReply   NotificationType = "reply"
)

// Notification is a user-scoped event record with a free-form payload.
// Generated when someone votes on or comments against your products.
type Notification struct {
	Record
	UserID  string            `json:"user_id"` // Recipient
	Type    NotificationType  `json:"type"`
	Read    bool              `json:"read"`
	Payload map[string]string `json:"payload,omitempty"` // e.g. product_id, actor_id, comment_id
}
