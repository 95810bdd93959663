package models

// Event types published after successful mutations.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
	EventPostCreated = "post.created"
)

// Event represents a domain event message
type Event struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	UserID    int64  `json:"user_id"`
	PostID    int64  `json:"post_id,omitempty"`
}
