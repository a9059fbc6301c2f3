package chat

import "time"

// Role tags who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a session conversation. Turns are append-only.
type Turn struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Suggestion string    `json:"suggestion,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
