// internal/models/chat.go
package models

import "time"

// ChatMessage is one turn of a conversation session.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
