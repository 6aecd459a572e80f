package models

import (
	"time"

	"github.com/google/uuid"
)

// Reaction aggregates a single emoji on a message. Count always equals
// len(Users); a user appears at most once per emoji.
type Reaction struct {
	Emoji string      `json:"emoji"`
	Count int         `json:"count"`
	Users []uuid.UUID `json:"users"`
}

// Message is a single entry in a container's log. Content, sender and
// timestamp are immutable once appended; only ReadBy and Reactions change.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	SenderID  uuid.UUID   `json:"sender_id"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	ReadBy    []uuid.UUID `json:"read_by"`
	Reactions []Reaction  `json:"reactions"`
}

// HasReaction reports whether the user currently holds the given emoji on
// the message.
func (m *Message) HasReaction(userID uuid.UUID, emoji string) bool {
	for i := range m.Reactions {
		if m.Reactions[i].Emoji != emoji {
			continue
		}
		for _, u := range m.Reactions[i].Users {
			if u == userID {
				return true
			}
		}
	}
	return false
}

// MessageRequest is the structure for message creation requests
type MessageRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

// ReactionRequest carries the emoji for a reaction toggle
type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}
