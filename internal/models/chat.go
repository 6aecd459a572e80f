package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a direct chat between exactly two users. Participants are
// fixed at creation; at most one conversation exists per unordered pair.
type Conversation struct {
	ID           uuid.UUID   `json:"id"`
	Participants []uuid.UUID `json:"participants"`
	Messages     []Message   `json:"messages"`
	LastActivity time.Time   `json:"last_activity"`
}

// Group is a named multi-user chat. The creator is always a member and a
// permanent admin; Admins is always a subset of Members.
type Group struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	CreatorID    uuid.UUID   `json:"creator_id"`
	Admins       []uuid.UUID `json:"admins"`
	Members      []uuid.UUID `json:"members"`
	Messages     []Message   `json:"messages"`
	LastActivity time.Time   `json:"last_activity"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Chat kinds used in list responses
const (
	ChatKindDirect = "direct"
	ChatKindGroup  = "group"
)

// ChatSummary is a sidebar entry: one conversation or group without its
// message log.
type ChatSummary struct {
	ID           uuid.UUID   `json:"id"`
	Kind         string      `json:"kind"`
	Name         string      `json:"name,omitempty"`
	Participants []uuid.UUID `json:"participants,omitempty"`
	Members      []uuid.UUID `json:"members,omitempty"`
	LastActivity time.Time   `json:"last_activity"`
}

// CreateGroupRequest is the payload for group creation
type CreateGroupRequest struct {
	Name        string      `json:"name" binding:"required,min=1,max=80"`
	Description string      `json:"description"`
	MemberIDs   []uuid.UUID `json:"member_ids"`
}

// UserIDRequest carries a single target user id (friend requests, direct
// conversations, group membership changes)
type UserIDRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}
