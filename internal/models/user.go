package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user in the chat system. The credential hash
// is part of the persisted snapshot but never leaves through the API; client
// responses go through UserResponse.
type User struct {
	ID           uuid.UUID   `json:"id"`
	DisplayName  string      `json:"display_name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"password_hash,omitempty"`
	Friends      []uuid.UUID `json:"friends"`
	Incoming     []uuid.UUID `json:"incoming_requests"`
	Outgoing     []uuid.UUID `json:"outgoing_requests"`
	GroupIDs     []uuid.UUID `json:"group_ids"`
	CreatedAt    time.Time   `json:"created_at"`
}

// UserRegistration contains data needed for user registration
type UserRegistration struct {
	DisplayName string `json:"display_name" binding:"required,min=1,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=5"`
}

// UserLogin contains data needed for user login
type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is what we return to the client
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse strips a user down to its client-visible fields
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
	}
}
