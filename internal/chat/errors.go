package chat

import "errors"

// Sentinel errors for expected failures. Handlers map these to HTTP statuses;
// anything else that comes out of the store is an internal failure.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrSelfRequest       = errors.New("cannot target yourself")
	ErrNoSuchRequest     = errors.New("no such friend request")
	ErrNotAdmin          = errors.New("not a group admin")
	ErrNotMember         = errors.New("not a group member")
	ErrNotParticipant    = errors.New("not a participant")
)
