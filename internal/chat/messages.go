package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidgault/parley/internal/models"
)

// containerRef points at the mutable log of a conversation or group.
// Valid only while the store lock is held.
type containerRef struct {
	messages     *[]models.Message
	lastActivity *time.Time
	members      []uuid.UUID
}

func (s *Store) container(id uuid.UUID) (containerRef, bool) {
	if c, ok := s.conversations[id]; ok {
		return containerRef{&c.Messages, &c.LastActivity, c.Participants}, true
	}
	if g, ok := s.groups[id]; ok {
		return containerRef{&g.Messages, &g.LastActivity, g.Members}, true
	}
	return containerRef{}, false
}

func (s *Store) findMessage(messageID uuid.UUID) (*models.Message, containerRef, error) {
	containerID, ok := s.messageHome[messageID]
	if !ok {
		return nil, containerRef{}, ErrNotFound
	}
	ref, ok := s.container(containerID)
	if !ok {
		return nil, containerRef{}, ErrNotFound
	}
	msgs := *ref.messages
	for i := range msgs {
		if msgs[i].ID == messageID {
			return &msgs[i], ref, nil
		}
	}
	return nil, containerRef{}, ErrNotFound
}

// Append adds a message to a conversation or group log. The sender must be a
// participant at call time. Timestamps never decrease within one container:
// if the wall clock reads earlier than the last entry, the new message takes
// the last entry's timestamp and order stays insertion order.
func (s *Store) Append(ctx context.Context, containerID, senderID uuid.UUID, content string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.container(containerID)
	if !ok {
		return models.Message{}, ErrNotFound
	}
	if !containsID(ref.members, senderID) {
		return models.Message{}, ErrNotParticipant
	}

	ts := time.Now().UTC()
	msgs := *ref.messages
	if n := len(msgs); n > 0 && ts.Before(msgs[n-1].Timestamp) {
		ts = msgs[n-1].Timestamp
	}

	msg := models.Message{
		ID:        uuid.New(),
		SenderID:  senderID,
		Content:   content,
		Timestamp: ts,
		ReadBy:    []uuid.UUID{senderID},
		Reactions: []models.Reaction{},
	}

	prevActivity := *ref.lastActivity
	*ref.messages = append(msgs, msg)
	*ref.lastActivity = ts
	s.messageHome[msg.ID] = containerID

	if err := s.commit(ctx); err != nil {
		*ref.messages = (*ref.messages)[:len(msgs)]
		*ref.lastActivity = prevActivity
		delete(s.messageHome, msg.ID)
		return models.Message{}, err
	}

	s.logger.Debugw("message appended", "container", containerID, "message", msg.ID, "sender", senderID)
	return cloneMessage(&msg), nil
}

// React toggles the user's reaction on a message: present removes it
// (dropping the emoji entry when its count reaches zero), absent adds it.
// Returns the updated message.
func (s *Store) React(ctx context.Context, messageID, userID uuid.UUID, emoji string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ref, err := s.findMessage(messageID)
	if err != nil {
		return models.Message{}, err
	}
	if !containsID(ref.members, userID) {
		return models.Message{}, ErrNotParticipant
	}

	toggleReaction(msg, userID, emoji)

	if err := s.commit(ctx); err != nil {
		// the toggle is its own inverse
		toggleReaction(msg, userID, emoji)
		return models.Message{}, err
	}

	return cloneMessage(msg), nil
}

func toggleReaction(msg *models.Message, userID uuid.UUID, emoji string) {
	for i := range msg.Reactions {
		r := &msg.Reactions[i]
		if r.Emoji != emoji {
			continue
		}
		if users, removed := removeID(r.Users, userID); removed {
			r.Users = users
			r.Count--
			if r.Count == 0 {
				msg.Reactions = append(msg.Reactions[:i], msg.Reactions[i+1:]...)
			}
			return
		}
		r.Users = append(r.Users, userID)
		r.Count++
		return
	}
	msg.Reactions = append(msg.Reactions, models.Reaction{
		Emoji: emoji,
		Count: 1,
		Users: []uuid.UUID{userID},
	})
}

// MarkRead records that the user has read the message. Idempotent.
func (s *Store) MarkRead(ctx context.Context, messageID, userID uuid.UUID) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ref, err := s.findMessage(messageID)
	if err != nil {
		return models.Message{}, err
	}
	if !containsID(ref.members, userID) {
		return models.Message{}, ErrNotParticipant
	}
	if containsID(msg.ReadBy, userID) {
		return cloneMessage(msg), nil
	}

	msg.ReadBy = append(msg.ReadBy, userID)

	if err := s.commit(ctx); err != nil {
		msg.ReadBy, _ = removeID(msg.ReadBy, userID)
		return models.Message{}, err
	}

	return cloneMessage(msg), nil
}

// MessagesSince returns the container's log in strict append order. A zero
// cursor returns the full log; otherwise only messages after the cursor
// message are returned, and an unknown cursor is ErrNotFound. The caller
// must be a participant.
func (s *Store) MessagesSince(containerID, userID, cursor uuid.UUID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, ok := s.container(containerID)
	if !ok {
		return nil, ErrNotFound
	}
	if !containsID(ref.members, userID) {
		return nil, ErrNotParticipant
	}

	msgs := *ref.messages
	if cursor == uuid.Nil {
		return cloneMessages(msgs), nil
	}
	for i := range msgs {
		if msgs[i].ID == cursor {
			return cloneMessages(msgs[i+1:]), nil
		}
	}
	return nil, ErrNotFound
}
