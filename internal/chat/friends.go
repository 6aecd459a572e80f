package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidgault/parley/internal/models"
)

// SendRequest records a pending friend request. It returns false without an
// error when the two users are already friends or a request is already
// pending in either direction; callers can treat that as an idempotent no-op.
func (s *Store) SendRequest(ctx context.Context, fromID, toID uuid.UUID) (bool, error) {
	if fromID == toID {
		return false, ErrSelfRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.users[fromID]
	if !ok {
		return false, ErrNotFound
	}
	to, ok := s.users[toID]
	if !ok {
		return false, ErrNotFound
	}

	if containsID(from.Friends, toID) ||
		containsID(from.Outgoing, toID) ||
		containsID(from.Incoming, toID) {
		return false, nil
	}

	from.Outgoing = append(from.Outgoing, toID)
	to.Incoming = append(to.Incoming, fromID)

	if err := s.commit(ctx); err != nil {
		from.Outgoing, _ = removeID(from.Outgoing, toID)
		to.Incoming, _ = removeID(to.Incoming, fromID)
		return false, err
	}

	s.logger.Debugw("friend request sent", "from", fromID, "to", toID)
	return true, nil
}

// AcceptRequest turns a reciprocal pending request into a friendship. Both
// pending entries are cleared and the symmetric friendship recorded in the
// same commit, and the direct conversation for the pair is created if absent.
// Both users are notified that the conversation is ready.
func (s *Store) AcceptRequest(ctx context.Context, userID, requesterID uuid.UUID) (models.Conversation, error) {
	conv, err := s.acceptRequest(ctx, userID, requesterID)
	if err != nil {
		return models.Conversation{}, err
	}
	if s.notifier != nil {
		s.notifier.ConversationReady([]uuid.UUID{userID, requesterID}, conv.ID)
	}
	return conv, nil
}

func (s *Store) acceptRequest(ctx context.Context, userID, requesterID uuid.UUID) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.Conversation{}, ErrNotFound
	}
	requester, ok := s.users[requesterID]
	if !ok {
		return models.Conversation{}, ErrNotFound
	}

	// The request must be pending on both sides; anything else (withdrawn,
	// already accepted, never sent) is the same failure.
	if !containsID(user.Incoming, requesterID) || !containsID(requester.Outgoing, userID) {
		return models.Conversation{}, ErrNoSuchRequest
	}

	user.Incoming, _ = removeID(user.Incoming, requesterID)
	requester.Outgoing, _ = removeID(requester.Outgoing, userID)
	user.Friends = append(user.Friends, requesterID)
	requester.Friends = append(requester.Friends, userID)

	key := pairKey(userID, requesterID)
	var conv *models.Conversation
	created := false
	if id, ok := s.direct[key]; ok {
		conv = s.conversations[id]
	} else {
		conv = &models.Conversation{
			ID:           uuid.New(),
			Participants: orderedPair(userID, requesterID),
			Messages:     []models.Message{},
			LastActivity: time.Now().UTC(),
		}
		s.conversations[conv.ID] = conv
		s.direct[key] = conv.ID
		created = true
	}

	if err := s.commit(ctx); err != nil {
		user.Friends, _ = removeID(user.Friends, requesterID)
		requester.Friends, _ = removeID(requester.Friends, userID)
		user.Incoming = append(user.Incoming, requesterID)
		requester.Outgoing = append(requester.Outgoing, userID)
		if created {
			delete(s.conversations, conv.ID)
			delete(s.direct, key)
		}
		return models.Conversation{}, err
	}

	s.logger.Infow("friend request accepted",
		"user", userID, "requester", requesterID, "conversation", conv.ID)
	return cloneConversation(conv), nil
}

// RejectRequest clears any pending request between the two users on both
// sides. It is idempotent: rejecting an absent request is a no-op, not an
// error.
func (s *Store) RejectRequest(ctx context.Context, userID, requesterID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	requester, ok := s.users[requesterID]
	if !ok {
		return ErrNotFound
	}

	var removedIn, removedOut bool
	user.Incoming, removedIn = removeID(user.Incoming, requesterID)
	requester.Outgoing, removedOut = removeID(requester.Outgoing, userID)
	if !removedIn && !removedOut {
		return nil
	}

	if err := s.commit(ctx); err != nil {
		if removedIn {
			user.Incoming = append(user.Incoming, requesterID)
		}
		if removedOut {
			requester.Outgoing = append(requester.Outgoing, userID)
		}
		return err
	}

	s.logger.Debugw("friend request rejected", "user", userID, "requester", requesterID)
	return nil
}

// Friends returns the user's friends
func (s *Store) Friends(userID uuid.UUID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]models.User, 0, len(user.Friends))
	for _, id := range user.Friends {
		if friend, ok := s.users[id]; ok {
			out = append(out, cloneUser(friend))
		}
	}
	return out, nil
}

// IncomingRequests returns the users with a pending request to userID
func (s *Store) IncomingRequests(userID uuid.UUID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]models.User, 0, len(user.Incoming))
	for _, id := range user.Incoming {
		if requester, ok := s.users[id]; ok {
			out = append(out, cloneUser(requester))
		}
	}
	return out, nil
}
