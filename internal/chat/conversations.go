package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidgault/parley/internal/models"
)

// DirectConversation returns the one conversation for the unordered pair,
// creating it if absent. Lookup is deterministic: the same pair always maps
// to the same conversation no matter the argument order.
func (s *Store) DirectConversation(ctx context.Context, aID, bID uuid.UUID) (models.Conversation, error) {
	if aID == bID {
		return models.Conversation{}, ErrSelfRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[aID]; !ok {
		return models.Conversation{}, ErrNotFound
	}
	if _, ok := s.users[bID]; !ok {
		return models.Conversation{}, ErrNotFound
	}

	key := pairKey(aID, bID)
	if id, ok := s.direct[key]; ok {
		return cloneConversation(s.conversations[id]), nil
	}

	conv := &models.Conversation{
		ID:           uuid.New(),
		Participants: orderedPair(aID, bID),
		Messages:     []models.Message{},
		LastActivity: time.Now().UTC(),
	}
	s.conversations[conv.ID] = conv
	s.direct[key] = conv.ID

	if err := s.commit(ctx); err != nil {
		delete(s.conversations, conv.ID)
		delete(s.direct, key)
		return models.Conversation{}, err
	}

	s.logger.Debugw("conversation created", "conversation", conv.ID, "participants", conv.Participants)
	return cloneConversation(conv), nil
}

// Conversation looks up a conversation by id
func (s *Store) Conversation(id uuid.UUID) (models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return models.Conversation{}, ErrNotFound
	}
	return cloneConversation(conv), nil
}

// ConversationsFor returns every direct conversation the user participates in
func (s *Store) ConversationsFor(userID uuid.UUID) []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Conversation
	for _, conv := range s.conversations {
		if containsID(conv.Participants, userID) {
			out = append(out, cloneConversation(conv))
		}
	}
	return out
}
