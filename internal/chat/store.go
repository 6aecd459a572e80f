// Package chat implements the conversation and delivery engine: identity,
// friend graph, direct and group conversations, and the ordered message log.
// State lives in memory and every mutation is committed write-through to a
// storage.Adapter before it becomes observable.
package chat

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/models"
	"github.com/davidgault/parley/internal/storage"
)

// Notifier receives live events the view layer cares about. Implementations
// must not call back into the Store.
type Notifier interface {
	// ConversationReady fires when an accepted friend request makes a direct
	// conversation available to both users.
	ConversationReady(userIDs []uuid.UUID, conversationID uuid.UUID)
}

// Store is the engine. A single mutex serializes all mutations; that is
// enough to hold the structural invariants (symmetric friendship,
// admins ⊆ members, reaction counts) under concurrent callers, and matches
// the strictly sequential semantics the behavior is specified against.
type Store struct {
	mu       sync.RWMutex
	logger   *zap.SugaredLogger
	adapter  storage.Adapter
	notifier Notifier

	users         map[uuid.UUID]*models.User
	emails        map[string]uuid.UUID
	conversations map[uuid.UUID]*models.Conversation
	direct        map[string]uuid.UUID // pairKey -> conversation id
	groups        map[uuid.UUID]*models.Group
	messageHome   map[uuid.UUID]uuid.UUID // message id -> container id
}

// New loads the last snapshot through the adapter and indexes it. A missing
// snapshot is a normal first start; a corrupt one degrades to an empty store
// with a logged warning rather than failing startup.
func New(ctx context.Context, logger *zap.SugaredLogger, adapter storage.Adapter) (*Store, error) {
	s := &Store{
		logger:        logger,
		adapter:       adapter,
		users:         make(map[uuid.UUID]*models.User),
		emails:        make(map[string]uuid.UUID),
		conversations: make(map[uuid.UUID]*models.Conversation),
		direct:        make(map[string]uuid.UUID),
		groups:        make(map[uuid.UUID]*models.Group),
		messageHome:   make(map[uuid.UUID]uuid.UUID),
	}

	snap, err := adapter.Load(ctx)
	if err != nil {
		logger.Warnw("snapshot load failed, starting with an empty store", "error", err)
		snap = &models.Snapshot{}
	}
	s.index(snap)

	logger.Infow("store loaded",
		"users", len(s.users),
		"conversations", len(s.conversations),
		"groups", len(s.groups))
	return s, nil
}

// SetNotifier wires the event sink. Must be called before the store starts
// serving requests.
func (s *Store) SetNotifier(n Notifier) {
	s.notifier = n
}

// index rebuilds the in-memory maps from a snapshot
func (s *Store) index(snap *models.Snapshot) {
	for _, u := range snap.Users {
		if u == nil || u.ID == uuid.Nil {
			continue
		}
		u.Email = normalizeEmail(u.Email)
		s.users[u.ID] = u
		s.emails[u.Email] = u.ID
	}
	for _, c := range snap.Conversations {
		if c == nil || c.ID == uuid.Nil || len(c.Participants) != 2 {
			continue
		}
		s.conversations[c.ID] = c
		s.direct[pairKey(c.Participants[0], c.Participants[1])] = c.ID
		for i := range c.Messages {
			s.messageHome[c.Messages[i].ID] = c.ID
		}
	}
	for _, g := range snap.Groups {
		if g == nil || g.ID == uuid.Nil {
			continue
		}
		s.groups[g.ID] = g
		for i := range g.Messages {
			s.messageHome[g.Messages[i].ID] = g.ID
		}
	}
}

// snapshot flattens the maps back into the three-list layout. Entries are
// sorted by id so file snapshots stay diffable across commits.
func (s *Store) snapshot() *models.Snapshot {
	snap := &models.Snapshot{
		Users:         make([]*models.User, 0, len(s.users)),
		Conversations: make([]*models.Conversation, 0, len(s.conversations)),
		Groups:        make([]*models.Group, 0, len(s.groups)),
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, u)
	}
	for _, c := range s.conversations {
		snap.Conversations = append(snap.Conversations, c)
	}
	for _, g := range s.groups {
		snap.Groups = append(snap.Groups, g)
	}
	sort.Slice(snap.Users, func(i, j int) bool {
		return snap.Users[i].ID.String() < snap.Users[j].ID.String()
	})
	sort.Slice(snap.Conversations, func(i, j int) bool {
		return snap.Conversations[i].ID.String() < snap.Conversations[j].ID.String()
	})
	sort.Slice(snap.Groups, func(i, j int) bool {
		return snap.Groups[i].ID.String() < snap.Groups[j].ID.String()
	})
	return snap
}

// commit persists the current state. Called with the write lock held, at the
// end of every mutation; callers roll their change back when it fails so
// nothing uncommitted is ever observable.
func (s *Store) commit(ctx context.Context) error {
	return s.adapter.Commit(ctx, s.snapshot())
}
