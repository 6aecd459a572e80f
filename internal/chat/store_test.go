package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/models"
	"github.com/davidgault/parley/internal/storage"
)

func newTestAdapter(t *testing.T) storage.Adapter {
	t.Helper()
	adapter, err := storage.NewFileStore(filepath.Join(t.TempDir(), "state.json"), zap.NewNop().Sugar())
	require.NoError(t, err)
	return adapter
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), zap.NewNop().Sugar(), newTestAdapter(t))
	require.NoError(t, err)
	return s
}

func registerUser(t *testing.T, s *Store, name, email string) models.User {
	t.Helper()
	user, err := s.Register(context.Background(), name, email, "password123")
	require.NoError(t, err)
	return user
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	registerUser(t, s, "alice", "alice@x.com")

	_, err := s.Register(context.Background(), "alice2", "Alice@X.com", "password123")
	assert.ErrorIs(t, err, ErrDuplicateEmail, "email matching is case-insensitive")
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	alice := registerUser(t, s, "alice", "alice@x.com")

	t.Run("valid credentials", func(t *testing.T) {
		user, err := s.Authenticate("ALICE@x.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Authenticate("alice@x.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("unknown email yields the same error", func(t *testing.T) {
		_, err := s.Authenticate("nobody@x.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})
}

func TestFriendRequestFlow(t *testing.T) {
	s := newTestStore(t)
	alice := registerUser(t, s, "alice", "alice@x.com")
	bob := registerUser(t, s, "bob", "bob@x.com")
	ctx := context.Background()

	sent, err := s.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, sent)

	incoming, err := s.IncomingRequests(bob.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, alice.ID, incoming[0].ID)

	conv, err := s.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, conv.Participants)

	// friendship is symmetric
	aliceFriends, err := s.Friends(alice.ID)
	require.NoError(t, err)
	bobFriends, err := s.Friends(bob.ID)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, bob.ID, aliceFriends[0].ID)
	assert.Equal(t, alice.ID, bobFriends[0].ID)

	// pending state is gone
	incoming, err = s.IncomingRequests(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	_, err = s.AcceptRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNoSuchRequest)

	// the direct conversation is the one accept created, both argument orders
	same, err := s.DirectConversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, same.ID)
}

func TestSendRequestSelf(t *testing.T) {
	s := newTestStore(t)
	alice := registerUser(t, s, "alice", "alice@x.com")

	_, err := s.SendRequest(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestSendRequestIdempotent(t *testing.T) {
	s := newTestStore(t)
	alice := registerUser(t, s, "alice", "alice@x.com")
	bob := registerUser(t, s, "bob", "bob@x.com")
	ctx := context.Background()

	sent, err := s.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, sent)

	// duplicate in the same direction
	sent, err = s.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, sent)

	// reverse direction while pending
	sent, err = s.SendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, sent)

	_, err = s.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	// already friends
	sent, err = s.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestRejectRequestIdempotent(t *testing.T) {
	s := newTestStore(t)
	alice := registerUser(t, s, "alice", "alice@x.com")
	bob := registerUser(t, s, "bob", "bob@x.com")
	ctx := context.Background()

	_, err := s.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, s.RejectRequest(ctx, bob.ID, alice.ID))
	require.NoError(t, s.RejectRequest(ctx, bob.ID, alice.ID), "second reject is a no-op")

	incoming, err := s.IncomingRequests(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	_, err = s.AcceptRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNoSuchRequest)

	friends, err := s.Friends(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func assertAdminsSubsetOfMembers(t *testing.T, g models.Group) {
	t.Helper()
	for _, admin := range g.Admins {
		assert.Contains(t, g.Members, admin, "admin %s must be a member", admin)
	}
}

func TestGroupScenario(t *testing.T) {
	s := newTestStore(t)
	alice := registerUser(t, s, "alice", "alice@x.com")
	bob := registerUser(t, s, "bob", "bob@x.com")
	carol := registerUser(t, s, "carol", "carol@x.com")
	dave := registerUser(t, s, "dave", "dave@x.com")
	ctx := context.Background()

	group, err := s.CreateGroup(ctx, "Team", alice.ID, []uuid.UUID{bob.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, group.CreatorID)
	assert.Equal(t, []uuid.UUID{alice.ID}, group.Admins)
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, group.Members)
	assertAdminsSubsetOfMembers(t, group)

	// bob is not an admin yet
	_, err = s.AddMember(ctx, group.ID, bob.ID, carol.ID)
	assert.ErrorIs(t, err, ErrNotAdmin)

	require.NoError(t, s.PromoteAdmin(ctx, group.ID, alice.ID, bob.ID))
	require.NoError(t, s.PromoteAdmin(ctx, group.ID, alice.ID, bob.ID), "promoting an admin is a no-op")

	added, err := s.AddMember(ctx, group.ID, bob.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddMember(ctx, group.ID, bob.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, added, "adding an existing member is a no-op")

	err = s.PromoteAdmin(ctx, group.ID, bob.ID, dave.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	err = s.PromoteAdmin(ctx, group.ID, carol.ID, carol.ID)
	assert.ErrorIs(t, err, ErrNotAdmin)

	got, err := s.Group(group.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID, carol.ID}, got.Members)
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, got.Admins)
	assertAdminsSubsetOfMembers(t, got)
}

func TestCreateGroupDeduplicatesMembers(t *testing.T) {
	s := newTestStore(t)
	alice := registerUser(t, s, "alice", "alice@x.com")
	bob := registerUser(t, s, "bob", "bob@x.com")

	group, err := s.CreateGroup(context.Background(), "Team", alice.ID,
		[]uuid.UUID{bob.ID, bob.ID, alice.ID, uuid.New()}, "dupes and strangers")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, group.Members)
}

func newFriends(t *testing.T, s *Store) (models.User, models.User, models.Conversation) {
	t.Helper()
	alice := registerUser(t, s, "alice", "alice@x.com")
	bob := registerUser(t, s, "bob", "bob@x.com")
	ctx := context.Background()
	_, err := s.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	conv, err := s.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	return alice, bob, conv
}

func TestAppendOrdering(t *testing.T) {
	s := newTestStore(t)
	alice, bob, conv := newFriends(t, s)
	ctx := context.Background()

	m1, err := s.Append(ctx, conv.ID, alice.ID, "first")
	require.NoError(t, err)
	m2, err := s.Append(ctx, conv.ID, bob.ID, "second")
	require.NoError(t, err)

	msgs, err := s.MessagesSince(conv.ID, alice.ID, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, m1.ID, msgs[0].ID)
	assert.Equal(t, m2.ID, msgs[1].ID)
	assert.False(t, msgs[1].Timestamp.Before(msgs[0].Timestamp),
		"timestamps never decrease within a container")

	// sender is the first reader
	assert.Equal(t, []uuid.UUID{alice.ID}, m1.ReadBy)
}

func TestAppendNotParticipant(t *testing.T) {
	s := newTestStore(t)
	_, _, conv := newFriends(t, s)
	carol := registerUser(t, s, "carol", "carol@x.com")

	_, err := s.Append(context.Background(), conv.ID, carol.ID, "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = s.Append(context.Background(), uuid.New(), carol.ID, "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReactionToggle(t *testing.T) {
	s := newTestStore(t)
	alice, bob, conv := newFriends(t, s)
	ctx := context.Background()

	msg, err := s.Append(ctx, conv.ID, alice.ID, "hi")
	require.NoError(t, err)

	updated, err := s.React(ctx, msg.ID, bob.ID, "👍")
	require.NoError(t, err)
	require.Len(t, updated.Reactions, 1)
	assert.Equal(t, "👍", updated.Reactions[0].Emoji)
	assert.Equal(t, 1, updated.Reactions[0].Count)
	assert.Equal(t, []uuid.UUID{bob.ID}, updated.Reactions[0].Users)

	// same user, second emoji
	updated, err = s.React(ctx, msg.ID, bob.ID, "🎉")
	require.NoError(t, err)
	require.Len(t, updated.Reactions, 2)

	// toggling off removes the entry entirely
	updated, err = s.React(ctx, msg.ID, bob.ID, "👍")
	require.NoError(t, err)
	require.Len(t, updated.Reactions, 1)
	assert.Equal(t, "🎉", updated.Reactions[0].Emoji)

	updated, err = s.React(ctx, msg.ID, bob.ID, "🎉")
	require.NoError(t, err)
	assert.Empty(t, updated.Reactions, "toggling twice restores the prior state")

	// count always matches the user list
	updated, err = s.React(ctx, msg.ID, bob.ID, "👍")
	require.NoError(t, err)
	updated, err = s.React(ctx, msg.ID, alice.ID, "👍")
	require.NoError(t, err)
	require.Len(t, updated.Reactions, 1)
	assert.Equal(t, updated.Reactions[0].Count, len(updated.Reactions[0].Users))
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, updated.Reactions[0].Users)
	assert.True(t, updated.HasReaction(bob.ID, "👍"))
	assert.False(t, updated.HasReaction(bob.ID, "🎉"))
}

func TestReactNotParticipant(t *testing.T) {
	s := newTestStore(t)
	alice, _, conv := newFriends(t, s)
	carol := registerUser(t, s, "carol", "carol@x.com")

	msg, err := s.Append(context.Background(), conv.ID, alice.ID, "hi")
	require.NoError(t, err)

	_, err = s.React(context.Background(), msg.ID, carol.ID, "👍")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestMarkReadIdempotent(t *testing.T) {
	s := newTestStore(t)
	alice, bob, conv := newFriends(t, s)
	ctx := context.Background()

	msg, err := s.Append(ctx, conv.ID, alice.ID, "hi")
	require.NoError(t, err)

	updated, err := s.MarkRead(ctx, msg.ID, bob.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, updated.ReadBy)

	updated, err = s.MarkRead(ctx, msg.ID, bob.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, updated.ReadBy)
}

func TestMessagesSinceCursor(t *testing.T) {
	s := newTestStore(t)
	alice, bob, conv := newFriends(t, s)
	ctx := context.Background()

	m1, err := s.Append(ctx, conv.ID, alice.ID, "one")
	require.NoError(t, err)
	m2, err := s.Append(ctx, conv.ID, bob.ID, "two")
	require.NoError(t, err)
	m3, err := s.Append(ctx, conv.ID, alice.ID, "three")
	require.NoError(t, err)

	msgs, err := s.MessagesSince(conv.ID, alice.ID, m1.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, m2.ID, msgs[0].ID)
	assert.Equal(t, m3.ID, msgs[1].ID)

	msgs, err = s.MessagesSince(conv.ID, alice.ID, m3.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = s.MessagesSince(conv.ID, alice.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	carol := registerUser(t, s, "carol", "carol@x.com")
	_, err = s.MessagesSince(conv.ID, carol.ID, uuid.Nil)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSnapshotRoundTrip(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	s, err := New(ctx, zap.NewNop().Sugar(), adapter)
	require.NoError(t, err)

	alice := registerUser(t, s, "alice", "alice@x.com")
	bob := registerUser(t, s, "bob", "bob@x.com")
	_, err = s.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	conv, err := s.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	msg, err := s.Append(ctx, conv.ID, alice.ID, "hello")
	require.NoError(t, err)
	_, err = s.React(ctx, msg.ID, bob.ID, "👍")
	require.NoError(t, err)
	group, err := s.CreateGroup(ctx, "Team", alice.ID, []uuid.UUID{bob.ID}, "desc")
	require.NoError(t, err)

	// a fresh store over the same adapter sees identical state
	reloaded, err := New(ctx, zap.NewNop().Sugar(), adapter)
	require.NoError(t, err)

	user, err := reloaded.Authenticate("alice@x.com", "password123")
	require.NoError(t, err, "credentials survive reload")
	assert.Equal(t, alice.ID, user.ID)

	friends, err := reloaded.Friends(bob.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, alice.ID, friends[0].ID)

	msgs, err := reloaded.MessagesSince(conv.ID, bob.ID, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
	require.Len(t, msgs[0].Reactions, 1)
	assert.Equal(t, []uuid.UUID{bob.ID}, msgs[0].Reactions[0].Users)

	got, err := reloaded.Group(group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team", got.Name)

	// reacting on the reloaded store still toggles
	updated, err := reloaded.React(ctx, msg.ID, bob.ID, "👍")
	require.NoError(t, err)
	assert.Empty(t, updated.Reactions)

	// the direct index was rebuilt, no duplicate conversation appears
	same, err := reloaded.DirectConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, same.ID)
}

func TestCorruptSnapshotFailsSoft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	adapter, err := storage.NewFileStore(path, zap.NewNop().Sugar())
	require.NoError(t, err)

	s, err := New(context.Background(), zap.NewNop().Sugar(), adapter)
	require.NoError(t, err, "corrupt snapshot must not fail startup")
	assert.Empty(t, s.Users())
}

// failingAdapter wraps a real adapter and fails commits on demand
type failingAdapter struct {
	inner storage.Adapter
	fail  bool
}

func (f *failingAdapter) Commit(ctx context.Context, snap *models.Snapshot) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.inner.Commit(ctx, snap)
}

func (f *failingAdapter) Load(ctx context.Context) (*models.Snapshot, error) {
	return f.inner.Load(ctx)
}

func (f *failingAdapter) Close() error { return f.inner.Close() }

func TestCommitFailureRollsBack(t *testing.T) {
	adapter := &failingAdapter{inner: newTestAdapter(t)}
	ctx := context.Background()

	s, err := New(ctx, zap.NewNop().Sugar(), adapter)
	require.NoError(t, err)

	alice := registerUser(t, s, "alice", "alice@x.com")
	bob := registerUser(t, s, "bob", "bob@x.com")
	_, err = s.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	conv, err := s.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	adapter.fail = true

	_, err = s.Append(ctx, conv.ID, alice.ID, "lost")
	require.Error(t, err)

	_, err = s.Register(ctx, "carol", "carol@x.com", "password123")
	require.Error(t, err)

	adapter.fail = false

	// the failed append is not visible
	msgs, err := s.MessagesSince(conv.ID, alice.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// the failed registration left no trace, the email is free again
	_, err = s.Register(ctx, "carol", "carol@x.com", "password123")
	require.NoError(t, err)
}
