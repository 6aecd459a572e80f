package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidgault/parley/internal/models"
)

// CreateGroup creates a group with the creator as member and sole admin.
// Duplicate and unknown member ids are dropped silently; the creator never
// appears twice.
func (s *Store) CreateGroup(ctx context.Context, name string, creatorID uuid.UUID, memberIDs []uuid.UUID, description string) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[creatorID]; !ok {
		return models.Group{}, ErrNotFound
	}

	members := []uuid.UUID{creatorID}
	for _, id := range memberIDs {
		if containsID(members, id) {
			continue
		}
		if _, ok := s.users[id]; !ok {
			continue
		}
		members = append(members, id)
	}

	now := time.Now().UTC()
	group := &models.Group{
		ID:           uuid.New(),
		Name:         name,
		Description:  description,
		CreatorID:    creatorID,
		Admins:       []uuid.UUID{creatorID},
		Members:      members,
		Messages:     []models.Message{},
		LastActivity: now,
		CreatedAt:    now,
	}
	s.groups[group.ID] = group
	for _, id := range members {
		u := s.users[id]
		u.GroupIDs = append(u.GroupIDs, group.ID)
	}

	if err := s.commit(ctx); err != nil {
		delete(s.groups, group.ID)
		for _, id := range members {
			u := s.users[id]
			u.GroupIDs, _ = removeID(u.GroupIDs, group.ID)
		}
		return models.Group{}, err
	}

	s.logger.Infow("group created", "group", group.ID, "name", name, "creator", creatorID)
	return cloneGroup(group), nil
}

// AddMember adds a user to a group. Only admins may add members. Returns
// false without an error when the user already belongs to the group.
func (s *Store) AddMember(ctx context.Context, groupID, actorID, newMemberID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return false, ErrNotFound
	}
	if !containsID(group.Admins, actorID) {
		return false, ErrNotAdmin
	}
	member, ok := s.users[newMemberID]
	if !ok {
		return false, ErrNotFound
	}
	if containsID(group.Members, newMemberID) {
		return false, nil
	}

	group.Members = append(group.Members, newMemberID)
	member.GroupIDs = append(member.GroupIDs, groupID)

	if err := s.commit(ctx); err != nil {
		group.Members, _ = removeID(group.Members, newMemberID)
		member.GroupIDs, _ = removeID(member.GroupIDs, groupID)
		return false, err
	}

	s.logger.Debugw("member added", "group", groupID, "actor", actorID, "member", newMemberID)
	return true, nil
}

// PromoteAdmin grants admin rights to a member. Only admins may promote, the
// target must already be a member, and promoting an admin is a no-op.
func (s *Store) PromoteAdmin(ctx context.Context, groupID, actorID, targetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return ErrNotFound
	}
	if !containsID(group.Admins, actorID) {
		return ErrNotAdmin
	}
	if !containsID(group.Members, targetID) {
		return ErrNotMember
	}
	if containsID(group.Admins, targetID) {
		return nil
	}

	group.Admins = append(group.Admins, targetID)

	if err := s.commit(ctx); err != nil {
		group.Admins, _ = removeID(group.Admins, targetID)
		return err
	}

	s.logger.Debugw("admin promoted", "group", groupID, "actor", actorID, "target", targetID)
	return nil
}

// Group looks up a group by id
func (s *Store) Group(id uuid.UUID) (models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return models.Group{}, ErrNotFound
	}
	return cloneGroup(group), nil
}

// GroupsFor returns every group the user is a member of
func (s *Store) GroupsFor(userID uuid.UUID) []models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Group
	for _, group := range s.groups {
		if containsID(group.Members, userID) {
			out = append(out, cloneGroup(group))
		}
	}
	return out
}
