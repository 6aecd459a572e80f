package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidgault/parley/internal/auth"
	"github.com/davidgault/parley/internal/models"
)

// Email matching is case-insensitive: addresses are normalized once at
// registration and on every lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with a bcrypt-hashed credential. Returns
// ErrDuplicateEmail when the normalized address is already taken.
func (s *Store) Register(ctx context.Context, displayName, email, password string) (models.User, error) {
	email = normalizeEmail(email)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[email]; exists {
		return models.User{}, ErrDuplicateEmail
	}

	user := &models.User{
		ID:           uuid.New(),
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hash,
		Friends:      []uuid.UUID{},
		Incoming:     []uuid.UUID{},
		Outgoing:     []uuid.UUID{},
		GroupIDs:     []uuid.UUID{},
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.emails[email] = user.ID

	if err := s.commit(ctx); err != nil {
		delete(s.users, user.ID)
		delete(s.emails, email)
		return models.User{}, err
	}

	s.logger.Infow("user registered", "user_id", user.ID, "email", email)
	return cloneUser(user), nil
}

// Authenticate verifies a credential. It returns ErrInvalidCredential for
// both an unknown email and a wrong password, never revealing which.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	email = normalizeEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return models.User{}, ErrInvalidCredential
	}
	user := s.users[id]
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredential
	}
	return cloneUser(user), nil
}

// User looks up a user by id
func (s *Store) User(id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return cloneUser(user), nil
}

// UserByEmail looks up a user by normalized email
func (s *Store) UserByEmail(email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

// Users returns every user sorted by display name
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
