package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"edushare-server/internal/authz"
	"edushare-server/internal/model"
)

// memTokenStore is an in-memory TokenStore with the same semantics as the
// Postgres repository, including the unique-token constraint.
type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]model.RefreshToken{}}
}

func (s *memTokenStore) Create(_ context.Context, t model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[t.Token]; exists {
		return model.ErrDuplicateToken
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *memTokenStore) FindByToken(_ context.Context, token string) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return model.RefreshToken{}, model.ErrRefreshTokenNotFound
	}
	return t, nil
}

func (s *memTokenStore) Touch(_ context.Context, id string, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.tokens {
		if t.ID == id {
			t.LastUsedAt = &usedAt
			s.tokens[key] = t
		}
	}
	return nil
}

func (s *memTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tokens[token]; ok {
		t.Revoked = true
		s.tokens[token] = t
	}
	return nil
}

func (s *memTokenStore) RevokeAllForUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var revoked int64
	for key, t := range s.tokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			s.tokens[key] = t
			revoked++
		}
	}
	return revoked, nil
}

func (s *memTokenStore) ListActiveForUser(_ context.Context, userID string, now time.Time) ([]model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]model.RefreshToken, 0)
	for _, t := range s.tokens {
		if t.UserID == userID && !t.Revoked && t.ExpiresAt.After(now) {
			t.Token = ""
			active = append(active, t)
		}
	}
	return active, nil
}

func (s *memTokenStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, t := range s.tokens {
		if !t.ExpiresAt.After(now) {
			delete(s.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

// overwrite replaces a stored record, for tests that age or pre-revoke
// tokens.
func (s *memTokenStore) overwrite(t model.RefreshToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.Token] = t
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]model.User{}}
}

func (s *memUserStore) FindByID(_ context.Context, id string, includeDeleted bool) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || (u.IsDeleted && !includeDeleted) {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string, includeDeleted bool) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			if u.IsDeleted && !includeDeleted {
				return model.User{}, model.ErrUserNotFound
			}
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.ErrEmailExists
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *memUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	s.users[userID] = u
	return nil
}

func (s *memUserStore) UpdateRole(_ context.Context, userID string, role authz.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.IsDeleted {
		return model.ErrUserNotFound
	}
	u.Role = role
	s.users[userID] = u
	return nil
}

func (s *memUserStore) SoftDelete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.IsDeleted {
		return model.ErrUserNotFound
	}
	u.IsDeleted = true
	s.users[userID] = u
	return nil
}

func (s *memUserStore) List(_ context.Context, includeDeleted bool) ([]model.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]model.PublicUser, 0)
	for _, u := range s.users {
		if u.IsDeleted && !includeDeleted {
			continue
		}
		users = append(users, u.Public())
	}
	return users, nil
}
