// Package memory holds the in-memory store implementations the server
// falls back to when no database is configured. Used heavily by tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"
)

var _ storage.UserStore = (*UserStore)(nil)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Get(ctx context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return domain.User{}, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
	}

	return user, nil
}

func (s *UserStore) Exists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[username]
	return ok, nil
}

func (s *UserStore) Create(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return fmt.Errorf("user %q: %w", user.Username, storage.ErrAlreadyExists)
	}

	s.users[user.Username] = user
	return nil
}

func (s *UserStore) Update(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; !ok {
		return fmt.Errorf("user %q: %w", user.Username, storage.ErrNotFound)
	}

	s.users[user.Username] = user
	return nil
}

// all returns a snapshot of every stored user.
func (s *UserStore) all() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}

	return users
}
