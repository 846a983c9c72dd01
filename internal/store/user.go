package store

import (
	"sync"

	"github.com/efreitasn/stockexchange/internal/domain"
)

// UserStore is a thread-safe in-memory store for users, keyed by user ID.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	order []string // registration order
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]*domain.User),
	}
}

// Create adds a user to the store. It returns
// domain.ErrUserAlreadyExists if a user with the same ID already exists.
func (s *UserStore) Create(u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return domain.ErrUserAlreadyExists
	}
	s.users[u.ID] = u
	s.order = append(s.order, u.ID)
	return nil
}

// Get retrieves a user by ID. It returns domain.ErrUserNotFound if the
// user does not exist.
func (s *UserStore) Get(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// Exists returns true if a user with the given ID exists.
func (s *UserStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[id]
	return ok
}

// List returns all users in registration order.
func (s *UserStore) List() []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.User, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.users[id])
	}
	return result
}
