package memory

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/campusloc/locations-api/internal/core/domain"
)

// CredentialStore keeps accounts and role memberships in process memory.
type CredentialStore struct {
	mu     sync.RWMutex
	users  map[string]domain.User // by username
	roles  map[string]struct{}
	grants map[string][]string // user id -> roles
	nextID int
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		users:  make(map[string]domain.User),
		roles:  make(map[string]struct{}),
		grants: make(map[string][]string),
		nextID: 1,
	}
}

func (s *CredentialStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *CredentialStore) Roles(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.grants[userID]), nil
}

func (s *CredentialStore) EnsureRole(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles[name] = struct{}{}
	return nil
}

func (s *CredentialStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return domain.ErrUserExists
	}
	user.ID = strconv.Itoa(s.nextID)
	s.nextID++
	s.users[user.Username] = *user
	return nil
}

func (s *CredentialStore) AssignRole(_ context.Context, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[role]; !ok {
		return domain.ErrUnknownRole
	}
	if !slices.Contains(s.grants[userID], role) {
		s.grants[userID] = append(s.grants[userID], role)
	}
	return nil
}
