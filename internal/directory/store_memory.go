package directory

import (
	"context"
	"sort"
	"sync"

	"maskchain/pkg/platform/sentinel"
)

// InMemoryOrganizationStore keeps organizations in process memory. Used in
// tests and when DATABASE_URL is unset.
type InMemoryOrganizationStore struct {
	mu     sync.RWMutex
	nextID int64
	orgs   map[int64]*Organization
}

func NewInMemoryOrganizationStore() *InMemoryOrganizationStore {
	return &InMemoryOrganizationStore{nextID: 1, orgs: make(map[int64]*Organization)}
}

func (s *InMemoryOrganizationStore) Create(_ context.Context, org *Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org.ID = s.nextID
	s.nextID++
	stored := *org
	s.orgs[org.ID] = &stored
	return nil
}

func (s *InMemoryOrganizationStore) AssignLedgerKey(_ context.Context, id int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if org.LedgerKey != "" {
		return sentinel.ErrInvalidState
	}
	org.LedgerKey = key
	return nil
}

func (s *InMemoryOrganizationStore) FindByID(_ context.Context, id int64) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *org
	return &copied, nil
}

func (s *InMemoryOrganizationStore) FindByLedgerKey(_ context.Context, key string) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, org := range s.orgs {
		if org.LedgerKey == key {
			copied := *org
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryOrganizationStore) ListByRole(_ context.Context, role Role) ([]*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Organization
	for _, org := range s.orgs {
		if org.Role == role {
			copied := *org
			out = append(out, &copied)
		}
	}
	sortOrgs(out)
	return out, nil
}

func (s *InMemoryOrganizationStore) List(_ context.Context) ([]*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		copied := *org
		out = append(out, &copied)
	}
	sortOrgs(out)
	return out, nil
}

func sortOrgs(orgs []*Organization) {
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
}

// InMemoryUserStore keeps users in process memory.
type InMemoryUserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{nextID: 1, users: make(map[int64]*User)}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *InMemoryUserStore) List(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
