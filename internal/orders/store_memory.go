package orders

import (
	"context"
	"sync"

	"maskchain/pkg/platform/sentinel"
)

// InMemoryMinistryOrderStore keeps ministry order rows in process memory.
type InMemoryMinistryOrderStore struct {
	mu     sync.RWMutex
	orders []*MinistryOrder
	byID   map[string]*MinistryOrder
}

func NewInMemoryMinistryOrderStore() *InMemoryMinistryOrderStore {
	return &InMemoryMinistryOrderStore{byID: make(map[string]*MinistryOrder)}
}

func (s *InMemoryMinistryOrderStore) Create(_ context.Context, order *MinistryOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[order.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *order
	s.orders = append(s.orders, &stored)
	s.byID[order.ID] = &stored
	return nil
}

func (s *InMemoryMinistryOrderStore) FindByID(_ context.Context, id string) (*MinistryOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *InMemoryMinistryOrderStore) List(_ context.Context) ([]*MinistryOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*MinistryOrder, 0, len(s.orders))
	for _, order := range s.orders {
		copied := *order
		out = append(out, &copied)
	}
	return out, nil
}

// InMemoryHospitalOrderStore keeps hospital order rows in process memory.
type InMemoryHospitalOrderStore struct {
	mu     sync.RWMutex
	orders []*HospitalOrder
	byID   map[string]*HospitalOrder
}

func NewInMemoryHospitalOrderStore() *InMemoryHospitalOrderStore {
	return &InMemoryHospitalOrderStore{byID: make(map[string]*HospitalOrder)}
}

func (s *InMemoryHospitalOrderStore) Create(_ context.Context, order *HospitalOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[order.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *order
	s.orders = append(s.orders, &stored)
	s.byID[order.ID] = &stored
	return nil
}

func (s *InMemoryHospitalOrderStore) FindByID(_ context.Context, id string) (*HospitalOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *InMemoryHospitalOrderStore) ListByHospital(_ context.Context, hospitalID int64) ([]*HospitalOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*HospitalOrder
	for _, order := range s.orders {
		if order.HospitalID == hospitalID {
			copied := *order
			out = append(out, &copied)
		}
	}
	return out, nil
}
