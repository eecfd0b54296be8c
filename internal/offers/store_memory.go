package offers

import (
	"context"
	"sync"

	"maskchain/pkg/platform/sentinel"
)

// InMemoryStore keeps offer rows in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	offers []*ProducerOffer
	byID   map[string]*ProducerOffer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[string]*ProducerOffer)}
}

func (s *InMemoryStore) Create(_ context.Context, offer *ProducerOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[offer.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *offer
	s.offers = append(s.offers, &stored)
	s.byID[offer.ID] = &stored
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*ProducerOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	offer, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *offer
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*ProducerOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ProducerOffer
	for _, offer := range s.offers {
		if filter.ProducerID != 0 && offer.ProducerID != filter.ProducerID {
			continue
		}
		if filter.Order != "" && offer.Order != filter.Order {
			continue
		}
		copied := *offer
		out = append(out, &copied)
	}
	return out, nil
}
