package chain

import (
	"context"
	"sync"
	"time"

	"maskchain/pkg/platform/sentinel"
)

// InMemoryProgressStore keeps journal rows in process memory.
type InMemoryProgressStore struct {
	mu   sync.RWMutex
	rows map[int64]*Progress
}

func NewInMemoryProgressStore() *InMemoryProgressStore {
	return &InMemoryProgressStore{rows: make(map[int64]*Progress)}
}

func (s *InMemoryProgressStore) Find(_ context.Context, paymentID int64) (*Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[paymentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *InMemoryProgressStore) Save(_ context.Context, progress *Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress.UpdatedAt = time.Now()
	copied := *progress
	s.rows[progress.PaymentID] = &copied
	return nil
}

func (s *InMemoryProgressStore) ListUnresolved(_ context.Context) ([]*Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Progress
	for _, row := range s.rows {
		if row.Resolved() {
			continue
		}
		copied := *row
		out = append(out, &copied)
	}
	return out, nil
}
