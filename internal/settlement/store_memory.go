package settlement

import (
	"context"
	"sync"

	"maskchain/pkg/platform/sentinel"
)

// InMemoryPaymentStore keeps payment rows in process memory and assigns
// sequence ids itself.
type InMemoryPaymentStore struct {
	mu       sync.RWMutex
	nextID   int64
	payments []*Payment
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{nextID: 1}
}

func (s *InMemoryPaymentStore) Create(_ context.Context, payment *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment.ID = s.nextID
	s.nextID++
	stored := *payment
	s.payments = append(s.payments, &stored)
	return nil
}

func (s *InMemoryPaymentStore) FindByID(_ context.Context, id int64) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, payment := range s.payments {
		if payment.ID == id {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryPaymentStore) List(_ context.Context, filter PaymentFilter) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Payment
	for _, payment := range s.payments {
		if filter.Order != "" && payment.Order != filter.Order {
			continue
		}
		if filter.ProducerID != 0 && payment.ProducerID != filter.ProducerID {
			continue
		}
		copied := *payment
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryPaymentStore) PaymentOrderIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.payments))
	for _, payment := range s.payments {
		out = append(out, payment.Order)
	}
	return out, nil
}

// InMemoryLetterStore keeps payment letter rows in process memory.
type InMemoryLetterStore struct {
	mu      sync.RWMutex
	letters []*PaymentLetter
	byID    map[string]*PaymentLetter
}

func NewInMemoryLetterStore() *InMemoryLetterStore {
	return &InMemoryLetterStore{byID: make(map[string]*PaymentLetter)}
}

func (s *InMemoryLetterStore) Create(_ context.Context, letter *PaymentLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[letter.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *letter
	s.letters = append(s.letters, &stored)
	s.byID[letter.ID] = &stored
	return nil
}

func (s *InMemoryLetterStore) FindByID(_ context.Context, id string) (*PaymentLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	letter, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *letter
	return &copied, nil
}

func (s *InMemoryLetterStore) FindByOrder(_ context.Context, order string) (*PaymentLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, letter := range s.letters {
		if letter.Order == order {
			copied := *letter
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryLetterStore) List(_ context.Context, filter LetterFilter) ([]*PaymentLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var wanted map[string]bool
	if filter.Orders != nil {
		wanted = make(map[string]bool, len(filter.Orders))
		for _, order := range filter.Orders {
			wanted[order] = true
		}
	}
	var out []*PaymentLetter
	for _, letter := range s.letters {
		if filter.BankID != 0 && letter.BankID != filter.BankID {
			continue
		}
		if wanted != nil && !wanted[letter.Order] {
			continue
		}
		copied := *letter
		out = append(out, &copied)
	}
	return out, nil
}

// InMemoryDealStore keeps deal rows in process memory.
type InMemoryDealStore struct {
	mu    sync.RWMutex
	deals []*Deal
	byID  map[string]*Deal
}

func NewInMemoryDealStore() *InMemoryDealStore {
	return &InMemoryDealStore{byID: make(map[string]*Deal)}
}

func (s *InMemoryDealStore) Create(_ context.Context, deal *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[deal.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *deal
	s.deals = append(s.deals, &stored)
	s.byID[deal.ID] = &stored
	return nil
}

func (s *InMemoryDealStore) List(_ context.Context, producerID int64) ([]*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Deal
	for _, deal := range s.deals {
		if producerID != 0 && deal.ProducerID != producerID {
			continue
		}
		copied := *deal
		out = append(out, &copied)
	}
	return out, nil
}

// InMemoryDeliveryStore keeps delivery rows in process memory.
type InMemoryDeliveryStore struct {
	mu         sync.RWMutex
	deliveries []*Delivery
	byID       map[string]*Delivery
}

func NewInMemoryDeliveryStore() *InMemoryDeliveryStore {
	return &InMemoryDeliveryStore{byID: make(map[string]*Delivery)}
}

func (s *InMemoryDeliveryStore) Create(_ context.Context, delivery *Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[delivery.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *delivery
	s.deliveries = append(s.deliveries, &stored)
	s.byID[delivery.ID] = &stored
	return nil
}

func (s *InMemoryDeliveryStore) FindByID(_ context.Context, id string) (*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	delivery, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *delivery
	return &copied, nil
}

func (s *InMemoryDeliveryStore) FindByDeal(_ context.Context, dealID string) (*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, delivery := range s.deliveries {
		if delivery.Deal == dealID {
			copied := *delivery
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryDeliveryStore) List(_ context.Context) ([]*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Delivery, 0, len(s.deliveries))
	for _, delivery := range s.deliveries {
		copied := *delivery
		out = append(out, &copied)
	}
	return out, nil
}
