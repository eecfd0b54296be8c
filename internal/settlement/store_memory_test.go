package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"maskchain/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx      context.Context
	payments *InMemoryPaymentStore
	letters  *InMemoryLetterStore
	deals    *InMemoryDealStore
	delivs   *InMemoryDeliveryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.payments = NewInMemoryPaymentStore()
	s.letters = NewInMemoryLetterStore()
	s.deals = NewInMemoryDealStore()
	s.delivs = NewInMemoryDeliveryStore()
}

func (s *MemoryStoreSuite) TestPaymentSequenceAndFilters() {
	first := &Payment{Order: "order-1", Price: 100, ProducerID: 1}
	second := &Payment{Order: "order-2", Price: 200, ProducerID: 2}
	s.Require().NoError(s.payments.Create(s.ctx, first))
	s.Require().NoError(s.payments.Create(s.ctx, second))
	s.Equal(int64(1), first.ID)
	s.Equal(int64(2), second.ID)

	found, err := s.payments.FindByID(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal("order-2", found.Order)

	_, err = s.payments.FindByID(s.ctx, 99)
	s.ErrorIs(err, sentinel.ErrNotFound)

	byOrder, err := s.payments.List(s.ctx, PaymentFilter{Order: "order-1"})
	s.Require().NoError(err)
	s.Len(byOrder, 1)

	byProducer, err := s.payments.List(s.ctx, PaymentFilter{ProducerID: 2})
	s.Require().NoError(err)
	s.Len(byProducer, 1)

	orders, err := s.payments.PaymentOrderIDs(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"order-1", "order-2"}, orders)
}

func (s *MemoryStoreSuite) TestLetterUniquenessAndOrderLookup() {
	letter := &PaymentLetter{ID: "letter-1", BankID: 9, Order: "order-1"}
	s.Require().NoError(s.letters.Create(s.ctx, letter))
	s.ErrorIs(s.letters.Create(s.ctx, letter), sentinel.ErrConflict)

	byOrder, err := s.letters.FindByOrder(s.ctx, "order-1")
	s.Require().NoError(err)
	s.Equal("letter-1", byOrder.ID)

	_, err = s.letters.FindByOrder(s.ctx, "order-2")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestLetterListFilters() {
	s.Require().NoError(s.letters.Create(s.ctx, &PaymentLetter{ID: "l1", BankID: 1, Order: "o1"}))
	s.Require().NoError(s.letters.Create(s.ctx, &PaymentLetter{ID: "l2", BankID: 2, Order: "o2"}))
	s.Require().NoError(s.letters.Create(s.ctx, &PaymentLetter{ID: "l3", BankID: 1, Order: "o3"}))

	byBank, err := s.letters.List(s.ctx, LetterFilter{BankID: 1})
	s.Require().NoError(err)
	s.Len(byBank, 2)

	byOrders, err := s.letters.List(s.ctx, LetterFilter{Orders: []string{"o2", "o3"}})
	s.Require().NoError(err)
	s.Len(byOrders, 2)

	// An empty (non-nil) order set matches nothing.
	none, err := s.letters.List(s.ctx, LetterFilter{Orders: []string{}})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *MemoryStoreSuite) TestDealsByProducer() {
	s.Require().NoError(s.deals.Create(s.ctx, &Deal{ID: "d1", ProducerID: 1, Letter: "l1"}))
	s.Require().NoError(s.deals.Create(s.ctx, &Deal{ID: "d2", ProducerID: 2, Letter: "l2"}))
	s.ErrorIs(s.deals.Create(s.ctx, &Deal{ID: "d1", ProducerID: 1}), sentinel.ErrConflict)

	all, err := s.deals.List(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(all, 2)

	mine, err := s.deals.List(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(mine, 1)
	s.Equal("d2", mine[0].ID)
}

func (s *MemoryStoreSuite) TestDeliveriesByDeal() {
	s.Require().NoError(s.delivs.Create(s.ctx, &Delivery{ID: "del1", ProducerID: 1, Deal: "d1"}))
	s.ErrorIs(s.delivs.Create(s.ctx, &Delivery{ID: "del1"}), sentinel.ErrConflict)

	byDeal, err := s.delivs.FindByDeal(s.ctx, "d1")
	s.Require().NoError(err)
	s.Equal("del1", byDeal.ID)

	_, err = s.delivs.FindByDeal(s.ctx, "d2")
	s.ErrorIs(err, sentinel.ErrNotFound)

	all, err := s.delivs.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}
