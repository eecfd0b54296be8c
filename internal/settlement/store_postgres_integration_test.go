//go:build integration

package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"maskchain/pkg/platform/sentinel"
	"maskchain/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx      context.Context
	pg       *containers.PostgresContainer
	payments *PostgresPaymentStore
	letters  *PostgresLetterStore
	deals    *PostgresDealStore
	delivs   *PostgresDeliveryStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.payments = NewPostgresPaymentStore(s.pg.DB)
	s.letters = NewPostgresLetterStore(s.pg.DB)
	s.deals = NewPostgresDealStore(s.pg.DB)
	s.delivs = NewPostgresDeliveryStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx,
		"payments", "payment_letters", "deals", "deliveries"))
}

func (s *PostgresStoreSuite) TestPaymentRoundTrip() {
	payment := &Payment{Order: "order-1", Price: 900, ProducerID: 7}
	s.Require().NoError(s.payments.Create(s.ctx, payment))
	s.NotZero(payment.ID)

	found, err := s.payments.FindByID(s.ctx, payment.ID)
	s.Require().NoError(err)
	s.Equal("order-1", found.Order)
	s.Equal(int64(900), found.Price)

	_, err = s.payments.FindByID(s.ctx, payment.ID+100)
	s.ErrorIs(err, sentinel.ErrNotFound)

	orders, err := s.payments.PaymentOrderIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"order-1"}, orders)
}

func (s *PostgresStoreSuite) TestLetterUniqueness() {
	letter := &PaymentLetter{ID: "letter-1", BankID: 3, Order: "order-1"}
	s.Require().NoError(s.letters.Create(s.ctx, letter))
	s.ErrorIs(s.letters.Create(s.ctx, letter), sentinel.ErrConflict)

	byOrder, err := s.letters.FindByOrder(s.ctx, "order-1")
	s.Require().NoError(err)
	s.Equal("letter-1", byOrder.ID)
}

func (s *PostgresStoreSuite) TestLetterOrderSetFilter() {
	s.Require().NoError(s.letters.Create(s.ctx, &PaymentLetter{ID: "l1", BankID: 1, Order: "o1"}))
	s.Require().NoError(s.letters.Create(s.ctx, &PaymentLetter{ID: "l2", BankID: 1, Order: "o2"}))
	s.Require().NoError(s.letters.Create(s.ctx, &PaymentLetter{ID: "l3", BankID: 2, Order: "o3"}))

	subset, err := s.letters.List(s.ctx, LetterFilter{Orders: []string{"o1", "o3"}})
	s.Require().NoError(err)
	s.Len(subset, 2)

	byBank, err := s.letters.List(s.ctx, LetterFilter{BankID: 1})
	s.Require().NoError(err)
	s.Len(byBank, 2)
}

func (s *PostgresStoreSuite) TestDealAndDeliveryJoin() {
	s.Require().NoError(s.deals.Create(s.ctx, &Deal{ID: "d1", ProducerID: 5, Letter: "l1"}))
	s.Require().NoError(s.delivs.Create(s.ctx, &Delivery{ID: "del1", ProducerID: 5, Deal: "d1"}))

	deals, err := s.deals.List(s.ctx, 5)
	s.Require().NoError(err)
	s.Len(deals, 1)

	delivery, err := s.delivs.FindByDeal(s.ctx, "d1")
	s.Require().NoError(err)
	s.Equal("del1", delivery.ID)

	_, err = s.delivs.FindByDeal(s.ctx, "d2")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
