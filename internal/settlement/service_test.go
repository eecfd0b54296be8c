package settlement

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maskchain/internal/directory"
	"maskchain/internal/ledger"
	"maskchain/internal/ledger/ledgertest"
	"maskchain/internal/platform/metrics"
	dErrors "maskchain/pkg/domain-errors"
)

type fixture struct {
	svc       *Service
	payments  *InMemoryPaymentStore
	letters   *InMemoryLetterStore
	deals     *InMemoryDealStore
	delivs    *InMemoryDeliveryStore
	fake      *ledgertest.Server
	directory *directory.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := ledgertest.New()
	t.Cleanup(fake.Close)

	dir := directory.NewService(directory.NewInMemoryOrganizationStore(), directory.NewInMemoryUserStore(), slog.Default())
	client := ledger.New(fake.URL(), 2*time.Second, slog.Default(), metrics.NewForTest())
	f := &fixture{
		payments:  NewInMemoryPaymentStore(),
		letters:   NewInMemoryLetterStore(),
		deals:     NewInMemoryDealStore(),
		delivs:    NewInMemoryDeliveryStore(),
		fake:      fake,
		directory: dir,
	}
	f.svc = NewService(f.payments, f.letters, f.deals, f.delivs, client, dir, slog.Default())
	return f
}

func (f *fixture) producer(t *testing.T) *directory.Organization {
	t.Helper()
	org, err := f.directory.CreateOrganization(context.Background(), "MaskCo", "SUPPLY")
	require.NoError(t, err)
	return org
}

func TestCreatePaymentResolvesProducerByLedgerKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.producer(t)

	payment, err := f.svc.CreatePayment(ctx, "order-1", 900, producer.LedgerKey)
	require.NoError(t, err)
	assert.Equal(t, producer.ID, payment.ProducerID)
	assert.NotZero(t, payment.ID)

	// Payments are local only; nothing goes to the ledger here.
	assert.Zero(t, f.fake.TotalCalls())

	_, err = f.svc.CreatePayment(ctx, "order-2", 900, "Co99")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestListPaymentsUnpaidMeansNoLetterForOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.producer(t)

	settled, err := f.svc.CreatePayment(ctx, "order-1", 900, producer.LedgerKey)
	require.NoError(t, err)
	open, err := f.svc.CreatePayment(ctx, "order-2", 700, producer.LedgerKey)
	require.NoError(t, err)
	_ = settled

	require.NoError(t, f.letters.Create(ctx, &PaymentLetter{ID: "letter-1", BankID: 9, Order: "order-1"}))

	all, err := f.svc.ListPayments(ctx, "", false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "MaskCo", all[0].ProducerName)

	unpaid, err := f.svc.ListPayments(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, open.ID, unpaid[0].ID)

	byOrder, err := f.svc.ListPayments(ctx, "order-1", false)
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
}

func TestListLettersProducerFilterGoesThroughPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.producer(t)
	other, err := f.directory.CreateOrganization(ctx, "OtherCo", "SUPPLY")
	require.NoError(t, err)
	bank, err := f.directory.CreateOrganization(ctx, "Bank", "FINANCE")
	require.NoError(t, err)

	_, err = f.svc.CreatePayment(ctx, "order-1", 900, producer.LedgerKey)
	require.NoError(t, err)
	_, err = f.svc.CreatePayment(ctx, "order-2", 700, other.LedgerKey)
	require.NoError(t, err)

	require.NoError(t, f.letters.Create(ctx, &PaymentLetter{ID: "letter-1", BankID: bank.ID, Order: "order-1"}))
	require.NoError(t, f.letters.Create(ctx, &PaymentLetter{ID: "letter-2", BankID: bank.ID, Order: "order-2"}))

	f.fake.RespondFunc("getPaymentLetterInfo", func(args map[string]string) any {
		return map[string]any{
			"letterID": args["letterID"],
			"bankID":   bank.LedgerKey,
			"price":    900,
			"date":     1609455600000,
		}
	})

	views, err := f.svc.ListLetters(ctx, 0, producer.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "letter-1", views[0].ID)
	assert.Equal(t, "order-1", views[0].Order)
	assert.Equal(t, "Bank", views[0].Name)
}

func TestListDealsAttachesDeliveryState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.producer(t)

	require.NoError(t, f.deals.Create(ctx, &Deal{ID: "deal-1", ProducerID: producer.ID, Letter: "letter-1"}))
	require.NoError(t, f.deals.Create(ctx, &Deal{ID: "deal-2", ProducerID: producer.ID, Letter: "letter-2"}))
	require.NoError(t, f.delivs.Create(ctx, &Delivery{ID: "del-1", ProducerID: producer.ID, Deal: "deal-1"}))

	f.fake.Respond("getDeliveryInfo", map[string]any{
		"delID":  "del-1",
		"date":   1609455600000,
		"status": "1",
	})

	views, err := f.svc.ListDeals(ctx, producer.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := map[string]*DealView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	require.NotNil(t, byID["deal-1"].Delivery)
	assert.Equal(t, "1", byID["deal-1"].Delivery.Status)
	assert.Nil(t, byID["deal-2"].Delivery)
}

func TestUpdateDeliveryStatusChecksLocalRowFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.producer(t)

	require.NoError(t, f.delivs.Create(ctx, &Delivery{ID: "del-1", ProducerID: producer.ID, Deal: "deal-1"}))

	err := f.svc.UpdateDeliveryStatus(ctx, "del-missing", "2")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	assert.Zero(t, f.fake.CallCount("updateDelivery"))

	require.NoError(t, f.svc.UpdateDeliveryStatus(ctx, "del-1", "2"))
	calls := f.fake.Calls("updateDelivery")
	require.Len(t, calls, 1)
	assert.Equal(t, "2", calls[0].Args["status"])
}
