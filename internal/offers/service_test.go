package offers

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
	store     *InMemoryStore
	fake      *ledgertest.Server
	directory *directory.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := ledgertest.New()
	t.Cleanup(fake.Close)

	dir := directory.NewService(directory.NewInMemoryOrganizationStore(), directory.NewInMemoryUserStore(), slog.Default())
	client := ledger.New(fake.URL(), 2*time.Second, slog.Default(), metrics.NewForTest())
	store := NewInMemoryStore()
	return &fixture{
		svc:       NewService(store, client, dir, slog.Default()),
		store:     store,
		fake:      fake,
		directory: dir,
	}
}

func (f *fixture) producer(t *testing.T) *directory.Organization {
	t.Helper()
	org, err := f.directory.CreateOrganization(context.Background(), "MaskCo", "SUPPLY")
	require.NoError(t, err)
	return org
}

func TestCreateOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.producer(t)

	offerID, err := f.svc.Create(ctx, producer.ID, "order-1", 500)
	require.NoError(t, err)
	require.NotEmpty(t, offerID)

	calls := f.fake.Calls("makeProducerOffer")
	require.Len(t, calls, 1)
	assert.Equal(t, producer.LedgerKey, calls[0].Args["coID"])
	assert.Equal(t, "order-1", calls[0].Args["orderID"])
	assert.Equal(t, "500", calls[0].Args["offer"])

	row, err := f.store.FindByID(ctx, offerID)
	require.NoError(t, err)
	assert.Equal(t, "order-1", row.Order)
}

func TestCreateOfferRejectsNonProducer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bank, err := f.directory.CreateOrganization(ctx, "Bank", "FINANCE")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, bank.ID, "order-1", 500)
	assert.True(t, dErrors.Is(err, dErrors.CodeWrongRole))
	assert.Zero(t, f.fake.TotalCalls())
}

func TestListSkipsUnresolvableOffers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.producer(t)

	good, err := f.svc.Create(ctx, producer.ID, "order-1", 500)
	require.NoError(t, err)
	bad, err := f.svc.Create(ctx, producer.ID, "order-2", 600)
	require.NoError(t, err)

	f.fake.RespondFunc("getProducerOfferInfo", func(args map[string]string) any {
		if args["offerID"] == bad {
			return map[string]any{"unexpected": true}
		}
		return map[string]any{
			"offerID": args["offerID"],
			"coID":    producer.LedgerKey,
			"orderID": "order-1",
			"offer":   500,
			"status":  0,
			"date":    1609455600000,
		}
	})

	infos, err := f.svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, good, infos[0].ID)
}

func TestAcceptUsesLocalOrderReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.producer(t)

	offerID, err := f.svc.Create(ctx, producer.ID, "order-1", 500)
	require.NoError(t, err)

	require.NoError(t, f.svc.Accept(ctx, offerID, ""))
	calls := f.fake.Calls("acceptOffer")
	require.Len(t, calls, 1)
	assert.Equal(t, "order-1", calls[0].Args["orderID"])
}

func TestAcceptRejectsBrokenReferencesBeforeLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.producer(t)

	offerID, err := f.svc.Create(ctx, producer.ID, "order-1", 500)
	require.NoError(t, err)
	before := f.fake.TotalCalls()

	err = f.svc.Accept(ctx, "missing", "")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	err = f.svc.Accept(ctx, offerID, "order-2")
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))

	// An offer row without an order reference cannot be accepted either.
	require.NoError(t, f.store.Create(ctx, &ProducerOffer{ID: "orphan", ProducerID: producer.ID}))
	err = f.svc.Accept(ctx, "orphan", "")
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))

	assert.Equal(t, before, f.fake.TotalCalls())
	assert.Zero(t, f.fake.CallCount("acceptOffer"))
}
