package orders

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

type fakePayments struct {
	orders []string
}

func (f *fakePayments) PaymentOrderIDs(context.Context) ([]string, error) {
	return f.orders, nil
}

type fixture struct {
	svc       *Service
	fake      *ledgertest.Server
	directory *directory.Service
	payments  *fakePayments
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := ledgertest.New()
	t.Cleanup(fake.Close)

	dir := directory.NewService(directory.NewInMemoryOrganizationStore(), directory.NewInMemoryUserStore(), slog.Default())
	client := ledger.New(fake.URL(), 2*time.Second, slog.Default(), metrics.NewForTest())
	payments := &fakePayments{}
	svc := NewService(NewInMemoryMinistryOrderStore(), NewInMemoryHospitalOrderStore(),
		payments, client, dir, nil, slog.Default())
	return &fixture{svc: svc, fake: fake, directory: dir, payments: payments}
}

func (f *fixture) org(t *testing.T, name, role string) *directory.Organization {
	t.Helper()
	org, err := f.directory.CreateOrganization(context.Background(), name, role)
	require.NoError(t, err)
	return org
}

func TestCreateMinistryOrderWireScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.org(t, "Ministry", "REGULATOR")

	orderID, err := f.svc.CreateMinistryOrder(ctx, 100, "2021-01-01")
	require.NoError(t, err)
	require.NotEmpty(t, orderID)

	calls := f.fake.Calls("makeMinistryOrder")
	require.Len(t, calls, 1)
	assert.Equal(t, "100", calls[0].Args["maskAmount"])
	assert.Equal(t, "2021-01-01", calls[0].Args["endDate"])
	assert.Equal(t, orderID, calls[0].Args["orderID"])

	f.fake.Respond("getMinistryOrderInfo", map[string]any{
		"orderID":     orderID,
		"amount":      100,
		"endDate":     "2021-01-01",
		"openDate":    1609455600000,
		"winnerOffer": "none",
	})
	info, err := f.svc.GetMinistryOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, info.Winner)
}

func TestCreateMinistryOrderRequiresRegulator(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateMinistryOrder(context.Background(), 100, "2021-01-01")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	assert.Equal(t, 0, f.fake.CallCount("makeMinistryOrder"))
}

func TestCreateMinistryOrderLedgerFailureLeavesNoLocalRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.org(t, "Ministry", "REGULATOR")
	f.fake.Close()

	_, err := f.svc.CreateMinistryOrder(ctx, 100, "2021-01-01")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeLedgerUnavailable))

	list, err := f.svc.ListMinistryOrders(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListMinistryOrdersUnpaidFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.org(t, "Ministry", "REGULATOR")

	paid, err := f.svc.CreateMinistryOrder(ctx, 10, "2021-01-01")
	require.NoError(t, err)
	unpaid, err := f.svc.CreateMinistryOrder(ctx, 20, "2021-02-01")
	require.NoError(t, err)

	f.fake.RespondFunc("getMinistryOrderInfo", func(args map[string]string) any {
		return map[string]any{
			"orderID":     args["orderID"],
			"amount":      10,
			"endDate":     "2021-01-01",
			"openDate":    1609455600000,
			"winnerOffer": "none",
		}
	})

	f.payments.orders = []string{paid}

	all, err := f.svc.ListMinistryOrders(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := f.svc.ListMinistryOrders(ctx, true)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, unpaid, open[0].ID)
}

func TestCreateHospitalOrderRequiresDemandRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	producer := f.org(t, "MaskCo", "SUPPLY")

	_, err := f.svc.CreateHospitalOrder(ctx, producer.ID, 50, 1)
	assert.True(t, dErrors.Is(err, dErrors.CodeWrongRole))
	assert.Equal(t, 0, f.fake.CallCount("makeHospitalOrder"))
}

func TestListHospitalOrdersSortedByDateDescending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hospital := f.org(t, "City Hospital", "DEMAND")

	older, err := f.svc.CreateHospitalOrder(ctx, hospital.ID, 10, 1)
	require.NoError(t, err)
	newer, err := f.svc.CreateHospitalOrder(ctx, hospital.ID, 20, 2)
	require.NoError(t, err)

	dates := map[string]int64{older: 1609455600000, newer: 1612134000000}
	f.fake.RespondFunc("getHospitalOrderInfo", func(args map[string]string) any {
		return map[string]any{
			"amount":         10,
			"urgency":        1,
			"date":           dates[args["orderID"]],
			"deliveryStatus": "0",
		}
	})

	view, err := f.svc.ListHospitalOrders(ctx, hospital.ID)
	require.NoError(t, err)
	require.Len(t, view.Orders, 2)
	assert.False(t, view.Dirty)
	assert.Equal(t, newer, view.Orders[0].ID)
	assert.Equal(t, older, view.Orders[1].ID)
}

func TestAggregateListingMarksDirtyHospitals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clean := f.org(t, "Clean Hospital", "DEMAND")
	dirty := f.org(t, "Dirty Hospital", "DEMAND")
	empty := f.org(t, "Empty Hospital", "DEMAND")

	cleanOrder, err := f.svc.CreateHospitalOrder(ctx, clean.ID, 10, 1)
	require.NoError(t, err)
	dirtyOrder, err := f.svc.CreateHospitalOrder(ctx, dirty.ID, 10, 1)
	require.NoError(t, err)
	okOrder, err := f.svc.CreateHospitalOrder(ctx, dirty.ID, 15, 2)
	require.NoError(t, err)
	_ = cleanOrder

	// The sentinel amount marks one of the dirty hospital's orders as
	// unconfirmed; the other resolves fine.
	f.fake.RespondFunc("getHospitalOrderInfo", func(args map[string]string) any {
		amount := 10
		if args["orderID"] == dirtyOrder {
			amount = -1
		}
		return map[string]any{
			"amount":         amount,
			"urgency":        1,
			"date":           1609455600000,
			"deliveryStatus": "0",
		}
	})

	views, err := f.svc.ListAllHospitalOrders(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)

	byID := map[int64]*HospitalOrders{}
	for _, v := range views {
		byID[v.ID] = v
	}

	assert.False(t, byID[clean.ID].Dirty)
	assert.Len(t, byID[clean.ID].Orders, 1)

	// Dirty hospital still appears, with the unconfirmed order omitted.
	require.True(t, byID[dirty.ID].Dirty)
	require.Len(t, byID[dirty.ID].Orders, 1)
	assert.Equal(t, okOrder, byID[dirty.ID].Orders[0].ID)

	// No orders is not the same as dirty.
	assert.False(t, byID[empty.ID].Dirty)
	assert.Empty(t, byID[empty.ID].Orders)
}

func TestUpdateHospitalDeliveryStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hospital := f.org(t, "City Hospital", "DEMAND")

	orderID, err := f.svc.CreateHospitalOrder(ctx, hospital.ID, 10, 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateHospitalDeliveryStatus(ctx, orderID, "2"))
	calls := f.fake.Calls("updateHospitalDelivery")
	require.Len(t, calls, 1)
	assert.Equal(t, "2", calls[0].Args["deliveryStatus"])

	err = f.svc.UpdateHospitalDeliveryStatus(ctx, "missing", "2")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}
