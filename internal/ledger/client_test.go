package ledger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maskchain/internal/ledger/ledgertest"
	"maskchain/internal/platform/metrics"
	dErrors "maskchain/pkg/domain-errors"
)

func newTestClient(t *testing.T, fake *ledgertest.Server) *Client {
	t.Helper()
	c := New(fake.URL(), 2*time.Second, slog.Default(), metrics.NewForTest())
	c.now = func() time.Time { return time.UnixMilli(1609455600000) }
	return c
}

func TestInvokeSendsWireEnvelope(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)

	err := c.MakeMinistryOrder(context.Background(), "order-1", 100, "2021-01-01")
	require.NoError(t, err)

	calls := fake.Calls("makeMinistryOrder")
	require.Len(t, calls, 1)
	assert.Equal(t, "admin", calls[0].Username)
	assert.Equal(t, "channel1", calls[0].Channel)
	assert.Equal(t, "cc", calls[0].SmartContract)

	// Amounts cross the wire as strings regardless of their Go type.
	assert.Equal(t, "100", calls[0].Args["maskAmount"])
	assert.Equal(t, "2021-01-01", calls[0].Args["endDate"])
	assert.Equal(t, "order-1", calls[0].Args["orderID"])
	assert.Equal(t, "1609455600000", calls[0].Args["date"])
}

func TestInvokeClassifiesUnreachable(t *testing.T) {
	fake := ledgertest.New()
	c := newTestClient(t, fake)
	fake.Close()

	err := c.MakeMinistryOrder(context.Background(), "order-1", 100, "2021-01-01")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestInvokeClassifiesMalformed(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)

	fake.RespondRaw("getMinistryInfo", "<html>proxy error</html>")

	_, err := c.GetMinistryInfo(context.Background())
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "getMinistryInfo", malformed.Transaction)
	assert.Equal(t, []byte("<html>proxy error</html>"), malformed.Raw)
}

func TestInvokeTreatsAnyParseableBodyAsSuccess(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)

	// A contract-level rejection still parses, so it classifies as success.
	fake.Respond("acceptOffer", map[string]any{"ok": false, "error": "no such offer"})

	err := c.AcceptOffer(context.Background(), "offer-1", "order-1")
	assert.NoError(t, err)
}

func TestSessionEnrollsOncePerProcess(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)
	ctx := context.Background()

	_, _ = c.GetMinistryInfo(ctx)
	_ = c.UpdateMask(ctx, "Co1", 5)
	_, _ = c.GetMinistryInfo(ctx)

	assert.Equal(t, 1, fake.EnrollCount())
	assert.True(t, c.Session().Bootstrapped())

	c.Session().Expire()
	assert.False(t, c.Session().Bootstrapped())
	_, _ = c.GetMinistryInfo(ctx)
	assert.Equal(t, 2, fake.EnrollCount())
}

func TestSessionBootstrapFailureIsSwallowed(t *testing.T) {
	fake := ledgertest.New()
	c := New(fake.URL(), 2*time.Second, slog.Default(), metrics.NewForTest())
	fake.Close()

	c.Session().Ensure(context.Background())
	assert.False(t, c.Session().Bootstrapped())

	// The gateway proceeds anyway; the transaction itself then fails on
	// transport, not on enrollment.
	_, err := c.GetMinistryInfo(context.Background())
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestGetMinistryOrderInfoNoWinner(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)

	fake.Respond("getMinistryOrderInfo", map[string]any{
		"orderID":     "order-1",
		"amount":      100,
		"endDate":     "2021-01-01",
		"openDate":    1609455600000,
		"winnerOffer": "none",
	})

	info, err := c.GetMinistryOrderInfo(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", info.ID)
	assert.Equal(t, int64(100), info.Amount)
	assert.Nil(t, info.Winner)
}

func TestGetMinistryOrderInfoWinner(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)

	fake.Respond("getMinistryOrderInfo", map[string]any{
		"orderID":     "order-1",
		"amount":      "100",
		"endDate":     "2021-01-01",
		"openDate":    "1609455600000",
		"winnerOffer": "offer-7",
	})

	info, err := c.GetMinistryOrderInfo(context.Background(), "order-1")
	require.NoError(t, err)
	require.NotNil(t, info.Winner)
	assert.Equal(t, "offer-7", *info.Winner)
}

func TestGetMinistryOrderInfoBadShape(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)

	fake.Respond("getMinistryOrderInfo", map[string]any{"orderID": "order-1"})

	_, err := c.GetMinistryOrderInfo(context.Background(), "order-1")
	assert.ErrorIs(t, err, ErrBadShape)
}

func TestGetProducerInfoSentinel(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)

	fake.Respond("getProducerInfo", map[string]any{"amount": 42})
	assert.Equal(t, int64(42), c.GetProducerInfo(context.Background(), "Co1"))

	// Missing field and unreachable both collapse into the sentinel.
	fake.Respond("getProducerInfo", map[string]any{})
	assert.Equal(t, AmountUnknown, c.GetProducerInfo(context.Background(), "Co1"))

	fake.Close()
	assert.Equal(t, AmountUnknown, c.GetProducerInfo(context.Background(), "Co1"))
}

func TestCreatePaymentLetterDateKeyIsCapitalized(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)

	require.NoError(t, c.CreatePaymentLetter(context.Background(), "letter-1", "Ba4", 5000))

	calls := fake.Calls("createPaymentLetter")
	require.Len(t, calls, 1)
	assert.Equal(t, "5000", calls[0].Args["price"])
	assert.Equal(t, "Ba4", calls[0].Args["bankID"])
	_, hasLower := calls[0].Args["date"]
	assert.False(t, hasLower)
	assert.Equal(t, "1609455600000", calls[0].Args["Date"])
}

func TestMakeHospitalOrderStartsAtStatusZero(t *testing.T) {
	fake := ledgertest.New()
	defer fake.Close()
	c := newTestClient(t, fake)

	require.NoError(t, c.MakeHospitalOrder(context.Background(), "horder-1", 30, "Ho2", 2))

	calls := fake.Calls("makeHospitalOrder")
	require.Len(t, calls, 1)
	assert.Equal(t, "0", calls[0].Args["deliveryStatus"])
	assert.Equal(t, "Ho2", calls[0].Args["hosID"])
	assert.Equal(t, "2", calls[0].Args["urgency"])
}

func TestResponseIntAcceptsBothWireForms(t *testing.T) {
	r := Response{"a": float64(7), "b": "8", "c": "x", "d": true}

	a, ok := r.Int("a")
	assert.True(t, ok)
	assert.Equal(t, int64(7), a)

	b, ok := r.Int("b")
	assert.True(t, ok)
	assert.Equal(t, int64(8), b)

	_, ok = r.Int("c")
	assert.False(t, ok)
	_, ok = r.Int("d")
	assert.False(t, ok)
	_, ok = r.Int("missing")
	assert.False(t, ok)
}

func TestMillisToString(t *testing.T) {
	// 2021-01-01 00:00 UTC, rendered in local time of the test runner.
	rendered := millisToString(1609459200000)
	assert.Len(t, rendered, len("2006-01-02 15:04"))
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil, "op"))

	assert.True(t, dErrors.Is(Translate(ErrUnreachable, "op"), dErrors.CodeLedgerUnavailable))
	assert.True(t, dErrors.Is(Translate(&MalformedError{Transaction: "tx"}, "op"), dErrors.CodeLedgerMalformed))
	assert.True(t, dErrors.Is(Translate(shapeError("tx", "field"), "op"), dErrors.CodeLedgerMalformed))
	assert.True(t, dErrors.Is(Translate(errors.New("other"), "op"), dErrors.CodeLedgerFailed))
}
