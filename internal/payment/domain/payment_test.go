package domain

import (
	"testing"
	"time"

	"github.com/primabook/primabook/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestPayment(t *testing.T) *Payment {
	t.Helper()
	amount, err := money.FromString("100", "USD")
	require.NoError(t, err)
	p, err := NewForBooking("pay_1", "bk_1", "cust_1", "prov_1", amount, MethodCard, nil, testNow)
	require.NoError(t, err)
	return p
}

func TestNewForBookingStartsPending(t *testing.T) {
	p := newTestPayment(t)

	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.PaidAmount.Equal(money.Zero("USD")))
	assert.True(t, p.RefundedAmount.Equal(money.Zero("USD")))
	assert.Empty(t, p.Transactions)
	require.Len(t, p.UncommittedEvents(), 1)
	assert.Equal(t, EventTypeCreated, p.UncommittedEvents()[0].EventType())
}

func TestAuthorizeSetsPartiallyPaidMarker(t *testing.T) {
	p := newTestPayment(t)

	require.NoError(t, p.Authorize("pi_1", "pm_1", testNow))

	assert.Equal(t, StatusPartiallyPaid, p.Status)
	assert.Equal(t, "pi_1", p.PaymentIntentID)
	require.Len(t, p.Transactions, 1)
	assert.Equal(t, TransactionAuthorization, p.Transactions[0].Type)
}

func TestCaptureRequiresAuthorization(t *testing.T) {
	p := newTestPayment(t)

	err := p.Capture("ch_1", testNow)
	require.ErrorIs(t, err, ErrInvalidState)

	// No partial mutation.
	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.PaidAmount.IsZero())
	assert.Empty(t, p.Transactions)
	assert.Len(t, p.UncommittedEvents(), 1)
}

func TestAuthorizeThenCapture(t *testing.T) {
	p := newTestPayment(t)

	require.NoError(t, p.Authorize("pi_1", "pm_1", testNow))
	require.NoError(t, p.Capture("ch_1", testNow))

	assert.Equal(t, StatusPaid, p.Status)
	assert.True(t, p.PaidAmount.Equal(p.Amount))
	require.Len(t, p.Transactions, 2)
	assert.Equal(t, TransactionCapture, p.Transactions[1].Type)
	assert.Equal(t, "ch_1", p.Transactions[1].Reference)
}

func TestProcessChargeBypassesAuthorization(t *testing.T) {
	p := newTestPayment(t)

	require.NoError(t, p.ProcessCharge("pi_1", "pm_1", testNow))

	assert.Equal(t, StatusPaid, p.Status)
	assert.True(t, p.PaidAmount.Equal(p.Amount))
	require.Len(t, p.Transactions, 1)
	assert.Equal(t, TransactionCharge, p.Transactions[0].Type)
	assert.True(t, p.IsDepositPaid())
}

func TestRefundRequiresPaid(t *testing.T) {
	p := newTestPayment(t)
	thirty, _ := money.FromString("30", "USD")

	err := p.Refund(thirty, "re_1", "requested_by_customer", "", testNow)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.True(t, p.RefundedAmount.IsZero())
}

func TestRefundCurrencyMismatch(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.ProcessCharge("pi_1", "pm_1", testNow))

	thirty, _ := money.FromString("30", "EUR")
	err := p.Refund(thirty, "re_1", "requested_by_customer", "", testNow)
	require.ErrorIs(t, err, money.ErrCurrencyMismatch)
	assert.Equal(t, StatusPaid, p.Status)
}

func TestRefundExceedsPaid(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.ProcessCharge("pi_1", "pm_1", testNow))

	tooMuch, _ := money.FromString("100.01", "USD")
	err := p.Refund(tooMuch, "re_1", "requested_by_customer", "", testNow)
	require.ErrorIs(t, err, ErrRefundExceedsPaid)

	assert.Equal(t, StatusPaid, p.Status)
	assert.True(t, p.RefundedAmount.IsZero())
	assert.Len(t, p.Transactions, 1)
}

func TestPartialThenFullRefund(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.ProcessCharge("pi_1", "pm_1", testNow))

	thirty, _ := money.FromString("30", "USD")
	require.NoError(t, p.Refund(thirty, "re_1", "requested_by_customer", "", testNow))
	assert.Equal(t, StatusPartiallyRefunded, p.Status)
	assert.Equal(t, "30 USD", p.RefundedAmount.String())

	seventy, _ := money.FromString("70", "USD")
	require.NoError(t, p.Refund(seventy, "re_2", "requested_by_customer", "", testNow))
	assert.Equal(t, StatusRefunded, p.Status)
	assert.True(t, p.RefundedAmount.Equal(p.PaidAmount))
	assert.False(t, p.IsDepositPaid())

	// Refunded total never exceeds paid, and the log only grows.
	exceeds, err := p.RefundedAmount.GreaterThan(p.PaidAmount)
	require.NoError(t, err)
	assert.False(t, exceeds)
	assert.Len(t, p.Transactions, 3)
}

func TestRefundAfterFullyRefundedRejected(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.ProcessCharge("pi_1", "pm_1", testNow))
	hundred, _ := money.FromString("100", "USD")
	require.NoError(t, p.Refund(hundred, "re_1", "requested_by_customer", "", testNow))

	one, _ := money.FromString("1", "USD")
	err := p.Refund(one, "re_2", "requested_by_customer", "", testNow)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestMarkFailedFromPreCapturedStates(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.MarkFailed("card_declined", testNow))
	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "card_declined", p.FailureReason)

	authorized := newTestPayment(t)
	require.NoError(t, authorized.Authorize("pi_1", "pm_1", testNow))
	require.NoError(t, authorized.MarkFailed("capture_expired", testNow))
	assert.Equal(t, StatusFailed, authorized.Status)
}

func TestMarkFailedRejectedOncePaid(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.ProcessCharge("pi_1", "pm_1", testNow))

	err := p.MarkFailed("too_late", testNow)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StatusPaid, p.Status)
}

func TestEachMutatorRecordsExactlyOneEvent(t *testing.T) {
	p := newTestPayment(t)
	require.Len(t, p.UncommittedEvents(), 1)

	require.NoError(t, p.Authorize("pi_1", "pm_1", testNow))
	require.Len(t, p.UncommittedEvents(), 2)

	require.NoError(t, p.Capture("ch_1", testNow))
	require.Len(t, p.UncommittedEvents(), 3)

	thirty, _ := money.FromString("30", "USD")
	require.NoError(t, p.Refund(thirty, "re_1", "requested_by_customer", "", testNow))
	require.Len(t, p.UncommittedEvents(), 4)
}

func TestReplayRebuildsIdenticalState(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.ProcessCharge("pi_1", "pm_1", testNow))
	thirty, _ := money.FromString("30", "USD")
	require.NoError(t, p.Refund(thirty, "re_1", "requested_by_customer", "note", testNow))

	replayed := Empty()
	for _, event := range p.UncommittedEvents() {
		require.NoError(t, replayed.Apply(event))
	}

	assert.Equal(t, p.Status, replayed.Status)
	assert.True(t, p.PaidAmount.Equal(replayed.PaidAmount))
	assert.True(t, p.RefundedAmount.Equal(replayed.RefundedAmount))
	assert.Equal(t, len(p.Transactions), len(replayed.Transactions))
	assert.Equal(t, p.Transactions, replayed.Transactions)
}
