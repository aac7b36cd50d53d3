package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedBooking() *Booking {
	return &Booking{
		ID:         "booking-1",
		CustomerID: "customer-1",
		ProviderID: "provider-1",
		StartTime:  time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC),
		Status:     StatusConfirmed,
		CancellationPolicy: CancellationPolicy{
			FreeCancellationWindow: 24 * time.Hour,
		},
	}
}

func TestCancelConfirmedBooking(t *testing.T) {
	b := confirmedBooking()
	now := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)

	require.NoError(t, b.Cancel("schedule conflict", false, now))
	assert.Equal(t, StatusCancelled, b.Status)
	require.NotNil(t, b.CancelledAt)
	assert.Equal(t, now, *b.CancelledAt)
	assert.Equal(t, "schedule conflict", b.CancelReason)
	assert.False(t, b.CancelledByProvider)
}

func TestCancelPendingBooking(t *testing.T) {
	b := confirmedBooking()
	b.Status = StatusPending

	require.NoError(t, b.Cancel("changed my mind", false, time.Now().UTC()))
	assert.Equal(t, StatusCancelled, b.Status)
}

func TestCancelCompletedBookingRejected(t *testing.T) {
	b := confirmedBooking()
	b.Status = StatusCompleted

	err := b.Cancel("too late", false, time.Now().UTC())
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StatusCompleted, b.Status)
	assert.Nil(t, b.CancelledAt)
}

func TestCancelTwiceRejected(t *testing.T) {
	b := confirmedBooking()
	require.NoError(t, b.Cancel("first", false, time.Now().UTC()))

	err := b.Cancel("second", false, time.Now().UTC())
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "first", b.CancelReason)
}

func TestCancelByProviderRecorded(t *testing.T) {
	b := confirmedBooking()

	require.NoError(t, b.Cancel("staff unavailable", true, time.Now().UTC()))
	assert.True(t, b.CancelledByProvider)
}

func TestCanCancelWithoutFee(t *testing.T) {
	policy := CancellationPolicy{FreeCancellationWindow: 24 * time.Hour}
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	assert.True(t, policy.CanCancelWithoutFee(start, start.Add(-25*time.Hour)))
	assert.True(t, policy.CanCancelWithoutFee(start, start.Add(-24*time.Hour)))
	assert.False(t, policy.CanCancelWithoutFee(start, start.Add(-23*time.Hour)))
	assert.False(t, policy.CanCancelWithoutFee(start, start.Add(time.Hour)))
}
