package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseBookedSlot(t *testing.T) {
	slot := &Slot{ID: "slot-1", Status: SlotBooked, BookingID: "booking-1"}

	require.NoError(t, slot.Release("cancellation"))
	assert.Equal(t, SlotOpen, slot.Status)
	assert.Empty(t, slot.BookingID)
	assert.Equal(t, "cancellation", slot.UpdatedBy)
}

func TestReleaseOpenSlotRejected(t *testing.T) {
	slot := &Slot{ID: "slot-1", Status: SlotOpen}

	err := slot.Release("cancellation")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestReleaseBlockedSlotRejected(t *testing.T) {
	slot := &Slot{ID: "slot-1", Status: SlotBlocked}

	err := slot.Release("cancellation")
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, SlotBlocked, slot.Status)
}
