package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("booking not found")
	ErrInvalidState = errors.New("booking: invalid state")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// CancellationPolicy captures how far ahead of the appointment a customer can
// cancel without forfeiting the deposit.
type CancellationPolicy struct {
	FreeCancellationWindow time.Duration `gorm:"column:free_cancellation_window"`
}

// CanCancelWithoutFee reports whether cancelling at now still falls outside
// the fee window before startTime.
func (p CancellationPolicy) CanCancelWithoutFee(startTime, now time.Time) bool {
	return startTime.Sub(now) >= p.FreeCancellationWindow
}

type Booking struct {
	ID                  string    `gorm:"column:id;primaryKey"`
	CustomerID          string    `gorm:"column:customer_id"`
	ProviderID          string    `gorm:"column:provider_id"`
	PaymentID           string    `gorm:"column:payment_id"`
	StaffID             string    `gorm:"column:staff_id"`
	Date                time.Time `gorm:"column:date"`
	StartTime           time.Time `gorm:"column:start_time"`
	EndTime             time.Time `gorm:"column:end_time"`
	Status              Status    `gorm:"column:status"`
	CancellationPolicy  CancellationPolicy `gorm:"embedded"`
	CancelledAt         *time.Time `gorm:"column:cancelled_at"`
	CancelReason        string     `gorm:"column:cancel_reason"`
	CancelledByProvider bool       `gorm:"column:cancelled_by_provider"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// Cancel transitions the booking to cancelled. Completed and already-cancelled
// bookings reject.
func (b *Booking) Cancel(reason string, byProvider bool, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	case StatusCancelled:
		return fmt.Errorf("%w: booking %s already cancelled", ErrInvalidState, b.ID)
	default:
		return fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidState, b.Status)
	}
	b.Status = StatusCancelled
	at := now
	b.CancelledAt = &at
	b.CancelReason = reason
	b.CancelledByProvider = byProvider
	b.UpdatedAt = now
	return nil
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, booking *Booking) error
}
