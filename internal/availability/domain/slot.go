package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidState = errors.New("availability: invalid state")

type SlotStatus string

const (
	SlotOpen    SlotStatus = "open"
	SlotBooked  SlotStatus = "booked"
	SlotBlocked SlotStatus = "blocked"
)

type Slot struct {
	ID         string     `gorm:"column:id;primaryKey"`
	ProviderID string     `gorm:"column:provider_id"`
	StaffID    string     `gorm:"column:staff_id"`
	Date       time.Time  `gorm:"column:date"`
	StartTime  time.Time  `gorm:"column:start_time"`
	EndTime    time.Time  `gorm:"column:end_time"`
	Status     SlotStatus `gorm:"column:status"`
	BookingID  string     `gorm:"column:booking_id"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
	UpdatedBy  string     `gorm:"column:updated_by"`
}

func (Slot) TableName() string { return "availability_slots" }

// Release returns a booked slot to the open pool. Open and blocked slots
// reject; blocked slots are owned by the provider's calendar, not a booking.
func (s *Slot) Release(actor string) error {
	if s.Status != SlotBooked {
		return fmt.Errorf("%w: cannot release a %s slot", ErrInvalidState, s.Status)
	}
	s.Status = SlotOpen
	s.BookingID = ""
	s.UpdatedBy = actor
	return nil
}

type Repository interface {
	FindOverlapping(ctx context.Context, providerID string, date, start, end time.Time, staffID string) ([]*Slot, error)
	Update(ctx context.Context, slot *Slot) error
}
