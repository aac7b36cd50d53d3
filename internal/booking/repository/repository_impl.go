package repository

import (
	"context"
	"fmt"

	"github.com/primabook/primabook/internal/booking/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB *gorm.DB
}

type repo struct {
	db *gorm.DB
}

func New(p Params) domain.Repository {
	return &repo{db: p.DB}
}

func (r *repo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, customer_id, provider_id, payment_id, staff_id, date, start_time, end_time,
		        status, free_cancellation_window, cancelled_at, cancel_reason, cancelled_by_provider,
		        created_at, updated_at
		 FROM bookings WHERE id = ?`,
		id,
	).Scan(&booking).Error
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", id, err)
	}
	if booking.ID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return &booking, nil
}

func (r *repo) Update(ctx context.Context, booking *domain.Booking) error {
	err := r.db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, cancelled_at = ?, cancel_reason = ?, cancelled_by_provider = ?, updated_at = ?
		 WHERE id = ?`,
		booking.Status,
		booking.CancelledAt,
		booking.CancelReason,
		booking.CancelledByProvider,
		booking.UpdatedAt,
		booking.ID,
	).Error
	if err != nil {
		return fmt.Errorf("update booking %s: %w", booking.ID, err)
	}
	return nil
}
