package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/primabook/primabook/internal/availability/domain"
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

// FindOverlapping returns the provider's slots on date that intersect
// [start, end), optionally narrowed to one staff member.
func (r *repo) FindOverlapping(ctx context.Context, providerID string, date, start, end time.Time, staffID string) ([]*domain.Slot, error) {
	query := `SELECT id, provider_id, staff_id, date, start_time, end_time, status, booking_id, updated_at, updated_by
	          FROM availability_slots
	          WHERE provider_id = ? AND date = ? AND start_time < ? AND end_time > ?`
	args := []any{providerID, date, end, start}
	if staffID != "" {
		query += ` AND staff_id = ?`
		args = append(args, staffID)
	}
	query += ` ORDER BY start_time ASC`

	var slots []*domain.Slot
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("find overlapping slots for provider %s: %w", providerID, err)
	}
	return slots, nil
}

func (r *repo) Update(ctx context.Context, slot *domain.Slot) error {
	err := r.db.WithContext(ctx).Exec(
		`UPDATE availability_slots
		 SET status = ?, booking_id = ?, updated_at = ?, updated_by = ?
		 WHERE id = ?`,
		slot.Status,
		slot.BookingID,
		slot.UpdatedAt,
		slot.UpdatedBy,
		slot.ID,
	).Error
	if err != nil {
		return fmt.Errorf("update slot %s: %w", slot.ID, err)
	}
	return nil
}
