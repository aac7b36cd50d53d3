package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilitydomain "github.com/primabook/primabook/internal/availability/domain"
	bookingdomain "github.com/primabook/primabook/internal/booking/domain"
	"github.com/primabook/primabook/internal/clock"
	eventstoredomain "github.com/primabook/primabook/internal/eventstore/domain"
	gatewaydomain "github.com/primabook/primabook/internal/gateway/domain"
	"github.com/primabook/primabook/internal/money"
	obsmetrics "github.com/primabook/primabook/internal/observability/metrics"
	paymentdomain "github.com/primabook/primabook/internal/payment/domain"
	paymentrepo "github.com/primabook/primabook/internal/payment/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Bookings   bookingdomain.Repository
	Slots      availabilitydomain.Repository
	Payments   *paymentrepo.Repository
	Gateway    gatewaydomain.PaymentGateway
	Clock      clock.Clock
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

// Service orchestrates booking cancellation across the booking record, the
// provider's availability calendar and the payment aggregate. The booking
// outcome is authoritative; the refund leg is best-effort and never rolls a
// cancellation back.
type Service struct {
	log        *zap.Logger
	bookings   bookingdomain.Repository
	slots      availabilitydomain.Repository
	payments   *paymentrepo.Repository
	gateway    gatewaydomain.PaymentGateway
	clock      clock.Clock
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		log:        p.Log.Named("cancellation.service"),
		bookings:   p.Bookings,
		slots:      p.Slots,
		payments:   p.Payments,
		gateway:    p.Gateway,
		clock:      p.Clock,
		obsMetrics: p.ObsMetrics,
	}
}

type CancelBookingCommand struct {
	BookingID           string
	Reason              string
	CancelledByProvider bool
}

type CancelBookingResult struct {
	RefundIssued  bool
	RefundAmount  money.Money
	SlotsReleased int
}

// CancelBooking cancels the booking, frees its calendar slots and, when the
// policy or the provider waives the fee, returns the deposit.
func (s *Service) CancelBooking(ctx context.Context, cmd CancelBookingCommand) (CancelBookingResult, error) {
	now := s.clock.Now()

	booking, err := s.bookings.GetByID(ctx, cmd.BookingID)
	if err != nil {
		return CancelBookingResult{}, err
	}
	if err := booking.Cancel(cmd.Reason, cmd.CancelledByProvider, now); err != nil {
		return CancelBookingResult{}, err
	}

	released, err := s.releaseSlots(ctx, booking, now)
	if err != nil {
		return CancelBookingResult{}, err
	}

	result := CancelBookingResult{SlotsReleased: released}
	canWaiveFee := booking.CancellationPolicy.CanCancelWithoutFee(booking.StartTime, now) || cmd.CancelledByProvider
	if canWaiveFee && booking.PaymentID != "" {
		result.RefundIssued, result.RefundAmount = s.refundDeposit(ctx, booking, cmd.Reason, now)
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		return CancelBookingResult{}, err
	}

	s.obsMetrics.RecordCancellation(ctx, result.RefundIssued)
	s.log.Info("booking cancelled",
		zap.String("booking_id", booking.ID),
		zap.Bool("by_provider", cmd.CancelledByProvider),
		zap.Int("slots_released", result.SlotsReleased),
		zap.Bool("refund_issued", result.RefundIssued),
	)
	return result, nil
}

// releaseSlots frees every overlapping slot held by this booking. Slots booked
// by other bookings and blocked slots stay untouched.
func (s *Service) releaseSlots(ctx context.Context, booking *bookingdomain.Booking, now time.Time) (int, error) {
	slots, err := s.slots.FindOverlapping(ctx, booking.ProviderID, booking.Date, booking.StartTime, booking.EndTime, booking.StaffID)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, slot := range slots {
		if slot.Status != availabilitydomain.SlotBooked || slot.BookingID != booking.ID {
			continue
		}
		if err := slot.Release("cancellation"); err != nil {
			return released, err
		}
		slot.UpdatedAt = now
		if err := s.slots.Update(ctx, slot); err != nil {
			return released, err
		}
		released++
	}
	return released, nil
}

// refundDeposit returns the remaining deposit through the gateway and records
// it on the payment. Every failure on this leg is logged and swallowed so the
// cancellation itself stands.
func (s *Service) refundDeposit(ctx context.Context, booking *bookingdomain.Booking, reason string, now time.Time) (bool, money.Money) {
	payment, err := s.payments.GetByID(ctx, booking.PaymentID)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrNotFound) {
			return false, money.Money{}
		}
		s.log.Warn("refund skipped: load payment failed",
			zap.String("booking_id", booking.ID),
			zap.String("payment_id", booking.PaymentID),
			zap.Error(err),
		)
		return false, money.Money{}
	}
	if !payment.IsDepositPaid() {
		return false, money.Money{}
	}

	amount := payment.RefundableAmount()
	result, err := s.gateway.RefundPayment(ctx, payment.PaymentIntentID, amount, reason)
	if err != nil || !result.IsSuccessful {
		if err == nil {
			err = fmt.Errorf("gateway refused: %s", result.ErrorMessage)
		}
		s.log.Warn("refund failed, cancellation stands",
			zap.String("booking_id", booking.ID),
			zap.String("payment_id", payment.ID),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return false, money.Money{}
	}

	if err := payment.Refund(amount, result.RefundID, reason, "booking cancellation", now); err != nil {
		s.log.Warn("refund issued but not recorded",
			zap.String("payment_id", payment.ID),
			zap.Error(err),
		)
		return true, amount
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		// The money moved; a stale version only loses bookkeeping, not funds.
		if eventstoredomain.IsConcurrencyError(err) {
			s.obsMetrics.RecordConcurrencyConflict(ctx, paymentdomain.AggregateType)
		}
		s.log.Warn("refund issued but payment save failed",
			zap.String("payment_id", payment.ID),
			zap.Error(err),
		)
		return true, amount
	}

	return true, amount
}
