package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/primabook/primabook/internal/clock"
	eventstoredomain "github.com/primabook/primabook/internal/eventstore/domain"
	gatewaydomain "github.com/primabook/primabook/internal/gateway/domain"
	"github.com/primabook/primabook/internal/money"
	obsmetrics "github.com/primabook/primabook/internal/observability/metrics"
	"github.com/primabook/primabook/internal/payment/domain"
	"github.com/primabook/primabook/internal/payment/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Repo       *repository.Repository
	Gateway    gatewaydomain.PaymentGateway
	Clock      clock.Clock
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

// Service is the command-handling layer over the Payment aggregate. Each
// handler is one unit of work: load, transition, save. Gateway calls happen
// before the local transition that depends on their result, so a failed or
// slow call never leaves the aggregate partially mutated.
type Service struct {
	log        *zap.Logger
	repo       *repository.Repository
	gateway    gatewaydomain.PaymentGateway
	clock      clock.Clock
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		log:        p.Log.Named("payment.service"),
		repo:       p.Repo,
		gateway:    p.Gateway,
		clock:      p.Clock,
		obsMetrics: p.ObsMetrics,
	}
}

type CreateCommand struct {
	BookingID  string
	CustomerID string
	ProviderID string
	Amount     money.Money
	Method     domain.Method
	Metadata   map[string]string
}

// Create opens a pending payment for a booking attempt.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*domain.Payment, error) {
	payment, err := domain.NewForBooking(
		uuid.NewString(),
		cmd.BookingID,
		cmd.CustomerID,
		cmd.ProviderID,
		cmd.Amount,
		cmd.Method,
		cmd.Metadata,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.log.Info("payment created",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", payment.BookingID),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

type AuthorizeCommand struct {
	PaymentID       string
	PaymentMethodID string
}

// Authorize creates a manual-capture intent at the gateway and places the
// hold on the aggregate.
func (s *Service) Authorize(ctx context.Context, cmd AuthorizeCommand) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, payment.Amount, map[string]string{
		"payment_id": payment.ID,
		"booking_id": payment.BookingID,
	})
	if err != nil {
		return nil, fmt.Errorf("authorize payment %s: %w", payment.ID, err)
	}

	if err := payment.Authorize(intent.ID, cmd.PaymentMethodID, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.log.Info("payment authorized",
		zap.String("payment_id", payment.ID),
		zap.String("payment_intent_id", intent.ID),
	)
	return payment, nil
}

type CaptureCommand struct {
	PaymentID string
}

// Capture confirms the gateway intent and settles the authorized amount.
// Gateway failures are fatal here, unlike on the cancellation refund path.
func (s *Service) Capture(ctx context.Context, cmd CaptureCommand) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	confirm, err := s.gateway.ConfirmPaymentIntent(ctx, payment.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("capture payment %s: %w", payment.ID, err)
	}
	if !confirm.IsSuccessful {
		return nil, &gatewaydomain.Error{Code: "capture_failed", Message: confirm.Status}
	}

	if err := payment.Capture(confirm.ChargeID, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.obsMetrics.RecordPaymentCaptured(ctx, string(payment.Method))
	s.log.Info("payment captured",
		zap.String("payment_id", payment.ID),
		zap.String("charge_id", confirm.ChargeID),
	)
	return payment, nil
}

type ChargeCommand struct {
	PaymentID       string
	PaymentMethodID string
}

// Charge runs the direct pending-to-paid path without a separate
// authorization step.
func (s *Service) Charge(ctx context.Context, cmd ChargeCommand) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.ProcessPayment(ctx, gatewaydomain.ProcessPaymentRequest{
		Amount:          payment.Amount,
		CustomerID:      payment.CustomerID,
		PaymentMethodID: cmd.PaymentMethodID,
		Description:     "booking " + payment.BookingID,
		Metadata:        map[string]string{"payment_id": payment.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("charge payment %s: %w", payment.ID, err)
	}
	if !result.IsSuccessful {
		return nil, &gatewaydomain.Error{Code: result.ErrorCode, Message: result.Status}
	}

	if err := payment.ProcessCharge(result.PaymentID, cmd.PaymentMethodID, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.obsMetrics.RecordPaymentCaptured(ctx, string(payment.Method))
	s.log.Info("payment charged",
		zap.String("payment_id", payment.ID),
		zap.String("gateway_payment_id", result.PaymentID),
	)
	return payment, nil
}

type RefundCommand struct {
	PaymentID string
	Amount    money.Money
	Reason    string
	Note      string
}

// Refund returns money through the gateway and records it on the aggregate.
func (s *Service) Refund(ctx context.Context, cmd RefundCommand) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.RefundPayment(ctx, payment.PaymentIntentID, cmd.Amount, cmd.Reason)
	if err != nil {
		return nil, fmt.Errorf("refund payment %s: %w", payment.ID, err)
	}
	if !result.IsSuccessful {
		return nil, &gatewaydomain.Error{Code: "refund_failed", Message: result.ErrorMessage}
	}

	if err := payment.Refund(cmd.Amount, result.RefundID, cmd.Reason, cmd.Note, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.obsMetrics.RecordRefund(ctx, cmd.Reason)
	s.log.Info("payment refunded",
		zap.String("payment_id", payment.ID),
		zap.String("refund_id", result.RefundID),
		zap.String("amount", cmd.Amount.String()),
	)
	return payment, nil
}

type MarkFailedCommand struct {
	PaymentID string
	Reason    string
}

func (s *Service) MarkFailed(ctx context.Context, cmd MarkFailedCommand) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.MarkFailed(cmd.Reason, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.log.Info("payment failed",
		zap.String("payment_id", payment.ID),
		zap.String("reason", cmd.Reason),
	)
	return payment, nil
}

// GetByID exposes the aggregate to other use cases, the cancellation
// orchestrator in particular.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) observeSaveErr(ctx context.Context, err error) error {
	if eventstoredomain.IsConcurrencyError(err) {
		s.obsMetrics.RecordConcurrencyConflict(ctx, domain.AggregateType)
	}
	return err
}
