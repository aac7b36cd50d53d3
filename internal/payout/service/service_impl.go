package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/primabook/primabook/internal/clock"
	eventstoredomain "github.com/primabook/primabook/internal/eventstore/domain"
	"github.com/primabook/primabook/internal/money"
	obsmetrics "github.com/primabook/primabook/internal/observability/metrics"
	"github.com/primabook/primabook/internal/payout/domain"
	"github.com/primabook/primabook/internal/payout/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Repo       *repository.Repository
	Clock      clock.Clock
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

// Service is the command-handling layer over the Payout aggregate. Transfers
// themselves run out of band; the handlers here record the lifecycle the
// settlement worker reports back.
type Service struct {
	log        *zap.Logger
	repo       *repository.Repository
	clock      clock.Clock
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		log:        p.Log.Named("payout.service"),
		repo:       p.Repo,
		clock:      p.Clock,
		obsMetrics: p.ObsMetrics,
	}
}

type CreateCommand struct {
	ProviderID       string
	GrossAmount      money.Money
	CommissionAmount money.Money
	PeriodStart      time.Time
	PeriodEnd        time.Time
	PaymentIDs       []string
	Notes            string
}

// Create opens a pending payout for a provider's settlement period.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*domain.Payout, error) {
	payout, err := domain.New(
		uuid.NewString(),
		cmd.ProviderID,
		cmd.GrossAmount,
		cmd.CommissionAmount,
		cmd.PeriodStart,
		cmd.PeriodEnd,
		cmd.PaymentIDs,
		cmd.Notes,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payout); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.log.Info("payout created",
		zap.String("payout_id", payout.ID),
		zap.String("provider_id", payout.ProviderID),
		zap.String("net_amount", payout.NetAmount.String()),
	)
	return payout, nil
}

type ScheduleCommand struct {
	PayoutID    string
	ScheduledAt time.Time
}

func (s *Service) Schedule(ctx context.Context, cmd ScheduleCommand) (*domain.Payout, error) {
	payout, err := s.repo.GetByID(ctx, cmd.PayoutID)
	if err != nil {
		return nil, err
	}
	if err := payout.Schedule(cmd.ScheduledAt, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payout); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.log.Info("payout scheduled",
		zap.String("payout_id", payout.ID),
		zap.Time("scheduled_at", cmd.ScheduledAt),
	)
	return payout, nil
}

type MarkProcessingCommand struct {
	PayoutID         string
	ExternalPayoutID string
	StripeAccountID  string
}

func (s *Service) MarkProcessing(ctx context.Context, cmd MarkProcessingCommand) (*domain.Payout, error) {
	payout, err := s.repo.GetByID(ctx, cmd.PayoutID)
	if err != nil {
		return nil, err
	}
	if err := payout.MarkProcessing(cmd.ExternalPayoutID, cmd.StripeAccountID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payout); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.log.Info("payout processing",
		zap.String("payout_id", payout.ID),
		zap.String("external_payout_id", cmd.ExternalPayoutID),
	)
	return payout, nil
}

type MarkPaidCommand struct {
	PayoutID         string
	BankAccountLast4 string
	BankName         string
}

func (s *Service) MarkPaid(ctx context.Context, cmd MarkPaidCommand) (*domain.Payout, error) {
	payout, err := s.repo.GetByID(ctx, cmd.PayoutID)
	if err != nil {
		return nil, err
	}
	if err := payout.MarkPaid(cmd.BankAccountLast4, cmd.BankName, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payout); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.obsMetrics.RecordPayoutPaid(ctx)
	s.log.Info("payout paid",
		zap.String("payout_id", payout.ID),
		zap.String("bank_name", cmd.BankName),
	)
	return payout, nil
}

type MarkFailedCommand struct {
	PayoutID string
	Reason   string
}

func (s *Service) MarkFailed(ctx context.Context, cmd MarkFailedCommand) (*domain.Payout, error) {
	payout, err := s.repo.GetByID(ctx, cmd.PayoutID)
	if err != nil {
		return nil, err
	}
	if err := payout.MarkFailed(cmd.Reason, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payout); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.log.Warn("payout failed",
		zap.String("payout_id", payout.ID),
		zap.String("reason", cmd.Reason),
	)
	return payout, nil
}

type PutOnHoldCommand struct {
	PayoutID string
	Reason   string
}

func (s *Service) PutOnHold(ctx context.Context, cmd PutOnHoldCommand) (*domain.Payout, error) {
	payout, err := s.repo.GetByID(ctx, cmd.PayoutID)
	if err != nil {
		return nil, err
	}
	if err := payout.PutOnHold(cmd.Reason); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payout); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.log.Info("payout on hold",
		zap.String("payout_id", payout.ID),
		zap.String("reason", cmd.Reason),
	)
	return payout, nil
}

type CancelCommand struct {
	PayoutID string
	Reason   string
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*domain.Payout, error) {
	payout, err := s.repo.GetByID(ctx, cmd.PayoutID)
	if err != nil {
		return nil, err
	}
	if err := payout.Cancel(cmd.Reason); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payout); err != nil {
		return nil, s.observeSaveErr(ctx, err)
	}

	s.log.Info("payout cancelled",
		zap.String("payout_id", payout.ID),
		zap.String("reason", cmd.Reason),
	)
	return payout, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) observeSaveErr(ctx context.Context, err error) error {
	if eventstoredomain.IsConcurrencyError(err) {
		s.obsMetrics.RecordConcurrencyConflict(ctx, domain.AggregateType)
	}
	return err
}
