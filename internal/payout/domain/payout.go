package domain

import (
	"fmt"
	"time"

	"github.com/primabook/primabook/internal/eventsourcing"
	"github.com/primabook/primabook/internal/money"
)

const AggregateType = "payout"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusFailed     Status = "failed"
	StatusOnHold     Status = "on_hold"
	StatusCancelled  Status = "cancelled"
)

// Payout aggregates a provider's completed payments over a settlement period
// into one bank transfer and tracks its lifecycle. Terminal once paid or
// cancelled.
type Payout struct {
	eventsourcing.Root

	ID               string
	ProviderID       string
	GrossAmount      money.Money
	CommissionAmount money.Money
	NetAmount        money.Money
	PeriodStart      time.Time
	PeriodEnd        time.Time
	PaymentIDs       []string
	Status           Status
	ScheduledAt      *time.Time
	ExternalPayoutID string
	StripeAccountID  string
	BankAccountLast4 string
	BankName         string
	PaidAt           *time.Time
	FailedAt         *time.Time
	FailureReason    string
	Notes            string
	CreatedAt        time.Time
}

// Empty returns a zero-state payout for the replay repository to fold into.
func Empty() *Payout { return &Payout{} }

func (p *Payout) AggregateID() string   { return p.ID }
func (p *Payout) AggregateType() string { return AggregateType }

// New creates a pending payout settling paymentIDs for the provider over
// [periodStart, periodEnd]. NetAmount is gross minus the platform commission.
func New(id, providerID string, gross, commission money.Money, periodStart, periodEnd time.Time, paymentIDs []string, notes string, now time.Time) (*Payout, error) {
	if id == "" || providerID == "" {
		return nil, fmt.Errorf("%w: missing identifier", ErrInvalidInput)
	}
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidPeriod,
			periodStart.Format(time.RFC3339), periodEnd.Format(time.RFC3339))
	}
	exceeds, err := commission.GreaterThan(gross)
	if err != nil {
		return nil, err
	}
	if exceeds {
		return nil, fmt.Errorf("%w: %s > %s", ErrCommissionExceedsGross, commission, gross)
	}
	net, err := gross.Sub(commission)
	if err != nil {
		return nil, err
	}

	p := Empty()
	event := &Created{
		PayoutID:         id,
		ProviderID:       providerID,
		GrossAmount:      gross,
		CommissionAmount: commission,
		NetAmount:        net,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		PaymentIDs:       paymentIDs,
		Notes:            notes,
		CreatedAt:        now,
	}
	p.applyCreated(event)
	p.Record(event)
	return p, nil
}

// Schedule sets the planned transfer date; the payout stays pending.
func (p *Payout) Schedule(scheduledAt, now time.Time) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: can only schedule a pending payout, was %s", ErrInvalidState, p.Status)
	}
	if !scheduledAt.After(now) {
		return fmt.Errorf("%w: %s", ErrInvalidScheduleDate, scheduledAt.Format(time.RFC3339))
	}
	event := &Scheduled{PayoutID: p.ID, ScheduledAt: scheduledAt}
	p.applyScheduled(event)
	p.Record(event)
	return nil
}

// MarkProcessing records the transfer handed to the payment provider. A held
// payout resumes through here as well.
func (p *Payout) MarkProcessing(externalPayoutID, stripeAccountID string) error {
	if p.Status != StatusPending && p.Status != StatusOnHold {
		return fmt.Errorf("%w: cannot start processing from %s", ErrInvalidState, p.Status)
	}
	event := &Processing{PayoutID: p.ID, ExternalPayoutID: externalPayoutID, StripeAccountID: stripeAccountID}
	p.applyProcessing(event)
	p.Record(event)
	return nil
}

// MarkPaid completes the transfer. Legal only while processing.
func (p *Payout) MarkPaid(bankAccountLast4, bankName string, now time.Time) error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("%w: can only be marked paid when processing, was %s", ErrInvalidState, p.Status)
	}
	event := &Completed{PayoutID: p.ID, BankAccountLast4: bankAccountLast4, BankName: bankName, PaidAt: now}
	p.applyCompleted(event)
	p.Record(event)
	return nil
}

// MarkFailed records a transfer failure. Legal only while processing.
func (p *Payout) MarkFailed(reason string, now time.Time) error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("%w: can only fail while processing, was %s", ErrInvalidState, p.Status)
	}
	event := &Failed{PayoutID: p.ID, Reason: reason, FailedAt: now}
	p.applyFailed(event)
	p.Record(event)
	return nil
}

// PutOnHold pauses a payout pending review. The reason lands in the internal
// notes, not in a dedicated field.
func (p *Payout) PutOnHold(reason string) error {
	if p.Status != StatusPending && p.Status != StatusProcessing {
		return fmt.Errorf("%w: cannot hold a payout in status %s", ErrInvalidState, p.Status)
	}
	event := &OnHold{PayoutID: p.ID, Reason: reason}
	p.applyOnHold(event)
	p.Record(event)
	return nil
}

// Cancel voids the payout. Paid payouts are settled money and cannot be
// cancelled.
func (p *Payout) Cancel(reason string) error {
	if p.Status == StatusPaid {
		return fmt.Errorf("%w: cannot cancel a paid payout", ErrInvalidState)
	}
	if p.Status == StatusCancelled {
		return fmt.Errorf("%w: payout already cancelled", ErrInvalidState)
	}
	event := &Cancelled{PayoutID: p.ID, Reason: reason}
	p.applyCancelled(event)
	p.Record(event)
	return nil
}

// Apply folds one event into state during replay.
func (p *Payout) Apply(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *Created:
		p.applyCreated(e)
	case *Scheduled:
		p.applyScheduled(e)
	case *Processing:
		p.applyProcessing(e)
	case *Completed:
		p.applyCompleted(e)
	case *Failed:
		p.applyFailed(e)
	case *OnHold:
		p.applyOnHold(e)
	case *Cancelled:
		p.applyCancelled(e)
	default:
		return fmt.Errorf("payout: unexpected event %T", event)
	}
	return nil
}

func (p *Payout) applyCreated(e *Created) {
	p.ID = e.PayoutID
	p.ProviderID = e.ProviderID
	p.GrossAmount = e.GrossAmount
	p.CommissionAmount = e.CommissionAmount
	p.NetAmount = e.NetAmount
	p.PeriodStart = e.PeriodStart
	p.PeriodEnd = e.PeriodEnd
	p.PaymentIDs = e.PaymentIDs
	p.Notes = e.Notes
	p.Status = StatusPending
	p.CreatedAt = e.CreatedAt
}

func (p *Payout) applyScheduled(e *Scheduled) {
	at := e.ScheduledAt
	p.ScheduledAt = &at
}

func (p *Payout) applyProcessing(e *Processing) {
	p.Status = StatusProcessing
	p.ExternalPayoutID = e.ExternalPayoutID
	if e.StripeAccountID != "" {
		p.StripeAccountID = e.StripeAccountID
	}
}

func (p *Payout) applyCompleted(e *Completed) {
	p.Status = StatusPaid
	p.BankAccountLast4 = e.BankAccountLast4
	p.BankName = e.BankName
	at := e.PaidAt
	p.PaidAt = &at
}

func (p *Payout) applyFailed(e *Failed) {
	p.Status = StatusFailed
	p.FailureReason = e.Reason
	at := e.FailedAt
	p.FailedAt = &at
}

func (p *Payout) applyOnHold(e *OnHold) {
	p.Status = StatusOnHold
	if e.Reason != "" {
		if p.Notes != "" {
			p.Notes += "\n"
		}
		p.Notes += "on hold: " + e.Reason
	}
}

func (p *Payout) applyCancelled(e *Cancelled) {
	p.Status = StatusCancelled
	if e.Reason != "" {
		if p.Notes != "" {
			p.Notes += "\n"
		}
		p.Notes += "cancelled: " + e.Reason
	}
}
