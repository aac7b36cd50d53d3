package domain

import (
	"time"

	"github.com/primabook/primabook/internal/eventsourcing"
	"github.com/primabook/primabook/internal/money"
)

// Stable event-type tags. These are persisted; never renumber or rename.
const (
	EventTypeCreated    = "payout.created"
	EventTypeScheduled  = "payout.scheduled"
	EventTypeProcessing = "payout.processing"
	EventTypeCompleted  = "payout.completed"
	EventTypeFailed     = "payout.failed"
	EventTypeOnHold     = "payout.on_hold"
	EventTypeCancelled  = "payout.cancelled"
)

type Created struct {
	PayoutID         string      `json:"payout_id"`
	ProviderID       string      `json:"provider_id"`
	GrossAmount      money.Money `json:"gross_amount"`
	CommissionAmount money.Money `json:"commission_amount"`
	NetAmount        money.Money `json:"net_amount"`
	PeriodStart      time.Time   `json:"period_start"`
	PeriodEnd        time.Time   `json:"period_end"`
	PaymentIDs       []string    `json:"payment_ids"`
	Notes            string      `json:"notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

func (Created) EventType() string { return EventTypeCreated }

type Scheduled struct {
	PayoutID    string    `json:"payout_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (Scheduled) EventType() string { return EventTypeScheduled }

type Processing struct {
	PayoutID         string `json:"payout_id"`
	ExternalPayoutID string `json:"external_payout_id"`
	StripeAccountID  string `json:"stripe_account_id,omitempty"`
}

func (Processing) EventType() string { return EventTypeProcessing }

type Completed struct {
	PayoutID         string    `json:"payout_id"`
	BankAccountLast4 string    `json:"bank_account_last4"`
	BankName         string    `json:"bank_name"`
	PaidAt           time.Time `json:"paid_at"`
}

func (Completed) EventType() string { return EventTypeCompleted }

type Failed struct {
	PayoutID string    `json:"payout_id"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

func (Failed) EventType() string { return EventTypeFailed }

type OnHold struct {
	PayoutID string `json:"payout_id"`
	Reason   string `json:"reason"`
}

func (OnHold) EventType() string { return EventTypeOnHold }

type Cancelled struct {
	PayoutID string `json:"payout_id"`
	Reason   string `json:"reason"`
}

func (Cancelled) EventType() string { return EventTypeCancelled }

// RegisterEvents binds the payout event set to the codec.
func RegisterEvents(codec *eventsourcing.Codec) {
	codec.Register(EventTypeCreated, func() eventsourcing.Event { return &Created{} })
	codec.Register(EventTypeScheduled, func() eventsourcing.Event { return &Scheduled{} })
	codec.Register(EventTypeProcessing, func() eventsourcing.Event { return &Processing{} })
	codec.Register(EventTypeCompleted, func() eventsourcing.Event { return &Completed{} })
	codec.Register(EventTypeFailed, func() eventsourcing.Event { return &Failed{} })
	codec.Register(EventTypeOnHold, func() eventsourcing.Event { return &OnHold{} })
	codec.Register(EventTypeCancelled, func() eventsourcing.Event { return &Cancelled{} })
}
