package domain

import (
	"time"

	"github.com/primabook/primabook/internal/eventsourcing"
	"github.com/primabook/primabook/internal/money"
)

// Stable event-type tags. These are persisted; never renumber or rename.
const (
	EventTypeCreated    = "payment.created"
	EventTypeAuthorized = "payment.authorized"
	EventTypeCaptured   = "payment.captured"
	EventTypeCharged    = "payment.charged"
	EventTypeRefunded   = "payment.refunded"
	EventTypeFailed     = "payment.failed"
)

type Created struct {
	PaymentID  string            `json:"payment_id"`
	BookingID  string            `json:"booking_id"`
	CustomerID string            `json:"customer_id"`
	ProviderID string            `json:"provider_id"`
	Amount     money.Money       `json:"amount"`
	Method     Method            `json:"method"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (Created) EventType() string { return EventTypeCreated }

type Authorized struct {
	PaymentID       string    `json:"payment_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	PaymentMethodID string    `json:"payment_method_id"`
	TransactionID   string    `json:"transaction_id"`
	AuthorizedAt    time.Time `json:"authorized_at"`
}

func (Authorized) EventType() string { return EventTypeAuthorized }

type Captured struct {
	PaymentID     string      `json:"payment_id"`
	ChargeID      string      `json:"charge_id"`
	Amount        money.Money `json:"amount"`
	TransactionID string      `json:"transaction_id"`
	CapturedAt    time.Time   `json:"captured_at"`
}

func (Captured) EventType() string { return EventTypeCaptured }

type Charged struct {
	PaymentID       string      `json:"payment_id"`
	PaymentIntentID string      `json:"payment_intent_id"`
	PaymentMethodID string      `json:"payment_method_id"`
	Amount          money.Money `json:"amount"`
	TransactionID   string      `json:"transaction_id"`
	ChargedAt       time.Time   `json:"charged_at"`
}

func (Charged) EventType() string { return EventTypeCharged }

type Refunded struct {
	PaymentID     string      `json:"payment_id"`
	Amount        money.Money `json:"amount"`
	Reference     string      `json:"reference"`
	Reason        string      `json:"reason"`
	Note          string      `json:"note,omitempty"`
	TransactionID string      `json:"transaction_id"`
	RefundedAt    time.Time   `json:"refunded_at"`
}

func (Refunded) EventType() string { return EventTypeRefunded }

type Failed struct {
	PaymentID string    `json:"payment_id"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
}

func (Failed) EventType() string { return EventTypeFailed }

// RegisterEvents binds the payment event set to the codec.
func RegisterEvents(codec *eventsourcing.Codec) {
	codec.Register(EventTypeCreated, func() eventsourcing.Event { return &Created{} })
	codec.Register(EventTypeAuthorized, func() eventsourcing.Event { return &Authorized{} })
	codec.Register(EventTypeCaptured, func() eventsourcing.Event { return &Captured{} })
	codec.Register(EventTypeCharged, func() eventsourcing.Event { return &Charged{} })
	codec.Register(EventTypeRefunded, func() eventsourcing.Event { return &Refunded{} })
	codec.Register(EventTypeFailed, func() eventsourcing.Event { return &Failed{} })
}
