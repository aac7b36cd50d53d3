package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/primabook/primabook/internal/eventsourcing"
	"github.com/primabook/primabook/internal/money"
)

const AggregateType = "payment"

type Status string

const (
	StatusPending Status = "pending"
	// StatusPartiallyPaid doubles as the "authorized" marker: Authorize moves
	// a payment here and Capture keys off this exact value. Historical naming,
	// kept because downstream checks depend on it.
	StatusPartiallyPaid     Status = "partially_paid"
	StatusPaid              Status = "paid"
	StatusPartiallyRefunded Status = "partially_refunded"
	StatusRefunded          Status = "refunded"
	StatusFailed            Status = "failed"
)

type Method string

const (
	MethodCard         Method = "card"
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
)

type TransactionType string

const (
	TransactionAuthorization TransactionType = "authorization"
	TransactionCapture       TransactionType = "capture"
	TransactionCharge        TransactionType = "charge"
	TransactionRefund        TransactionType = "refund"
)

// Transaction is one entry of the payment's append-only money-movement log.
type Transaction struct {
	ID        string          `json:"id"`
	Type      TransactionType `json:"type"`
	Amount    money.Money     `json:"amount"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
}

// Payment tracks a booking's money flow: what was agreed, what was actually
// paid, and what was refunded. Status is always derivable from the
// transaction history. Payments are never deleted; failed and refunded ones
// remain as historical record.
type Payment struct {
	eventsourcing.Root

	ID              string
	BookingID       string
	CustomerID      string
	ProviderID      string
	Amount          money.Money
	PaidAmount      money.Money
	RefundedAmount  money.Money
	Status          Status
	Method          Method
	PaymentIntentID string
	Transactions    []Transaction
	Metadata        map[string]string
	FailureReason   string
	CreatedAt       time.Time
}

// Empty returns a zero-state payment for the replay repository to fold into.
func Empty() *Payment { return &Payment{} }

func (p *Payment) AggregateID() string   { return p.ID }
func (p *Payment) AggregateType() string { return AggregateType }

// NewForBooking creates a pending payment for a booking attempt.
func NewForBooking(id, bookingID, customerID, providerID string, amount money.Money, method Method, metadata map[string]string, now time.Time) (*Payment, error) {
	if id == "" || bookingID == "" || customerID == "" || providerID == "" {
		return nil, fmt.Errorf("%w: missing identifier", ErrInvalidInput)
	}
	if amount.Currency() == "" {
		return nil, fmt.Errorf("%w: amount is required", ErrInvalidInput)
	}

	p := Empty()
	event := &Created{
		PaymentID:  id,
		BookingID:  bookingID,
		CustomerID: customerID,
		ProviderID: providerID,
		Amount:     amount,
		Method:     method,
		Metadata:   metadata,
		CreatedAt:  now,
	}
	p.applyCreated(event)
	p.Record(event)
	return p, nil
}

// Authorize places a hold against the payment instrument. Legal only from
// pending.
func (p *Payment) Authorize(paymentIntentID, paymentMethodID string, now time.Time) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: can only be authorized when pending, was %s", ErrInvalidState, p.Status)
	}
	event := &Authorized{
		PaymentID:       p.ID,
		PaymentIntentID: paymentIntentID,
		PaymentMethodID: paymentMethodID,
		TransactionID:   uuid.NewString(),
		AuthorizedAt:    now,
	}
	p.applyAuthorized(event)
	p.Record(event)
	return nil
}

// Capture settles a previously authorized payment in full.
func (p *Payment) Capture(chargeID string, now time.Time) error {
	if p.Status != StatusPartiallyPaid {
		return fmt.Errorf("%w: can only be captured when authorized, was %s", ErrInvalidState, p.Status)
	}
	event := &Captured{
		PaymentID:     p.ID,
		ChargeID:      chargeID,
		Amount:        p.Amount,
		TransactionID: uuid.NewString(),
		CapturedAt:    now,
	}
	p.applyCaptured(event)
	p.Record(event)
	return nil
}

// ProcessCharge is the direct pending-to-paid path that bypasses a separate
// authorization step.
func (p *Payment) ProcessCharge(paymentIntentID, paymentMethodID string, now time.Time) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: can only be charged when pending, was %s", ErrInvalidState, p.Status)
	}
	event := &Charged{
		PaymentID:       p.ID,
		PaymentIntentID: paymentIntentID,
		PaymentMethodID: paymentMethodID,
		Amount:          p.Amount,
		TransactionID:   uuid.NewString(),
		ChargedAt:       now,
	}
	p.applyCharged(event)
	p.Record(event)
	return nil
}

// Refund returns part or all of the paid amount. The refunded total may never
// exceed what was paid; the full total flips the payment to refunded.
func (p *Payment) Refund(amount money.Money, reference, reason, note string, now time.Time) error {
	if p.Status != StatusPaid && p.Status != StatusPartiallyRefunded {
		return fmt.Errorf("%w: can only be refunded when paid, was %s", ErrInvalidState, p.Status)
	}
	if amount.Currency() != p.PaidAmount.Currency() {
		return fmt.Errorf("%w: refund in %s against payment in %s",
			money.ErrCurrencyMismatch, amount.Currency(), p.PaidAmount.Currency())
	}
	total, err := p.RefundedAmount.Add(amount)
	if err != nil {
		return err
	}
	exceeds, err := total.GreaterThan(p.PaidAmount)
	if err != nil {
		return err
	}
	if exceeds {
		return fmt.Errorf("%w: %s refunded + %s requested > %s paid",
			ErrRefundExceedsPaid, p.RefundedAmount, amount, p.PaidAmount)
	}

	event := &Refunded{
		PaymentID:     p.ID,
		Amount:        amount,
		Reference:     reference,
		Reason:        reason,
		Note:          note,
		TransactionID: uuid.NewString(),
		RefundedAt:    now,
	}
	p.applyRefunded(event)
	p.Record(event)
	return nil
}

// MarkFailed terminates a payment that never reached paid.
func (p *Payment) MarkFailed(reason string, now time.Time) error {
	if p.Status != StatusPending && p.Status != StatusPartiallyPaid {
		return fmt.Errorf("%w: cannot fail a payment in status %s", ErrInvalidState, p.Status)
	}
	event := &Failed{PaymentID: p.ID, Reason: reason, FailedAt: now}
	p.applyFailed(event)
	p.Record(event)
	return nil
}

// IsDepositPaid reports whether money was actually captured and not yet fully
// returned; the cancellation flow uses it to decide refund eligibility.
func (p *Payment) IsDepositPaid() bool {
	if p.PaidAmount.IsZero() {
		return false
	}
	switch p.Status {
	case StatusPaid, StatusPartiallyRefunded:
		return true
	default:
		return false
	}
}

// RefundableAmount is what can still be returned to the customer.
func (p *Payment) RefundableAmount() money.Money {
	remaining, err := p.PaidAmount.Sub(p.RefundedAmount)
	if err != nil {
		// RefundedAmount <= PaidAmount holds for every stored payment.
		return money.Zero(p.PaidAmount.Currency())
	}
	return remaining
}

// Apply folds one event into state during replay.
func (p *Payment) Apply(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *Created:
		p.applyCreated(e)
	case *Authorized:
		p.applyAuthorized(e)
	case *Captured:
		p.applyCaptured(e)
	case *Charged:
		p.applyCharged(e)
	case *Refunded:
		p.applyRefunded(e)
	case *Failed:
		p.applyFailed(e)
	default:
		return fmt.Errorf("payment: unexpected event %T", event)
	}
	return nil
}

func (p *Payment) applyCreated(e *Created) {
	p.ID = e.PaymentID
	p.BookingID = e.BookingID
	p.CustomerID = e.CustomerID
	p.ProviderID = e.ProviderID
	p.Amount = e.Amount
	p.PaidAmount = money.Zero(e.Amount.Currency())
	p.RefundedAmount = money.Zero(e.Amount.Currency())
	p.Status = StatusPending
	p.Method = e.Method
	p.Metadata = e.Metadata
	p.CreatedAt = e.CreatedAt
}

func (p *Payment) applyAuthorized(e *Authorized) {
	p.Status = StatusPartiallyPaid
	p.PaymentIntentID = e.PaymentIntentID
	p.Transactions = append(p.Transactions, Transaction{
		ID:        e.TransactionID,
		Type:      TransactionAuthorization,
		Amount:    p.Amount,
		Reference: e.PaymentIntentID,
		CreatedAt: e.AuthorizedAt,
	})
}

func (p *Payment) applyCaptured(e *Captured) {
	p.Status = StatusPaid
	p.PaidAmount = e.Amount
	p.Transactions = append(p.Transactions, Transaction{
		ID:        e.TransactionID,
		Type:      TransactionCapture,
		Amount:    e.Amount,
		Reference: e.ChargeID,
		CreatedAt: e.CapturedAt,
	})
}

func (p *Payment) applyCharged(e *Charged) {
	p.Status = StatusPaid
	p.PaidAmount = e.Amount
	p.PaymentIntentID = e.PaymentIntentID
	p.Transactions = append(p.Transactions, Transaction{
		ID:        e.TransactionID,
		Type:      TransactionCharge,
		Amount:    e.Amount,
		Reference: e.PaymentIntentID,
		CreatedAt: e.ChargedAt,
	})
}

func (p *Payment) applyRefunded(e *Refunded) {
	// Validated before the event was recorded; replay must not fail.
	if total, err := p.RefundedAmount.Add(e.Amount); err == nil {
		p.RefundedAmount = total
	}
	if p.RefundedAmount.Equal(p.PaidAmount) {
		p.Status = StatusRefunded
	} else {
		p.Status = StatusPartiallyRefunded
	}
	p.Transactions = append(p.Transactions, Transaction{
		ID:        e.TransactionID,
		Type:      TransactionRefund,
		Amount:    e.Amount,
		Reference: e.Reference,
		CreatedAt: e.RefundedAt,
	})
}

func (p *Payment) applyFailed(e *Failed) {
	p.Status = StatusFailed
	p.FailureReason = e.Reason
}
