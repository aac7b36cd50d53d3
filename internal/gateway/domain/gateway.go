package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/primabook/primabook/internal/money"
)

// Error is a failure reported by the payment processor or the network path to
// it. The cancellation flow downgrades it to a non-fatal outcome; every other
// flow propagates it.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s: %s", e.Code, e.Message)
}

// IsGatewayError reports whether err is (or wraps) a gateway Error.
func IsGatewayError(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr)
}

type ProcessPaymentRequest struct {
	Amount          money.Money
	CustomerID      string
	PaymentMethodID string
	Description     string
	Metadata        map[string]string
}

type ProcessPaymentResult struct {
	IsSuccessful bool
	PaymentID    string
	Status       string
	ErrorCode    string
}

type RefundResult struct {
	IsSuccessful bool
	RefundID     string
	Amount       money.Money
	ErrorMessage string
}

type PaymentDetails struct {
	PaymentID string
	Amount    money.Money
	Status    string
	Captured  bool
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

type ConfirmResult struct {
	IsSuccessful bool
	ChargeID     string
	Status       string
}

// PaymentGateway is the abstract processor contract. The wire protocol of any
// concrete processor stays behind an adapter.
type PaymentGateway interface {
	ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (ProcessPaymentResult, error)
	RefundPayment(ctx context.Context, paymentID string, amount money.Money, reason string) (RefundResult, error)
	GetPaymentDetails(ctx context.Context, paymentID string) (PaymentDetails, error)
	CreatePaymentIntent(ctx context.Context, amount money.Money, metadata map[string]string) (PaymentIntent, error)
	ConfirmPaymentIntent(ctx context.Context, intentID string) (ConfirmResult, error)
}
