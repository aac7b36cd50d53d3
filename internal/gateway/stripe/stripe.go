package stripe

import (
	"context"
	"errors"
	"strings"

	"github.com/primabook/primabook/internal/gateway/domain"
	"github.com/primabook/primabook/internal/money"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// Gateway adapts the Stripe API to the abstract PaymentGateway contract. Only
// the mapping lives here; processor wire details stay inside stripe-go.
type Gateway struct {
	api *client.API
	log *zap.Logger
}

func New(apiKey string, log *zap.Logger) *Gateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &Gateway{api: api, log: log.Named("gateway.stripe")}
}

func (g *Gateway) ProcessPayment(ctx context.Context, req domain.ProcessPaymentRequest) (domain.ProcessPaymentResult, error) {
	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(minorUnits(req.Amount)),
		Currency:      stripe.String(strings.ToLower(req.Amount.Currency())),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Description:   stripe.String(req.Description),
		Confirm:       stripe.Bool(true),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return domain.ProcessPaymentResult{}, g.wrap(err)
	}
	return domain.ProcessPaymentResult{
		IsSuccessful: intent.Status == stripe.PaymentIntentStatusSucceeded,
		PaymentID:    intent.ID,
		Status:       string(intent.Status),
	}, nil
}

func (g *Gateway) RefundPayment(ctx context.Context, paymentID string, amount money.Money, reason string) (domain.RefundResult, error) {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(paymentID),
		Amount:        stripe.Int64(minorUnits(amount)),
	}
	if reason != "" {
		params.AddMetadata("reason", reason)
	}

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		return domain.RefundResult{}, g.wrap(err)
	}
	return domain.RefundResult{
		IsSuccessful: refund.Status != stripe.RefundStatusFailed,
		RefundID:     refund.ID,
		Amount:       amount,
	}, nil
}

func (g *Gateway) GetPaymentDetails(ctx context.Context, paymentID string) (domain.PaymentDetails, error) {
	intent, err := g.api.PaymentIntents.Get(paymentID, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return domain.PaymentDetails{}, g.wrap(err)
	}
	amount, err := money.New(fromMinorUnits(intent.Amount), strings.ToUpper(string(intent.Currency)))
	if err != nil {
		return domain.PaymentDetails{}, err
	}
	return domain.PaymentDetails{
		PaymentID: intent.ID,
		Amount:    amount,
		Status:    string(intent.Status),
		Captured:  intent.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, amount money.Money, metadata map[string]string) (domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(minorUnits(amount)),
		Currency:      stripe.String(strings.ToLower(amount.Currency())),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return domain.PaymentIntent{}, g.wrap(err)
	}
	return domain.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

func (g *Gateway) ConfirmPaymentIntent(ctx context.Context, intentID string) (domain.ConfirmResult, error) {
	intent, err := g.api.PaymentIntents.Confirm(intentID, &stripe.PaymentIntentConfirmParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return domain.ConfirmResult{}, g.wrap(err)
	}
	result := domain.ConfirmResult{
		IsSuccessful: intent.Status == stripe.PaymentIntentStatusSucceeded,
		Status:       string(intent.Status),
	}
	if intent.LatestCharge != nil {
		result.ChargeID = intent.LatestCharge.ID
	}
	return result, nil
}

func (g *Gateway) wrap(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		g.log.Warn("stripe call failed",
			zap.String("code", string(serr.Code)),
			zap.String("message", serr.Msg),
		)
		return &domain.Error{Code: string(serr.Code), Message: serr.Msg}
	}
	return &domain.Error{Code: "network_error", Message: err.Error()}
}

// Stripe amounts are integer minor units; the marketplace only settles in
// two-exponent currencies.
func minorUnits(m money.Money) int64 {
	return m.Amount().Shift(2).IntPart()
}

func fromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -2)
}
