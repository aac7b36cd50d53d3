package domain

import "errors"

var (
	// ErrInvalidState marks a transition that is illegal for the payment's
	// current status. The aggregate is left unchanged.
	ErrInvalidState = errors.New("payment: invalid state")

	// ErrRefundExceedsPaid rejects refunds that would push the refunded total
	// past what was actually paid.
	ErrRefundExceedsPaid = errors.New("payment: refund exceeds paid amount")

	ErrInvalidInput = errors.New("payment: invalid input")
	ErrNotFound     = errors.New("payment: not found")
)
