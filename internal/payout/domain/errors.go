package domain

import "errors"

var (
	// ErrInvalidState marks a lifecycle transition that is illegal for the
	// payout's current status. The aggregate is left unchanged.
	ErrInvalidState = errors.New("payout: invalid state")

	ErrInvalidPeriod          = errors.New("payout: period start is after period end")
	ErrCommissionExceedsGross = errors.New("payout: commission exceeds gross amount")
	ErrInvalidScheduleDate    = errors.New("payout: schedule date must be in the future")
	ErrInvalidInput           = errors.New("payout: invalid input")
	ErrNotFound               = errors.New("payout: not found")
)
