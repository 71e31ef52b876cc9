package proration

import (
	"context"
	"fmt"
	"time"

	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/shopspring/decimal"
)

// Params holds the input for a partial-period charge calculation.
type Params struct {
	// Quantity is the number of billable units added mid-cycle
	Quantity int64

	// CycleStart and CycleEnd bound the current billing cycle
	CycleStart time.Time
	CycleEnd   time.Time

	// ProrationDate is the effective time of the change, normally now
	ProrationDate time.Time

	// UnitAmount is the plan's per-unit price in minor currency units
	UnitAmount int64
}

// Result holds the output of a proration calculation.
type Result struct {
	// Amount is the prorated charge in minor currency units
	Amount int64 `json:"amount"`

	// Coefficient is the fraction of the cycle remaining at the proration date
	Coefficient decimal.Decimal `json:"coefficient"`

	// Description is the line item description for the charge
	Description string `json:"description"`
}

// Calculator computes partial-period charges. It is kept behind an interface
// to allow different strategies and easier testing.
type Calculator interface {
	Calculate(ctx context.Context, params Params) (*Result, error)
}

// NewCalculator returns the default day-based calculator.
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

// dayBasedCalculator prorates on fractional days remaining in the cycle, at
// millisecond resolution, matching how the billing provider slices periods.
type dayBasedCalculator struct{}

func (c *dayBasedCalculator) Calculate(ctx context.Context, params Params) (*Result, error) {
	// Non-positive quantity means the whole charge step is skipped; no
	// zero-amount line item is ever produced.
	if params.Quantity <= 0 {
		return nil, nil
	}

	if err := validateParams(params); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("invalid proration params: %v", err).
			Mark(ierr.ErrValidation)
	}

	totalDays := types.DaysBetween(params.CycleStart, params.CycleEnd)
	remainingDays := types.DaysBetween(params.ProrationDate, params.CycleEnd)
	if remainingDays < 0 {
		remainingDays = 0 // change happened after the cycle end
	}

	coefficient := decimal.NewFromFloat(remainingDays).
		Div(decimal.NewFromFloat(totalDays))

	amount := decimal.NewFromInt(params.Quantity).
		Mul(coefficient).
		Mul(decimal.NewFromInt(params.UnitAmount)).
		Round(0).
		IntPart()

	return &Result{
		Amount:      amount,
		Coefficient: coefficient,
		Description: fmt.Sprintf("One-off invoice for remainder. qty: %d", params.Quantity),
	}, nil
}

// validateParams checks if essential parameters are provided.
func validateParams(params Params) error {
	if params.ProrationDate.IsZero() {
		return fmt.Errorf("proration date is required")
	}
	if params.CycleStart.IsZero() || params.CycleEnd.IsZero() {
		return fmt.Errorf("billing cycle start and end dates are required")
	}
	if !params.CycleEnd.After(params.CycleStart) {
		return fmt.Errorf("billing cycle end must be after start")
	}
	if params.UnitAmount < 0 {
		return fmt.Errorf("unit amount cannot be negative")
	}
	return nil
}
