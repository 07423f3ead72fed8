// Package fees computes the platform service fee added to every
// bank-transfer payment.
package fees

import (
	"errors"
	"math"
)

// ErrInvalidAmount is returned for zero or negative amounts.
var ErrInvalidAmount = errors.New("invalid amount")

const (
	defaultRate = 0.003
	defaultMin  = 0.10
	defaultMax  = 5.00
)

// Calculator computes fees as a percentage of the amount, clamped to a
// minimum and maximum. Amounts are major currency units.
type Calculator struct {
	rate float64
	min  float64
	max  float64
}

func NewCalculator() *Calculator {
	return &Calculator{
		rate: defaultRate,
		min:  defaultMin,
		max:  defaultMax,
	}
}

// Fee returns the fee for amount: rate * amount rounded to 2 decimal
// places, never below min and never above max.
func (c *Calculator) Fee(amount float64) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	fee := round2(amount * c.rate)
	if fee < c.min {
		fee = c.min
	}
	if fee > c.max {
		fee = c.max
	}
	return fee, nil
}

// Total returns the fee and the amount with the fee applied.
func (c *Calculator) Total(amount float64) (fee, total float64, err error) {
	fee, err = c.Fee(amount)
	if err != nil {
		return 0, 0, err
	}
	return fee, round2(amount + fee), nil
}

// MinorUnits converts a major-unit amount to integer minor units
// (e.g. pounds to pence). Providers reject fractional minor units.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
