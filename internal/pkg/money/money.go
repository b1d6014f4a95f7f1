// Package money holds the rounding and clamping rules shared by every amount
// the engine computes. Amounts are decimal.Decimal end to end.
package money

import (
	"rental-engine/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Scale is the number of minor-unit digits kept on stored amounts.
const Scale int32 = 2

var Zero = decimal.Zero

var ErrSubCentAmount = errs.Mark(errs.New("amount has more than two decimal places"), errs.ErrValidation)

// HasSubCents reports whether d would change when stored at Scale places.
func HasSubCents(d decimal.Decimal) bool {
	return !d.Equal(Round(d))
}

// CheckCents rejects amounts that cannot be stored without rounding.
// Columns round independently, so a sub-cent amount would break the
// before/after arithmetic of a stored ledger entry.
func CheckCents(d decimal.Decimal) error {
	if HasSubCents(d) {
		return errs.Wrapf(ErrSubCentAmount, "amount %s", d)
	}
	return nil
}

// Round rounds half away from zero to Scale places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Percent applies rate (0.18 for 18%) to base and rounds the result.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return Round(base.Mul(rate))
}

func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	return Max(d, decimal.Zero)
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	return Min(Max(d, lo), hi)
}

func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}
