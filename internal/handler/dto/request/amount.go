package request

import (
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/money"

	"github.com/shopspring/decimal"
)

var errNonPositiveAmount = errs.Mark(errs.New("amount must be greater than 0"), errs.ErrValidation)

// validAmount accepts positive amounts in whole cents.
func validAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return errNonPositiveAmount
	}
	return money.CheckCents(d)
}
