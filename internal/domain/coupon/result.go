package coupon

import (
	"fmt"

	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/money"

	"github.com/shopspring/decimal"
)

const defaultRejectReason = "coupon is not valid"

var ErrMalformedVerdict = errs.Mark(errs.New("policy service returned a malformed verdict"), errs.ErrDependencyUnavailable)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Verdict is the policy service's answer for a code and an order amount.
type Verdict struct {
	Valid             bool
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	DiscountAmount    decimal.Decimal
	MinOrderAmount    *decimal.Decimal
	MaxDiscountAmount *decimal.Decimal
	Message           string
}

// Result is an accepted coupon as held by a cart.
type Result struct {
	Code              Code
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	DiscountAmount    decimal.Decimal
	OrderAmount       decimal.Decimal
	FinalAmount       decimal.Decimal
	MinOrderAmount    *decimal.Decimal
	MaxDiscountAmount *decimal.Decimal
	Message           string
}

// RejectedError carries the policy service's reason for refusing a code.
type RejectedError struct {
	Code   Code
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

func (e *RejectedError) Is(target error) bool {
	return target == errs.ErrCouponInvalid
}

// Evaluate turns a verdict into a Result. The discount amount is taken as given;
// only the final amount is derived here.
func Evaluate(code Code, orderAmount decimal.Decimal, v Verdict) (Result, error) {
	if !v.Valid {
		reason := v.Message
		if reason == "" {
			reason = defaultRejectReason
		}
		return Result{}, &RejectedError{Code: code, Reason: reason}
	}
	if v.DiscountAmount.IsNegative() {
		return Result{}, errs.Wrapf(ErrMalformedVerdict, "negative discount %s for %s", v.DiscountAmount, code)
	}

	return Result{
		Code:              code,
		DiscountType:      v.DiscountType,
		DiscountValue:     v.DiscountValue,
		DiscountAmount:    v.DiscountAmount,
		OrderAmount:       orderAmount,
		FinalAmount:       money.NonNegative(orderAmount.Sub(v.DiscountAmount)),
		MinOrderAmount:    v.MinOrderAmount,
		MaxDiscountAmount: v.MaxDiscountAmount,
		Message:           v.Message,
	}, nil
}

// PricedFor reports whether the verdict was given for exactly this amount.
func (r Result) PricedFor(amount decimal.Decimal) bool {
	return r.OrderAmount.Equal(amount)
}

// ApplyTo returns the discount actually granted on amount and what remains to pay.
func (r Result) ApplyTo(amount decimal.Decimal) (discount, final decimal.Decimal) {
	discount = money.Clamp(r.DiscountAmount, decimal.Zero, money.NonNegative(amount))
	return discount, amount.Sub(discount)
}
