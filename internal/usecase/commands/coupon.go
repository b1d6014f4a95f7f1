package commands

//go:generate mockgen -source=coupon.go -destination=../../testutil/mock/commands/coupon.go -package=commandsmock

import (
	"context"
	"log/slog"

	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

// CouponEngine applies the policy service's verdict; it never computes a discount itself.
type CouponEngine interface {
	Apply(ctx context.Context, code string, orderAmount decimal.Decimal) (coupon.Result, error)
}

type couponEngineImpl struct {
	oracle shared.CouponOracle
}

func NewCouponEngine(oracle shared.CouponOracle) CouponEngine {
	return &couponEngineImpl{oracle: oracle}
}

func (e *couponEngineImpl) Apply(ctx context.Context, code string, orderAmount decimal.Decimal) (coupon.Result, error) {
	c, err := coupon.NewCouponCode(code)
	if err != nil {
		return coupon.Result{}, err
	}

	verdict, err := e.oracle.Validate(ctx, c, orderAmount)
	if err != nil {
		if !errs.Is(err, errs.ErrDependencyUnavailable) {
			err = errs.Mark(err, errs.ErrDependencyUnavailable)
		}
		return coupon.Result{}, errs.Wrapf(err, "validate coupon %s", c)
	}

	result, err := coupon.Evaluate(c, orderAmount, verdict)
	if err != nil {
		slog.InfoContext(ctx, "coupon rejected", "code", c.String(), "order_amount", orderAmount.String(), "error", err.Error())
		return coupon.Result{}, err
	}
	return result, nil
}
