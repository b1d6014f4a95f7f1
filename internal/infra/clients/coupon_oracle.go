package clients

import (
	"context"
	"net/http"
	"time"

	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const couponValidatePath = "/coupons/validate"

type couponValidateRequest struct {
	Code        string          `json:"code"`
	OrderAmount decimal.Decimal `json:"order_amount"`
}

// couponValidateResponse keeps valid and discount_amount as pointers so a
// missing field is told apart from false or zero.
type couponValidateResponse struct {
	Valid             *bool            `json:"valid"`
	DiscountType      string           `json:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	DiscountAmount    *decimal.Decimal `json:"discount_amount"`
	MinOrderAmount    *decimal.Decimal `json:"min_order_amount"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount"`
	Message           string           `json:"message"`
}

// CouponOracleClient asks the coupon policy service for a verdict.
type CouponOracleClient struct {
	c jsonClient
}

func NewCouponOracleClient(baseURL string, timeout time.Duration) *CouponOracleClient {
	return &CouponOracleClient{c: jsonClient{
		name:    "coupon oracle",
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}}
}

func (o *CouponOracleClient) Validate(ctx context.Context, code coupon.Code, orderAmount decimal.Decimal) (coupon.Verdict, error) {
	var resp couponValidateResponse
	req := couponValidateRequest{Code: code.String(), OrderAmount: orderAmount}
	if err := o.c.postJSON(ctx, couponValidatePath, req, &resp); err != nil {
		return coupon.Verdict{}, err
	}
	if resp.Valid == nil {
		return coupon.Verdict{}, errs.Wrapf(coupon.ErrMalformedVerdict, "no valid flag for %s", code)
	}
	var discount decimal.Decimal
	if *resp.Valid {
		if resp.DiscountAmount == nil {
			return coupon.Verdict{}, errs.Wrapf(coupon.ErrMalformedVerdict, "no discount amount for %s", code)
		}
		discount = *resp.DiscountAmount
	}

	return coupon.Verdict{
		Valid:             *resp.Valid,
		DiscountType:      coupon.DiscountType(resp.DiscountType),
		DiscountValue:     resp.DiscountValue,
		DiscountAmount:    discount,
		MinOrderAmount:    resp.MinOrderAmount,
		MaxDiscountAmount: resp.MaxDiscountAmount,
		Message:           resp.Message,
	}, nil
}
