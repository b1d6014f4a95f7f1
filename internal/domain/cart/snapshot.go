package cart

import (
	"time"

	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot is the durable form of a cart. Only the customer's inputs are kept;
// prices are recomputed against the catalog when the cart is loaded.
type Snapshot struct {
	CustomerID uuid.UUID       `json:"customerId"`
	Lines      []SnapshotLine  `json:"lines"`
	Coupon     *SnapshotCoupon `json:"coupon,omitempty"`
	SavedAt    time.Time       `json:"savedAt"`
}

type SnapshotLine struct {
	ProductID  uuid.UUID          `json:"productId"`
	VariantID  *uuid.UUID         `json:"variantId,omitempty"`
	PeriodType pricing.PeriodType `json:"periodType"`
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	Quantity   int                `json:"quantity"`
}

type SnapshotCoupon struct {
	Code              string           `json:"code"`
	DiscountType      string           `json:"discountType"`
	DiscountValue     decimal.Decimal  `json:"discountValue"`
	DiscountAmount    decimal.Decimal  `json:"discountAmount"`
	OrderAmount       decimal.Decimal  `json:"orderAmount"`
	FinalAmount       decimal.Decimal  `json:"finalAmount"`
	MinOrderAmount    *decimal.Decimal `json:"minOrderAmount,omitempty"`
	MaxDiscountAmount *decimal.Decimal `json:"maxDiscountAmount,omitempty"`
	Message           string           `json:"message,omitempty"`
}

func (c *Cart) Snapshot(now time.Time) Snapshot {
	s := Snapshot{
		CustomerID: c.customerID,
		Lines:      make([]SnapshotLine, 0, len(c.lines)),
		SavedAt:    now,
	}
	for _, l := range c.lines {
		sel := l.selection
		s.Lines = append(s.Lines, SnapshotLine{
			ProductID:  l.product.ID(),
			VariantID:  l.Key().VariantPtr(),
			PeriodType: sel.PeriodType(),
			Start:      sel.Start(),
			End:        sel.End(),
			Quantity:   sel.Quantity(),
		})
	}
	if c.coupon != nil {
		s.Coupon = &SnapshotCoupon{
			Code:              c.coupon.Code.String(),
			DiscountType:      string(c.coupon.DiscountType),
			DiscountValue:     c.coupon.DiscountValue,
			DiscountAmount:    c.coupon.DiscountAmount,
			OrderAmount:       c.coupon.OrderAmount,
			FinalAmount:       c.coupon.FinalAmount,
			MinOrderAmount:    c.coupon.MinOrderAmount,
			MaxDiscountAmount: c.coupon.MaxDiscountAmount,
			Message:           c.coupon.Message,
		}
	}
	return s
}

// Selection rebuilds the validated period selection of a persisted line.
func (l SnapshotLine) Selection() (pricing.Selection, error) {
	return pricing.NewSelection(l.PeriodType, l.Start, l.End, l.Quantity)
}

func (c SnapshotCoupon) Result() coupon.Result {
	return coupon.Result{
		Code:              coupon.Code(c.Code),
		DiscountType:      coupon.DiscountType(c.DiscountType),
		DiscountValue:     c.DiscountValue,
		DiscountAmount:    c.DiscountAmount,
		OrderAmount:       c.OrderAmount,
		FinalAmount:       c.FinalAmount,
		MinOrderAmount:    c.MinOrderAmount,
		MaxDiscountAmount: c.MaxDiscountAmount,
		Message:           c.Message,
	}
}
