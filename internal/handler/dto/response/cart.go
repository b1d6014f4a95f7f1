package response

import (
	"time"

	"rental-engine/internal/domain/cart"
	"rental-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type CartLineResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	VariantID    *uuid.UUID      `json:"variant_id,omitempty"`
	VariantName  string          `json:"variant_name,omitempty"`
	PeriodType   string          `json:"period_type"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Quantity     int             `json:"quantity"`
	BillingUnits int64           `json:"billing_units"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type CouponResponse struct {
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Message        string          `json:"message,omitempty"`
}

type CartTotalsResponse struct {
	ItemCount  int             `json:"item_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	Discount   decimal.Decimal `json:"discount"`
	FinalTotal decimal.Decimal `json:"final_total"`
}

type DroppedLineResponse struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Reason    string     `json:"reason"`
}

type RemovedCouponResponse struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type CartResponse struct {
	Lines         []CartLineResponse     `json:"lines"`
	Coupon        *CouponResponse        `json:"coupon,omitempty"`
	CouponRemoved *RemovedCouponResponse `json:"coupon_removed,omitempty"`
	Totals        CartTotalsResponse     `json:"totals"`
	Dropped       []DroppedLineResponse  `json:"dropped,omitempty"`
}

func FromCartView(v *commands.CartView) (*CartResponse, error) {
	res := &CartResponse{Lines: make([]CartLineResponse, 0)}
	for _, l := range v.Cart.Lines() {
		res.Lines = append(res.Lines, fromCartLine(l))
	}
	if c := v.Cart.Coupon(); c != nil {
		res.Coupon = &CouponResponse{
			Code:           c.Code.String(),
			DiscountType:   string(c.DiscountType),
			DiscountValue:  c.DiscountValue,
			DiscountAmount: c.DiscountAmount,
			FinalAmount:    c.FinalAmount,
			Message:        c.Message,
		}
	}
	if r := v.RemovedCoupon; r != nil {
		res.CouponRemoved = &RemovedCouponResponse{Code: r.Code, Reason: r.Reason}
	}
	if err := copier.Copy(&res.Totals, v.Totals); err != nil {
		return nil, err
	}
	if err := copier.Copy(&res.Dropped, v.Dropped); err != nil {
		return nil, err
	}
	return res, nil
}

func fromCartLine(l *cart.Line) CartLineResponse {
	sel := l.Selection()
	r := CartLineResponse{
		ProductID:    l.Product().ID(),
		ProductName:  l.Product().Name(),
		PeriodType:   sel.PeriodType().String(),
		StartDate:    sel.Start(),
		EndDate:      sel.End(),
		Quantity:     l.Quantity(),
		BillingUnits: l.BillingUnits(),
		UnitPrice:    l.UnitPrice(),
		TotalPrice:   l.TotalPrice(),
	}
	if v := l.Variant(); v != nil {
		id := v.ID
		r.VariantID = &id
		r.VariantName = v.Name
	}
	return r
}

type QuoteResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	VariantID    *uuid.UUID      `json:"variant_id,omitempty"`
	VendorID     uuid.UUID       `json:"vendor_id"`
	Quantity     int             `json:"quantity"`
	BillingUnits int64           `json:"billing_units"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

func FromLineQuote(q *commands.LineQuote) (*QuoteResponse, error) {
	res := &QuoteResponse{}
	if err := copier.Copy(res, q); err != nil {
		return nil, err
	}
	return res, nil
}
