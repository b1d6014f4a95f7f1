package response

import (
	"time"

	"rental-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type OrderLineResponse struct {
	ID           uuid.UUID       `json:"id"`
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

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"order_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	VendorID        uuid.UUID           `json:"vendor_id"`
	Status          string              `json:"status"`
	DeliveryAddress string              `json:"delivery_address"`
	PaymentMethod   string              `json:"payment_method"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	TaxRate         decimal.Decimal     `json:"tax_rate"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	SecurityDeposit decimal.Decimal     `json:"security_deposit"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	LateFee         *decimal.Decimal    `json:"late_fee,omitempty"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	RefundedAmount  decimal.Decimal     `json:"refunded_amount"`
	DepositSettled  bool                `json:"deposit_settled"`
	PickupDate      *time.Time          `json:"pickup_date,omitempty"`
	ReturnDate      *time.Time          `json:"return_date,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	Lines           []OrderLineResponse `json:"lines"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func FromOrderView(v *queries.OrderView) (*OrderResponse, error) {
	res := &OrderResponse{}
	if err := copier.Copy(res, v); err != nil {
		return nil, err
	}
	if res.Lines == nil {
		res.Lines = []OrderLineResponse{}
	}
	return res, nil
}

type OrderListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	LineCount   int             `json:"line_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

type OrderListResponse struct {
	Orders     []OrderListItemResponse `json:"orders"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

func FromOrderList(items []*queries.OrderListItem, next *queries.Cursor) (*OrderListResponse, error) {
	res := &OrderListResponse{Orders: make([]OrderListItemResponse, 0, len(items))}
	if err := copier.Copy(&res.Orders, items); err != nil {
		return nil, err
	}
	if res.Orders == nil {
		res.Orders = []OrderListItemResponse{}
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res, nil
}
