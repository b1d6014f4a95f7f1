package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models (DTO for read side)

type OrderLineView struct {
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

type OrderView struct {
	ID              uuid.UUID        `json:"id"`
	Number          string           `json:"order_number"`
	CustomerID      uuid.UUID        `json:"customer_id"`
	VendorID        uuid.UUID        `json:"vendor_id"`
	Status          string           `json:"status"`
	DeliveryAddress string           `json:"delivery_address"`
	PaymentMethod   string           `json:"payment_method"`
	CouponCode      *string          `json:"coupon_code,omitempty"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	TaxRate         decimal.Decimal  `json:"tax_rate"`
	TaxAmount       decimal.Decimal  `json:"tax_amount"`
	SecurityDeposit decimal.Decimal  `json:"security_deposit"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
	LateFee         *decimal.Decimal `json:"late_fee,omitempty"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	PaidAmount      decimal.Decimal  `json:"paid_amount"`
	RefundedAmount  decimal.Decimal  `json:"refunded_amount"`
	DepositSettled  bool             `json:"deposit_settled"`
	PickupDate      *time.Time       `json:"pickup_date,omitempty"`
	ReturnDate      *time.Time       `json:"return_date,omitempty"`
	CancelledAt     *time.Time       `json:"cancelled_at,omitempty"`
	Lines           []OrderLineView  `json:"lines"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type OrderListItem struct {
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

type InvoiceLineView struct {
	ID          uuid.UUID       `json:"id"`
	OrderLineID *uuid.UUID      `json:"order_line_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type InvoiceView struct {
	ID              uuid.UUID         `json:"id"`
	Number          string            `json:"invoice_number"`
	OrderID         uuid.UUID         `json:"order_id"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	VendorID        uuid.UUID         `json:"vendor_id"`
	Status          string            `json:"status"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	TaxRate         decimal.Decimal   `json:"tax_rate"`
	TaxAmount       decimal.Decimal   `json:"tax_amount"`
	SecurityDeposit decimal.Decimal   `json:"security_deposit"`
	DiscountAmount  decimal.Decimal   `json:"discount_amount"`
	LateFee         decimal.Decimal   `json:"late_fee"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	PaidAmount      decimal.Decimal   `json:"paid_amount"`
	IssuedAt        *time.Time        `json:"issued_at,omitempty"`
	DueDate         *time.Time        `json:"due_date,omitempty"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	Lines           []InvoiceLineView `json:"lines"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type PaymentView struct {
	ID                uuid.UUID       `json:"id"`
	OrderID           uuid.UUID       `json:"order_id"`
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	Method            string          `json:"method"`
	RequestedAmount   decimal.Decimal `json:"requested_amount"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	ExternalReference *string         `json:"external_reference,omitempty"`
	FailureReason     *string         `json:"failure_reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

type WalletTransactionView struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Status        string          `json:"status"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

type WalletView struct {
	// ID is nil until the user's first credit or debit opens the wallet.
	ID           *uuid.UUID              `json:"id,omitempty"`
	UserID       uuid.UUID               `json:"user_id"`
	Balance      decimal.Decimal         `json:"balance"`
	Currency     string                  `json:"currency"`
	IsActive     bool                    `json:"is_active"`
	Transactions []WalletTransactionView `json:"transactions"`
}
