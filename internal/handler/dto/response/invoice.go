package response

import (
	"time"

	"rental-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type InvoiceLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderLineID *uuid.UUID      `json:"order_line_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type InvoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	Number          string                `json:"invoice_number"`
	OrderID         uuid.UUID             `json:"order_id"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	VendorID        uuid.UUID             `json:"vendor_id"`
	Status          string                `json:"status"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TaxRate         decimal.Decimal       `json:"tax_rate"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	SecurityDeposit decimal.Decimal       `json:"security_deposit"`
	DiscountAmount  decimal.Decimal       `json:"discount_amount"`
	LateFee         decimal.Decimal       `json:"late_fee"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	IssuedAt        *time.Time            `json:"issued_at,omitempty"`
	DueDate         *time.Time            `json:"due_date,omitempty"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	Lines           []InvoiceLineResponse `json:"lines"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func FromInvoiceView(v *queries.InvoiceView) (*InvoiceResponse, error) {
	res := &InvoiceResponse{}
	if err := copier.Copy(res, v); err != nil {
		return nil, err
	}
	if res.Lines == nil {
		res.Lines = []InvoiceLineResponse{}
	}
	return res, nil
}

type InvoicePaymentsResponse struct {
	InvoiceID uuid.UUID         `json:"invoice_id"`
	Payments  []PaymentResponse `json:"payments"`
}

func FromInvoicePayments(invoiceID uuid.UUID, views []queries.PaymentView) (*InvoicePaymentsResponse, error) {
	res := &InvoicePaymentsResponse{InvoiceID: invoiceID}
	if err := copier.Copy(&res.Payments, views); err != nil {
		return nil, err
	}
	if res.Payments == nil {
		res.Payments = []PaymentResponse{}
	}
	return res, nil
}
