package response

import (
	"time"

	"rental-engine/internal/domain/payment"
	"rental-engine/internal/usecase/commands"
	"rental-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
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

func FromPayment(p *payment.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:                p.ID(),
		OrderID:           p.OrderID(),
		InvoiceID:         p.InvoiceID(),
		Method:            p.Method().String(),
		RequestedAmount:   p.RequestedAmount(),
		Amount:            p.Amount(),
		Status:            p.Status().String(),
		ExternalReference: p.ExternalReference(),
		FailureReason:     p.FailureReason(),
		CreatedAt:         p.CreatedAt(),
		CompletedAt:       p.CompletedAt(),
	}
}

type CaptureResponse struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

func FromCapture(h *shared.CaptureHandle) *CaptureResponse {
	if h == nil {
		return nil
	}
	return &CaptureResponse{Reference: h.Reference, RedirectURL: h.RedirectURL}
}

type PlaceOrderResponse struct {
	Order   *OrderResponse   `json:"order"`
	Payment *PaymentResponse `json:"payment,omitempty"`
	Capture *CaptureResponse `json:"capture,omitempty"`
	// CaptureError is set when the order was placed but payment could not be started.
	CaptureError string `json:"capture_error,omitempty"`
}

func NewPlaceOrderResponse(o *OrderResponse, r *commands.PlaceOrderResult) *PlaceOrderResponse {
	res := &PlaceOrderResponse{
		Order:   o,
		Payment: FromPayment(r.Payment),
		Capture: FromCapture(r.Capture),
	}
	if r.CaptureError != nil {
		res.CaptureError = "payment could not be started; retry from the order"
	}
	return res
}

type PaymentResultResponse struct {
	Order     *OrderResponse   `json:"order"`
	Payment   *PaymentResponse `json:"payment"`
	Applied   decimal.Decimal  `json:"applied"`
	Returned  decimal.Decimal  `json:"returned"`
	Confirmed bool             `json:"confirmed"`
	Capture   *CaptureResponse `json:"capture,omitempty"`
}

func NewPaymentResultResponse(o *OrderResponse, r *commands.PaymentResult) *PaymentResultResponse {
	return &PaymentResultResponse{
		Order:     o,
		Payment:   FromPayment(r.Payment),
		Applied:   r.Applied,
		Returned:  r.Returned,
		Confirmed: r.Confirmed,
		Capture:   FromCapture(r.Capture),
	}
}

type CallbackResponse struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Applied   decimal.Decimal `json:"applied"`
	Returned  decimal.Decimal `json:"returned"`
	Confirmed bool            `json:"confirmed"`
}

func NewCallbackResponse(reference string, r *commands.PaymentResult) *CallbackResponse {
	return &CallbackResponse{
		Reference: reference,
		Status:    r.Payment.Status().String(),
		Applied:   r.Applied,
		Returned:  r.Returned,
		Confirmed: r.Confirmed,
	}
}

type SettlementResponse struct {
	Deposit           decimal.Decimal `json:"deposit"`
	LateFee           decimal.Decimal `json:"late_fee"`
	RefundableDeposit decimal.Decimal `json:"refundable_deposit"`
	Refund            decimal.Decimal `json:"refund"`
	AdditionalDue     decimal.Decimal `json:"additional_due"`
}

type TransitionResponse struct {
	Order      *OrderResponse             `json:"order"`
	From       string                     `json:"from"`
	To         string                     `json:"to"`
	Refund     decimal.Decimal            `json:"refund"`
	Settlement *SettlementResponse        `json:"settlement,omitempty"`
	RefundTx   *WalletTransactionResponse `json:"refund_transaction,omitempty"`
}

func NewTransitionResponse(o *OrderResponse, r *commands.TransitionResult) (*TransitionResponse, error) {
	res := &TransitionResponse{
		Order:  o,
		From:   r.Outcome.From.String(),
		To:     r.Outcome.To.String(),
		Refund: r.Outcome.Refund,
	}
	if r.Outcome.Settlement != nil {
		res.Settlement = &SettlementResponse{}
		if err := copier.Copy(res.Settlement, r.Outcome.Settlement); err != nil {
			return nil, err
		}
	}
	tx, err := FromWalletTransaction(r.Refund)
	if err != nil {
		return nil, err
	}
	res.RefundTx = tx
	return res, nil
}
