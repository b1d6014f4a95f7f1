package request

import (
	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/payment"
	"rental-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApplyPaymentRequest struct {
	Method string `json:"method" binding:"required"`
	// Amount defaults to the balance due.
	Amount *decimal.Decimal `json:"amount"`
}

func (r *ApplyPaymentRequest) Validate() error {
	if r.Amount == nil {
		return nil
	}
	return validAmount(*r.Amount)
}

func (r *ApplyPaymentRequest) ToInput(orderID uuid.UUID, a actor.Actor) commands.ApplyPaymentInput {
	return commands.ApplyPaymentInput{
		OrderID: orderID,
		Actor:   a,
		Method:  payment.Method(r.Method),
		Amount:  r.Amount,
	}
}

// CaptureCallbackRequest is the gateway's signed notification for one capture.
type CaptureCallbackRequest struct {
	Reference     string          `json:"reference" binding:"required"`
	Status        string          `json:"status" binding:"required,oneof=completed failed"`
	Amount        decimal.Decimal `json:"amount"`
	FailureReason string          `json:"failure_reason" binding:"max=500"`
}

func (r *CaptureCallbackRequest) Validate() error {
	if r.Status != string(commands.CaptureSucceeded) {
		return nil
	}
	return validAmount(r.Amount)
}

func (r *CaptureCallbackRequest) ToConfirmation() commands.CaptureConfirmation {
	return commands.CaptureConfirmation{
		Reference:     r.Reference,
		Outcome:       commands.CaptureOutcome(r.Status),
		Amount:        r.Amount,
		FailureReason: r.FailureReason,
	}
}

type TopUpRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=200"`
}

func (r *TopUpRequest) Validate() error {
	return validAmount(r.Amount)
}

type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=200"`
}

func (r *WithdrawRequest) Validate() error {
	return validAmount(r.Amount)
}
