package payment

import (
	"time"

	"rental-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownMethod      = errs.Mark(errs.New("unknown payment method"), errs.ErrValidation)
	ErrNonPositiveAmount  = errs.Mark(errs.New("payment amount must be positive"), errs.ErrValidation)
	ErrAlreadySettled     = errs.Mark(errs.New("payment is already settled"), errs.ErrValidation)
	ErrMissingReference   = errs.Mark(errs.New("external payment requires a gateway reference"), errs.ErrValidation)
	ErrNotExternalPayment = errs.Mark(errs.New("payment is not an external capture"), errs.ErrValidation)
	ErrPaymentNotFound    = errs.Mark(errs.New("payment not found"), errs.ErrNotFound)
	ErrCapturePending     = errs.Mark(errs.New("external capture is awaiting confirmation"), errs.ErrPaymentNotConfirmed)
	ErrCaptureUnconfirmed = errs.Mark(errs.New("gateway did not confirm the capture"), errs.ErrPaymentNotConfirmed)
)

type Method string

const (
	MethodWallet       Method = "wallet"
	MethodCard         Method = "card"
	MethodOnline       Method = "online"
	MethodBankTransfer Method = "bank_transfer"
	MethodCash         Method = "cash"
)

func (m Method) String() string { return string(m) }

func (m Method) IsValid() bool {
	switch m {
	case MethodWallet, MethodCard, MethodOnline, MethodBankTransfer, MethodCash:
		return true
	default:
		return false
	}
}

// IsExternal reports whether money moves outside the wallet ledger and is
// only known after the gateway confirms it.
func (m Method) IsExternal() bool {
	return m != MethodWallet
}

func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.IsValid() {
		return "", errs.Wrapf(ErrUnknownMethod, "method %q", s)
	}
	return m, nil
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

func (s Status) String() string { return string(s) }

type Payment struct {
	id                uuid.UUID
	orderID           uuid.UUID
	invoiceID         uuid.UUID
	customerID        uuid.UUID
	method            Method
	requestedAmount   decimal.Decimal
	amount            decimal.Decimal
	status            Status
	externalReference *string
	redirectURL       *string
	failureReason     *string
	createdAt         time.Time
	completedAt       *time.Time
}

// NewWalletPayment records a payment settled from the customer's wallet.
func NewWalletPayment(orderID, invoiceID, customerID uuid.UUID, requested, applied decimal.Decimal, now time.Time) (*Payment, error) {
	if !applied.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	return &Payment{
		id:              uuid.New(),
		orderID:         orderID,
		invoiceID:       invoiceID,
		customerID:      customerID,
		method:          MethodWallet,
		requestedAmount: requested,
		amount:          applied,
		status:          StatusCompleted,
		createdAt:       now,
		completedAt:     &now,
	}, nil
}

// NewPendingCapture records an external capture that has been initiated but not confirmed.
func NewPendingCapture(orderID, invoiceID, customerID uuid.UUID, method Method, amount decimal.Decimal, reference, redirectURL string, now time.Time) (*Payment, error) {
	if !method.IsExternal() {
		return nil, errs.Wrapf(ErrNotExternalPayment, "method %s", method)
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if reference == "" {
		return nil, ErrMissingReference
	}
	return &Payment{
		id:                uuid.New(),
		orderID:           orderID,
		invoiceID:         invoiceID,
		customerID:        customerID,
		method:            method,
		requestedAmount:   amount,
		amount:            decimal.Zero,
		status:            StatusPending,
		externalReference: &reference,
		redirectURL:       &redirectURL,
		createdAt:         now,
	}, nil
}

func ReconstructPayment(
	id, orderID, invoiceID, customerID uuid.UUID,
	method Method, requested, amount decimal.Decimal, status Status,
	externalReference, redirectURL, failureReason *string,
	createdAt time.Time, completedAt *time.Time,
) *Payment {
	return &Payment{
		id:                id,
		orderID:           orderID,
		invoiceID:         invoiceID,
		customerID:        customerID,
		method:            method,
		requestedAmount:   requested,
		amount:            amount,
		status:            status,
		externalReference: externalReference,
		redirectURL:       redirectURL,
		failureReason:     failureReason,
		createdAt:         createdAt,
		completedAt:       completedAt,
	}
}

// Complete settles a pending capture with the amount actually applied to the invoice.
func (p *Payment) Complete(applied decimal.Decimal, now time.Time) error {
	if p.status != StatusPending {
		return errs.Wrapf(ErrAlreadySettled, "payment %s is %s", p.id, p.status)
	}
	p.amount = applied
	p.status = StatusCompleted
	p.completedAt = &now
	return nil
}

// AttachRedirect stores where the gateway sends the customer to finish paying.
func (p *Payment) AttachRedirect(url string) error {
	if p.status != StatusPending {
		return errs.Wrapf(ErrAlreadySettled, "payment %s is %s", p.id, p.status)
	}
	p.redirectURL = &url
	return nil
}

func (p *Payment) Fail(reason string, now time.Time) error {
	if p.status != StatusPending {
		return errs.Wrapf(ErrAlreadySettled, "payment %s is %s", p.id, p.status)
	}
	p.status = StatusFailed
	p.failureReason = &reason
	p.completedAt = &now
	return nil
}

func (p *Payment) IsSettled() bool { return p.status != StatusPending }

func (p *Payment) ID() uuid.UUID                    { return p.id }
func (p *Payment) OrderID() uuid.UUID               { return p.orderID }
func (p *Payment) InvoiceID() uuid.UUID             { return p.invoiceID }
func (p *Payment) CustomerID() uuid.UUID            { return p.customerID }
func (p *Payment) Method() Method                   { return p.method }
func (p *Payment) RequestedAmount() decimal.Decimal { return p.requestedAmount }
func (p *Payment) Amount() decimal.Decimal          { return p.amount }
func (p *Payment) Status() Status                   { return p.status }
func (p *Payment) ExternalReference() *string       { return p.externalReference }
func (p *Payment) RedirectURL() *string             { return p.redirectURL }
func (p *Payment) FailureReason() *string           { return p.failureReason }
func (p *Payment) CreatedAt() time.Time             { return p.createdAt }
func (p *Payment) CompletedAt() *time.Time          { return p.completedAt }
