package invoice

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"rental-engine/internal/domain/order"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound   = errs.Mark(errs.New("invoice not found"), errs.ErrNotFound)
	ErrInvoiceCancelled  = errs.Mark(errs.New("invoice is cancelled"), errs.ErrValidation)
	ErrInvoiceNotDraft   = errs.Mark(errs.New("only a draft invoice can be issued"), errs.ErrValidation)
	ErrNothingDue        = errs.Mark(errs.New("invoice has no balance due"), errs.ErrValidation)
	ErrNonPositiveAmount = errs.Mark(errs.New("amount must be positive"), errs.ErrValidation)
	ErrRefundExceedsPaid = errs.Mark(errs.New("refund exceeds the paid amount"), errs.ErrValidation)
	ErrOrderMismatch     = errs.Mark(errs.New("invoice belongs to a different order"), errs.ErrValidation)
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPartial   Status = "partial"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string { return string(s) }

// Line mirrors one order line.
type Line struct {
	ID          uuid.UUID
	OrderLineID uuid.UUID
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

type Invoice struct {
	id              uuid.UUID
	number          string
	orderID         uuid.UUID
	customerID      uuid.UUID
	vendorID        uuid.UUID
	lines           []Line
	subtotal        decimal.Decimal
	taxRate         decimal.Decimal
	taxAmount       decimal.Decimal
	securityDeposit decimal.Decimal
	discountAmount  decimal.Decimal
	lateFee         decimal.Decimal
	totalAmount     decimal.Decimal
	paidAmount      decimal.Decimal
	status          Status
	issuedAt        *time.Time
	dueDate         *time.Time
	paidAt          *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

// NewForOrder drafts the invoice for o, copying its lines and amounts.
func NewForOrder(o *order.Order, now time.Time) *Invoice {
	src := o.Lines()
	lines := make([]Line, len(src))
	for i, l := range src {
		desc := l.ProductName
		if l.VariantName != "" {
			desc += " (" + l.VariantName + ")"
		}
		lines[i] = Line{
			ID:          uuid.New(),
			OrderLineID: l.ID,
			Description: desc,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  l.TotalPrice,
		}
	}

	inv := &Invoice{
		id:              uuid.New(),
		number:          GenerateNumber(now),
		orderID:         o.ID(),
		customerID:      o.CustomerID(),
		vendorID:        o.VendorID(),
		lines:           lines,
		subtotal:        o.Subtotal(),
		taxRate:         o.TaxRate(),
		taxAmount:       o.TaxAmount(),
		securityDeposit: o.SecurityDeposit(),
		discountAmount:  o.DiscountAmount(),
		lateFee:         decimal.Zero,
		totalAmount:     o.BillableAmount(),
		paidAmount:      decimal.Zero,
		status:          StatusDraft,
		createdAt:       now,
		updatedAt:       now,
	}
	if o.LateFee() != nil {
		inv.lateFee = *o.LateFee()
	}
	return inv
}

type ReconstructParams struct {
	ID              uuid.UUID
	Number          string
	OrderID         uuid.UUID
	CustomerID      uuid.UUID
	VendorID        uuid.UUID
	Lines           []Line
	Subtotal        decimal.Decimal
	TaxRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	SecurityDeposit decimal.Decimal
	DiscountAmount  decimal.Decimal
	LateFee         decimal.Decimal
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	Status          Status
	IssuedAt        *time.Time
	DueDate         *time.Time
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func Reconstruct(p ReconstructParams) *Invoice {
	return &Invoice{
		id:              p.ID,
		number:          p.Number,
		orderID:         p.OrderID,
		customerID:      p.CustomerID,
		vendorID:        p.VendorID,
		lines:           p.Lines,
		subtotal:        p.Subtotal,
		taxRate:         p.TaxRate,
		taxAmount:       p.TaxAmount,
		securityDeposit: p.SecurityDeposit,
		discountAmount:  p.DiscountAmount,
		lateFee:         p.LateFee,
		totalAmount:     p.TotalAmount,
		paidAmount:      p.PaidAmount,
		status:          p.Status,
		issuedAt:        p.IssuedAt,
		dueDate:         p.DueDate,
		paidAt:          p.PaidAt,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}
}

// Issue sends a draft invoice with a due date dueDays after now.
func (i *Invoice) Issue(now time.Time, dueDays int) error {
	if i.status != StatusDraft {
		return errs.Wrapf(ErrInvoiceNotDraft, "invoice %s is %s", i.number, i.status)
	}
	due := now.AddDate(0, 0, dueDays)
	i.issuedAt = &now
	i.dueDate = &due
	i.status = StatusSent
	i.updatedAt = now
	return nil
}

func (i *Invoice) AmountDue() decimal.Decimal {
	if i.status == StatusCancelled {
		return decimal.Zero
	}
	return money.NonNegative(i.totalAmount.Sub(i.paidAmount))
}

// RecordPayment applies up to the balance due and returns the applied amount.
func (i *Invoice) RecordPayment(amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	if i.status == StatusCancelled {
		return decimal.Zero, errs.Wrapf(ErrInvoiceCancelled, "invoice %s", i.number)
	}
	due := i.AmountDue()
	if !due.IsPositive() {
		return decimal.Zero, errs.Wrapf(ErrNothingDue, "invoice %s", i.number)
	}
	if i.status == StatusDraft {
		i.issuedAt = &now
	}

	applied := money.Min(amount, due)
	i.paidAmount = i.paidAmount.Add(applied)
	i.refreshStatus(now)
	return applied, nil
}

// Refund gives back part of the paid amount.
func (i *Invoice) Refund(amount decimal.Decimal, now time.Time) error {
	if amount.IsZero() {
		return nil
	}
	if amount.IsNegative() {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(i.paidAmount) {
		return errs.Wrapf(ErrRefundExceedsPaid, "refund %s, paid %s", amount, i.paidAmount)
	}
	i.paidAmount = i.paidAmount.Sub(amount)
	i.refreshStatus(now)
	return nil
}

// Rebase follows the order after its return was settled: the late fee is
// added, the deposit drops out of the total and refund leaves the paid amount.
func (i *Invoice) Rebase(o *order.Order, refund decimal.Decimal, now time.Time) error {
	if o.ID() != i.orderID {
		return errs.Wrapf(ErrOrderMismatch, "invoice %s, order %s", i.number, o.Number())
	}
	if i.status == StatusCancelled {
		return errs.Wrapf(ErrInvoiceCancelled, "invoice %s", i.number)
	}
	if o.LateFee() != nil {
		i.lateFee = *o.LateFee()
	}
	i.totalAmount = o.BillableAmount()
	return i.Refund(refund, now)
}

// Cancel voids the invoice. Any paid amount must have been refunded first.
func (i *Invoice) Cancel(now time.Time) {
	i.status = StatusCancelled
	i.updatedAt = now
}

// refreshStatus: paid when the total is covered, partial when something is
// paid, otherwise the status stays as it was.
func (i *Invoice) refreshStatus(now time.Time) {
	switch {
	case i.paidAmount.GreaterThanOrEqual(i.totalAmount) && i.paidAmount.IsPositive():
		if i.status != StatusPaid {
			i.paidAt = &now
		}
		i.status = StatusPaid
	case i.paidAmount.IsPositive():
		i.status = StatusPartial
		i.paidAt = nil
	case i.status == StatusPaid || i.status == StatusPartial:
		i.status = StatusSent
		i.paidAt = nil
	}
	i.updatedAt = now
}

func (i *Invoice) IsPaid() bool {
	return i.status == StatusPaid
}

// GenerateNumber formats INV-YYYYMMDD-XXXXXX with six random hex digits.
func GenerateNumber(now time.Time) string {
	b := make([]byte, 3)
	suffix := "000000"
	if _, err := rand.Read(b); err == nil {
		suffix = strings.ToUpper(hex.EncodeToString(b))
	}
	return "INV-" + now.UTC().Format("20060102") + "-" + suffix
}

func (i *Invoice) ID() uuid.UUID                    { return i.id }
func (i *Invoice) Number() string                   { return i.number }
func (i *Invoice) OrderID() uuid.UUID               { return i.orderID }
func (i *Invoice) CustomerID() uuid.UUID            { return i.customerID }
func (i *Invoice) VendorID() uuid.UUID              { return i.vendorID }
func (i *Invoice) Lines() []Line                    { return append([]Line(nil), i.lines...) }
func (i *Invoice) Subtotal() decimal.Decimal        { return i.subtotal }
func (i *Invoice) TaxRate() decimal.Decimal         { return i.taxRate }
func (i *Invoice) TaxAmount() decimal.Decimal       { return i.taxAmount }
func (i *Invoice) SecurityDeposit() decimal.Decimal { return i.securityDeposit }
func (i *Invoice) DiscountAmount() decimal.Decimal  { return i.discountAmount }
func (i *Invoice) LateFee() decimal.Decimal         { return i.lateFee }
func (i *Invoice) TotalAmount() decimal.Decimal     { return i.totalAmount }
func (i *Invoice) PaidAmount() decimal.Decimal      { return i.paidAmount }
func (i *Invoice) Status() Status                   { return i.status }
func (i *Invoice) IssuedAt() *time.Time             { return i.issuedAt }
func (i *Invoice) DueDate() *time.Time              { return i.dueDate }
func (i *Invoice) PaidAt() *time.Time               { return i.paidAt }
func (i *Invoice) CreatedAt() time.Time             { return i.createdAt }
func (i *Invoice) UpdatedAt() time.Time             { return i.updatedAt }
