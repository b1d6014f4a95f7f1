package order

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/payment"
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound     = errs.Mark(errs.New("order not found"), errs.ErrNotFound)
	ErrEmptyOrder        = errs.Mark(errs.New("order must contain at least one line"), errs.ErrValidation)
	ErrMissingAddress    = errs.Mark(errs.New("delivery address is required"), errs.ErrValidation)
	ErrMixedVendors      = errs.Mark(errs.New("order lines must belong to a single vendor"), errs.ErrValidation)
	ErrNegativeRate      = errs.Mark(errs.New("tax and deposit rates cannot be negative"), errs.ErrValidation)
	ErrOrderNotPayable   = errs.Mark(errs.New("order does not accept payments"), errs.ErrValidation)
	ErrNothingDue        = errs.Mark(errs.New("order has no balance due"), errs.ErrValidation)
	ErrNonPositivePay    = errs.Mark(errs.New("payment amount must be positive"), errs.ErrValidation)
	ErrNegativeLateFee   = errs.Mark(errs.New("late fee cannot be negative"), errs.ErrValidation)
	ErrPickupDateMissing = errs.Mark(errs.New("pickup date is required to schedule a pickup"), errs.ErrValidation)
	ErrReturnBeforePick  = errs.Mark(errs.New("return date precedes pickup date"), errs.ErrValidation)
	ErrUnknownEvent      = errs.Mark(errs.New("unknown order event"), errs.ErrValidation)
	ErrNotOrderParty     = errs.Mark(errs.New("actor is not allowed to act on this order"), errs.ErrForbidden)
)

// Line is frozen at checkout; later catalog price changes never reach it.
type Line struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	VariantID    *uuid.UUID
	ProductName  string
	VariantName  string
	PeriodType   pricing.PeriodType
	Start        time.Time
	End          time.Time
	Quantity     int
	BillingUnits int64
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
}

// Policy carries the configured rates applied when an order is created.
type Policy struct {
	TaxRate     decimal.Decimal
	DepositRate decimal.Decimal
}

type NewOrderParams struct {
	CustomerID      uuid.UUID
	VendorID        uuid.UUID
	Lines           []Line
	DeliveryAddress string
	PaymentMethod   payment.Method
	Coupon          *coupon.Result
}

type Order struct {
	id              uuid.UUID
	number          string
	customerID      uuid.UUID
	vendorID        uuid.UUID
	lines           []Line
	deliveryAddress string
	paymentMethod   payment.Method
	couponCode      *string
	subtotal        decimal.Decimal
	taxRate         decimal.Decimal
	taxAmount       decimal.Decimal
	securityDeposit decimal.Decimal
	discountAmount  decimal.Decimal
	lateFee         *decimal.Decimal
	totalAmount     decimal.Decimal
	paidAmount      decimal.Decimal
	refundedAmount  decimal.Decimal
	depositSettled  bool
	status          Status
	pickupDate      *time.Time
	returnDate      *time.Time
	cancelledAt     *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

func NewOrder(params NewOrderParams, policy Policy, now time.Time) (*Order, error) {
	if len(params.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if strings.TrimSpace(params.DeliveryAddress) == "" {
		return nil, ErrMissingAddress
	}
	if !params.PaymentMethod.IsValid() {
		return nil, errs.Wrapf(payment.ErrUnknownMethod, "method %q", params.PaymentMethod)
	}
	if policy.TaxRate.IsNegative() || policy.DepositRate.IsNegative() {
		return nil, ErrNegativeRate
	}

	lines := make([]Line, len(params.Lines))
	subtotal := decimal.Zero
	for i, l := range params.Lines {
		if l.Quantity <= 0 {
			return nil, errs.Wrapf(pricing.ErrNonPositiveQty, "line %d", i)
		}
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		lines[i] = l
		subtotal = subtotal.Add(l.TotalPrice)
	}

	tax := money.Percent(subtotal, policy.TaxRate)
	o := &Order{
		id:              uuid.New(),
		number:          GenerateNumber(now),
		customerID:      params.CustomerID,
		vendorID:        params.VendorID,
		lines:           lines,
		deliveryAddress: strings.TrimSpace(params.DeliveryAddress),
		paymentMethod:   params.PaymentMethod,
		subtotal:        subtotal,
		taxRate:         policy.TaxRate,
		taxAmount:       tax,
		securityDeposit: money.Percent(subtotal, policy.DepositRate),
		discountAmount:  decimal.Zero,
		paidAmount:      decimal.Zero,
		refundedAmount:  decimal.Zero,
		status:          StatusPending,
		createdAt:       now,
		updatedAt:       now,
	}
	if params.Coupon != nil {
		code := params.Coupon.Code.String()
		o.couponCode = &code
		o.discountAmount, _ = params.Coupon.ApplyTo(subtotal.Add(tax))
	}
	o.recalculateTotal()
	return o, nil
}

type ReconstructParams struct {
	ID              uuid.UUID
	Number          string
	CustomerID      uuid.UUID
	VendorID        uuid.UUID
	Lines           []Line
	DeliveryAddress string
	PaymentMethod   payment.Method
	CouponCode      *string
	Subtotal        decimal.Decimal
	TaxRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	SecurityDeposit decimal.Decimal
	DiscountAmount  decimal.Decimal
	LateFee         *decimal.Decimal
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	RefundedAmount  decimal.Decimal
	DepositSettled  bool
	Status          Status
	PickupDate      *time.Time
	ReturnDate      *time.Time
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func ReconstructOrder(p ReconstructParams) *Order {
	return &Order{
		id:              p.ID,
		number:          p.Number,
		customerID:      p.CustomerID,
		vendorID:        p.VendorID,
		lines:           p.Lines,
		deliveryAddress: p.DeliveryAddress,
		paymentMethod:   p.PaymentMethod,
		couponCode:      p.CouponCode,
		subtotal:        p.Subtotal,
		taxRate:         p.TaxRate,
		taxAmount:       p.TaxAmount,
		securityDeposit: p.SecurityDeposit,
		discountAmount:  p.DiscountAmount,
		lateFee:         p.LateFee,
		totalAmount:     p.TotalAmount,
		paidAmount:      p.PaidAmount,
		refundedAmount:  p.RefundedAmount,
		depositSettled:  p.DepositSettled,
		status:          p.Status,
		pickupDate:      p.PickupDate,
		returnDate:      p.ReturnDate,
		cancelledAt:     p.CancelledAt,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}
}

// total = subtotal + tax + deposit + late fee - discount
func (o *Order) recalculateTotal() {
	total := o.subtotal.Add(o.taxAmount).Add(o.securityDeposit).Sub(o.discountAmount)
	if o.lateFee != nil {
		total = total.Add(*o.lateFee)
	}
	o.totalAmount = total
}

// BillableAmount is what the customer owes in total: the full total until the
// deposit is settled at return, the total less the deposit afterwards.
func (o *Order) BillableAmount() decimal.Decimal {
	if o.depositSettled {
		return o.totalAmount.Sub(o.securityDeposit)
	}
	return o.totalAmount
}

// NetPaid is what has been collected and not refunded.
func (o *Order) NetPaid() decimal.Decimal {
	return o.paidAmount.Sub(o.refundedAmount)
}

func (o *Order) AmountDue() decimal.Decimal {
	if o.status == StatusCancelled {
		return decimal.Zero
	}
	return money.NonNegative(o.BillableAmount().Sub(o.NetPaid()))
}

// IsParty reports whether the user is the order's customer or vendor.
func (o *Order) IsParty(userID uuid.UUID) bool {
	return o.customerID == userID || o.vendorID == userID
}

// GenerateNumber formats ORD-YYYYMMDDHHMMSS-XXXX with four random hex digits.
func GenerateNumber(now time.Time) string {
	return "ORD-" + now.UTC().Format("20060102150405") + "-" + randomHex(2)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return strings.Repeat("0", n*2)
	}
	return strings.ToUpper(hex.EncodeToString(b))
}

func (o *Order) ID() uuid.UUID                    { return o.id }
func (o *Order) Number() string                   { return o.number }
func (o *Order) CustomerID() uuid.UUID            { return o.customerID }
func (o *Order) VendorID() uuid.UUID              { return o.vendorID }
func (o *Order) Lines() []Line                    { return append([]Line(nil), o.lines...) }
func (o *Order) DeliveryAddress() string          { return o.deliveryAddress }
func (o *Order) PaymentMethod() payment.Method    { return o.paymentMethod }
func (o *Order) CouponCode() *string              { return o.couponCode }
func (o *Order) Subtotal() decimal.Decimal        { return o.subtotal }
func (o *Order) TaxRate() decimal.Decimal         { return o.taxRate }
func (o *Order) TaxAmount() decimal.Decimal       { return o.taxAmount }
func (o *Order) SecurityDeposit() decimal.Decimal { return o.securityDeposit }
func (o *Order) DiscountAmount() decimal.Decimal  { return o.discountAmount }
func (o *Order) LateFee() *decimal.Decimal        { return o.lateFee }
func (o *Order) TotalAmount() decimal.Decimal     { return o.totalAmount }
func (o *Order) PaidAmount() decimal.Decimal      { return o.paidAmount }
func (o *Order) RefundedAmount() decimal.Decimal  { return o.refundedAmount }
func (o *Order) DepositSettled() bool             { return o.depositSettled }
func (o *Order) Status() Status                   { return o.status }
func (o *Order) PickupDate() *time.Time           { return o.pickupDate }
func (o *Order) ReturnDate() *time.Time           { return o.returnDate }
func (o *Order) CancelledAt() *time.Time          { return o.cancelledAt }
func (o *Order) CreatedAt() time.Time             { return o.createdAt }
func (o *Order) UpdatedAt() time.Time             { return o.updatedAt }
