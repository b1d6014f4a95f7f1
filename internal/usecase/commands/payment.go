package commands

//go:generate mockgen -source=payment.go -destination=../../testutil/mock/commands/payment.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/invoice"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/domain/payment"
	"rental-engine/internal/domain/wallet"
	"rental-engine/internal/pkg/clock"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/money"
	"rental-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotOrderCustomer = errs.Mark(errs.New("only the order's customer can pay for it"), errs.ErrForbidden)
	ErrNotWalletOwner   = errs.Mark(errs.New("only the wallet's owner can pay from it"), errs.ErrForbidden)
	ErrGatewayFailed    = errs.Mark(errs.New("payment gateway did not accept the capture"), errs.ErrDependencyUnavailable)
	ErrUnknownOutcome   = errs.Mark(errs.New("unknown capture outcome"), errs.ErrValidation)
)

type ApplyPaymentInput struct {
	OrderID uuid.UUID
	Actor   actor.Actor
	Method  payment.Method
	// Amount defaults to the balance due when nil.
	Amount *decimal.Decimal
}

type CaptureOutcome string

const (
	CaptureSucceeded CaptureOutcome = "completed"
	CaptureFailed    CaptureOutcome = "failed"
)

// CaptureConfirmation is the gateway's out-of-band answer for one reference.
type CaptureConfirmation struct {
	Reference     string
	Outcome       CaptureOutcome
	Amount        decimal.Decimal
	FailureReason string
}

type PaymentResult struct {
	Order   *order.Order
	Invoice *invoice.Invoice
	Payment *payment.Payment
	Applied decimal.Decimal
	// Returned is the part of a confirmed capture that exceeded the balance
	// and was credited to the customer's wallet.
	Returned  decimal.Decimal
	Capture   *shared.CaptureHandle
	Confirmed bool
}

// PaymentReconciler books money against an order's balance. Wallet payments
// settle at once; every other method only settles on a gateway confirmation.
type PaymentReconciler interface {
	ApplyPayment(ctx context.Context, in ApplyPaymentInput) (*PaymentResult, error)
	ConfirmExternalCapture(ctx context.Context, c CaptureConfirmation) (*PaymentResult, error)
}

type paymentUseCaseImpl struct {
	uow      shared.UnitOfWork
	gateway  shared.PaymentGateway
	settings Settings
	clock    clock.Clock
}

func NewPaymentUseCase(uow shared.UnitOfWork, gateway shared.PaymentGateway, settings Settings, clk clock.Clock) PaymentReconciler {
	return &paymentUseCaseImpl{
		uow:      uow,
		gateway:  gateway,
		settings: settings,
		clock:    clk,
	}
}

func (uc *paymentUseCaseImpl) ApplyPayment(ctx context.Context, in ApplyPaymentInput) (*PaymentResult, error) {
	if !in.Method.IsValid() {
		return nil, errs.Wrapf(payment.ErrUnknownMethod, "method %q", in.Method)
	}
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, payment.ErrNonPositiveAmount
		}
		if err := money.CheckCents(*in.Amount); err != nil {
			return nil, err
		}
	}
	if in.Method.IsExternal() {
		return uc.startExternalCapture(ctx, in)
	}
	return uc.payFromWallet(ctx, in)
}

func (uc *paymentUseCaseImpl) payFromWallet(ctx context.Context, in ApplyPaymentInput) (*PaymentResult, error) {
	var result *PaymentResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		o, inv, derr := uc.lockPayable(ctx, tx, in.OrderID, in.Actor, now)
		if derr != nil {
			return derr
		}
		// The wallet debited is the customer's, so staff cannot spend it.
		if in.Actor.ID != o.CustomerID() {
			return errs.Wrapf(ErrNotWalletOwner, "order %s", o.Number())
		}

		requested := o.AmountDue()
		if in.Amount != nil {
			requested = *in.Amount
		}
		p, derr := payFromWallet(ctx, tx, o, inv, requested, uc.settings.Currency, now)
		if derr != nil {
			return derr
		}
		if _, derr = autoConfirm(o, uc.settings.AutoConfirmOnFullPayment, now); derr != nil {
			return derr
		}

		if derr = tx.Payments().Create(ctx, p); derr != nil {
			return derr
		}
		if derr = tx.Invoices().Update(ctx, inv); derr != nil {
			return derr
		}
		if derr = tx.Orders().Update(ctx, o); derr != nil {
			return derr
		}
		result = &PaymentResult{Order: o, Invoice: inv, Payment: p, Applied: p.Amount(), Returned: decimal.Zero, Confirmed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "wallet payment applied",
		"order_id", in.OrderID,
		"applied", result.Applied.String(),
		"invoice_status", result.Invoice.Status().String())
	return result, nil
}

// startExternalCapture records a pending capture first so the gateway's
// callback always finds it, then calls the gateway with nothing locked.
func (uc *paymentUseCaseImpl) startExternalCapture(ctx context.Context, in ApplyPaymentInput) (*PaymentResult, error) {
	reference := uuid.NewString()

	var (
		p      *payment.Payment
		o      *order.Order
		inv    *invoice.Invoice
		amount decimal.Decimal
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		var derr error
		o, inv, derr = uc.lockPayable(ctx, tx, in.OrderID, in.Actor, now)
		if derr != nil {
			return derr
		}
		due := o.AmountDue()
		if !due.IsPositive() {
			return errs.Wrapf(order.ErrNothingDue, "order %s", o.Number())
		}
		amount = due
		if in.Amount != nil && in.Amount.LessThan(due) {
			amount = *in.Amount
		}

		p, derr = payment.NewPendingCapture(o.ID(), inv.ID(), o.CustomerID(), in.Method, amount, reference, "", now)
		if derr != nil {
			return derr
		}
		return tx.Payments().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	handle, gerr := uc.gateway.InitiateExternalCapture(ctx, shared.CaptureRequest{
		Reference:   reference,
		Method:      in.Method,
		Amount:      amount,
		Currency:    uc.settings.Currency,
		OrderNumber: o.Number(),
	})
	if gerr != nil {
		uc.failPending(ctx, reference, gerr.Error())
		return nil, errs.Mark(errs.Wrapf(gerr, "initiate capture for order %s", o.Number()), ErrGatewayFailed)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		locked, derr := tx.Payments().FindByReferenceForUpdate(ctx, reference)
		if derr != nil {
			return derr
		}
		p = locked
		if locked.IsSettled() {
			return nil
		}
		if derr = locked.AttachRedirect(handle.RedirectURL); derr != nil {
			return derr
		}
		return tx.Payments().Update(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "external capture initiated",
		"order_id", o.ID(),
		"reference", reference,
		"method", in.Method.String(),
		"amount", amount.String())
	return &PaymentResult{Order: o, Invoice: inv, Payment: p, Applied: decimal.Zero, Returned: decimal.Zero, Capture: &handle}, nil
}

func (uc *paymentUseCaseImpl) failPending(ctx context.Context, reference, reason string) {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, derr := tx.Payments().FindByReferenceForUpdate(ctx, reference)
		if derr != nil {
			return derr
		}
		if p.IsSettled() {
			return nil
		}
		if derr = p.Fail(reason, uc.clock.Now()); derr != nil {
			return derr
		}
		return tx.Payments().Update(ctx, p)
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to mark capture as failed", "reference", reference, "error", err.Error())
	}
}

// ConfirmExternalCapture settles a pending capture. Replays of an already
// settled reference return the stored outcome and change nothing. A failed
// capture never advances the order.
func (uc *paymentUseCaseImpl) ConfirmExternalCapture(ctx context.Context, c CaptureConfirmation) (*PaymentResult, error) {
	if c.Outcome != CaptureSucceeded && c.Outcome != CaptureFailed {
		return nil, errs.Wrapf(ErrUnknownOutcome, "outcome %q", c.Outcome)
	}
	if c.Outcome == CaptureSucceeded {
		if !c.Amount.IsPositive() {
			return nil, payment.ErrNonPositiveAmount
		}
		if err := money.CheckCents(c.Amount); err != nil {
			return nil, err
		}
	}

	var result *PaymentResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		p, derr := tx.Payments().FindByReferenceForUpdate(ctx, c.Reference)
		if derr != nil {
			return derr
		}
		o, derr := tx.Orders().FindByIDForUpdate(ctx, p.OrderID())
		if derr != nil {
			return derr
		}
		inv, derr := tx.Invoices().FindByOrderIDForUpdate(ctx, o.ID())
		if derr != nil {
			return derr
		}
		result = &PaymentResult{Order: o, Invoice: inv, Payment: p, Applied: p.Amount(), Returned: decimal.Zero}

		if p.IsSettled() {
			result.Confirmed = p.Status() == payment.StatusCompleted
			return nil
		}

		if c.Outcome == CaptureFailed {
			if derr = p.Fail(c.FailureReason, now); derr != nil {
				return derr
			}
			return tx.Payments().Update(ctx, p)
		}

		applied, derr := uc.bookCapture(o, inv, c.Amount, now)
		if derr != nil {
			return derr
		}
		returned := c.Amount.Sub(applied)
		paymentID := p.ID()
		if _, derr = creditWallet(ctx, tx, o.CustomerID(), returned, wallet.Reference{
			Type:        wallet.RefOverpaymentRefund,
			ID:          &paymentID,
			Description: "Capture above balance for order " + o.Number(),
		}, uc.settings.Currency, now); derr != nil {
			return derr
		}
		if derr = p.Complete(applied, now); derr != nil {
			return derr
		}
		if _, derr = autoConfirm(o, uc.settings.AutoConfirmOnFullPayment, now); derr != nil {
			return derr
		}

		if derr = tx.Payments().Update(ctx, p); derr != nil {
			return derr
		}
		if derr = tx.Invoices().Update(ctx, inv); derr != nil {
			return derr
		}
		if derr = tx.Orders().Update(ctx, o); derr != nil {
			return derr
		}
		result.Applied = applied
		result.Returned = returned
		result.Confirmed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "external capture confirmed",
		"reference", c.Reference,
		"outcome", string(c.Outcome),
		"applied", result.Applied.String(),
		"returned", result.Returned.String())
	return result, nil
}

// bookCapture applies what the balance allows. Money captured for an order
// that no longer owes anything is returned in full.
func (uc *paymentUseCaseImpl) bookCapture(o *order.Order, inv *invoice.Invoice, amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if o.Status() == order.StatusCancelled || !o.AmountDue().IsPositive() {
		return decimal.Zero, nil
	}
	applied, err := o.RecordPayment(amount, now)
	if err != nil {
		return decimal.Zero, err
	}
	if _, err := inv.RecordPayment(applied, now); err != nil {
		return decimal.Zero, err
	}
	return applied, nil
}

// lockPayable locks the order and its invoice for a payment by the customer.
func (uc *paymentUseCaseImpl) lockPayable(ctx context.Context, tx shared.Tx, orderID uuid.UUID, a actor.Actor, now time.Time) (*order.Order, *invoice.Invoice, error) {
	o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !a.IsAdmin() && a.ID != o.CustomerID() {
		return nil, nil, errs.Wrapf(ErrNotOrderCustomer, "order %s", o.Number())
	}
	if o.Status() == order.StatusCancelled {
		return nil, nil, errs.Wrapf(order.ErrOrderNotPayable, "order %s is %s", o.Number(), o.Status())
	}
	inv, err := invoiceFor(ctx, tx, o, uc.settings.InvoiceDueDays, now)
	if err != nil {
		return nil, nil, err
	}
	return o, inv, nil
}
