package commands

//go:generate mockgen -source=checkout.go -destination=../../testutil/mock/commands/checkout.go -package=commandsmock

import (
	"context"
	"log/slog"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/cart"
	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/invoice"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/domain/payment"
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/pkg/clock"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type PlaceOrderInput struct {
	CustomerID      uuid.UUID
	DeliveryAddress string
	PaymentMethod   string
}

type PlaceOrderResult struct {
	Order   *order.Order
	Invoice *invoice.Invoice
	// Payment is the wallet payment, or the pending capture for external methods.
	Payment *payment.Payment
	Capture *shared.CaptureHandle
	// CaptureError is set when the order was placed but the gateway could not be reached.
	CaptureError error
}

type CheckoutCommands interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error)
}

type checkoutUseCaseImpl struct {
	uow      shared.UnitOfWork
	loader   *cartLoader
	coupons  CouponEngine
	payments PaymentReconciler
	settings Settings
	clock    clock.Clock
}

func NewCheckoutUseCase(
	uow shared.UnitOfWork,
	catalog shared.CatalogReader,
	store shared.CartStore,
	coupons CouponEngine,
	payments PaymentReconciler,
	calc pricing.Calculator,
	settings Settings,
	clk clock.Clock,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		uow: uow,
		loader: &cartLoader{
			catalog: catalog,
			store:   store,
			calc:    calc,
			taxRate: settings.TaxRate,
			clock:   clk,
		},
		coupons:  coupons,
		payments: payments,
		settings: settings,
		clock:    clk,
	}
}

// PlaceOrder turns the customer's cart into an order. Stock is reserved with
// an atomic decrement in the same transaction that writes the order, so two
// checkouts can never take more units than exist.
func (uc *checkoutUseCaseImpl) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	method, err := payment.ParseMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	c, dropped, err := uc.loader.load(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(dropped) > 0 {
		return nil, errs.Wrapf(ErrCartChanged, "%d line(s) are no longer available", len(dropped))
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	vendorID, lines, err := orderLines(c)
	if err != nil {
		return nil, err
	}

	// Re-validated against the live total; the policy service may have
	// withdrawn the code since it was applied to the cart.
	var applied *coupon.Result
	if held := c.Coupon(); held != nil {
		result, cerr := uc.coupons.Apply(ctx, held.Code.String(), c.Totals().Total)
		if cerr != nil {
			return nil, cerr
		}
		applied = &result
	}

	params := order.NewOrderParams{
		CustomerID:      in.CustomerID,
		VendorID:        vendorID,
		Lines:           lines,
		DeliveryAddress: in.DeliveryAddress,
		PaymentMethod:   method,
		Coupon:          applied,
	}
	policy := order.Policy{TaxRate: uc.settings.TaxRate, DepositRate: uc.settings.SecurityDepositRate}

	var result *PlaceOrderResult
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		o, derr := order.NewOrder(params, policy, now)
		if derr != nil {
			return derr
		}
		for _, l := range o.Lines() {
			if derr = tx.Inventory().Reserve(ctx, l.ProductID, l.Quantity); derr != nil {
				return errs.Wrapf(derr, "reserve %s", l.ProductName)
			}
		}

		inv := invoice.NewForOrder(o, now)
		if derr = inv.Issue(now, uc.settings.InvoiceDueDays); derr != nil {
			return derr
		}

		var p *payment.Payment
		if method == payment.MethodWallet {
			p, derr = payFromWallet(ctx, tx, o, inv, o.AmountDue(), uc.settings.Currency, now)
			if derr != nil {
				return derr
			}
			if _, derr = autoConfirm(o, uc.settings.AutoConfirmOnFullPayment, now); derr != nil {
				return derr
			}
		}

		if derr = tx.Orders().Create(ctx, o); derr != nil {
			return derr
		}
		if derr = tx.Invoices().Create(ctx, inv); derr != nil {
			return derr
		}
		if p != nil {
			if derr = tx.Payments().Create(ctx, p); derr != nil {
				return derr
			}
		}
		result = &PlaceOrderResult{Order: o, Invoice: inv, Payment: p}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order placed",
		"order_id", result.Order.ID(),
		"order_number", result.Order.Number(),
		"customer_id", in.CustomerID,
		"method", method.String(),
		"total", result.Order.TotalAmount().String())

	if err := uc.loader.store.Delete(ctx, in.CustomerID); err != nil {
		slog.WarnContext(ctx, "failed to clear cart after checkout", "customer_id", in.CustomerID, "error", err.Error())
	}

	if method.IsExternal() {
		uc.startCapture(ctx, in.CustomerID, method, result)
	}
	return result, nil
}

// startCapture runs after the order is committed; a gateway failure leaves
// the order pending and unpaid and is reported on the result.
func (uc *checkoutUseCaseImpl) startCapture(ctx context.Context, customerID uuid.UUID, method payment.Method, result *PlaceOrderResult) {
	pr, err := uc.payments.ApplyPayment(ctx, ApplyPaymentInput{
		OrderID: result.Order.ID(),
		Actor:   actor.Actor{ID: customerID, Role: actor.RoleCustomer},
		Method:  method,
	})
	if err != nil {
		slog.WarnContext(ctx, "external capture not started",
			"order_id", result.Order.ID(),
			"error", err.Error())
		result.CaptureError = err
		return
	}
	result.Payment = pr.Payment
	result.Capture = pr.Capture
}

// orderLines freezes the cart lines; every line must come from one vendor.
func orderLines(c *cart.Cart) (uuid.UUID, []order.Line, error) {
	src := c.Lines()
	vendorID := src[0].Product().VendorID()
	lines := make([]order.Line, 0, len(src))
	for _, l := range src {
		p := l.Product()
		if p.VendorID() != vendorID {
			return uuid.Nil, nil, errs.Wrapf(order.ErrMixedVendors, "%s belongs to another vendor", p.Name())
		}
		sel := l.Selection()
		line := order.Line{
			ProductID:    p.ID(),
			VariantID:    l.Key().VariantPtr(),
			ProductName:  p.Name(),
			PeriodType:   sel.PeriodType(),
			Start:        sel.Start(),
			End:          sel.End(),
			Quantity:     sel.Quantity(),
			BillingUnits: l.BillingUnits(),
			UnitPrice:    l.UnitPrice(),
			TotalPrice:   l.TotalPrice(),
		}
		if v := l.Variant(); v != nil {
			line.VariantName = v.Name
		}
		lines = append(lines, line)
	}
	return vendorID, lines, nil
}
