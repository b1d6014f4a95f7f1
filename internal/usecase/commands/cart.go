package commands

//go:generate mockgen -source=cart.go -destination=../../testutil/mock/commands/cart.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"rental-engine/internal/domain/cart"
	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/pkg/clock"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart   = errs.Mark(errs.New("cart is empty"), errs.ErrValidation)
	ErrCartChanged = errs.Mark(errs.New("cart changed since it was last priced"), errs.ErrValidation)
)

// LineInput is one product selection as the customer submitted it.
type LineInput struct {
	ProductID  uuid.UUID
	VariantID  *uuid.UUID
	PeriodType pricing.PeriodType
	Start      time.Time
	End        time.Time
	Quantity   int
}

func (in LineInput) selection() (pricing.Selection, error) {
	return pricing.NewSelection(in.PeriodType, in.Start, in.End, in.Quantity)
}

type LineRef struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
}

func (r LineRef) key() cart.LineKey {
	return cart.NewLineKey(r.ProductID, r.VariantID)
}

// DroppedLine is a saved line that could no longer be priced on load.
type DroppedLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Reason    string
}

// RemovedCoupon is a held coupon the policy service no longer accepts for the
// repriced cart.
type RemovedCoupon struct {
	Code   string
	Reason string
}

type CartView struct {
	Cart          *cart.Cart
	Totals        cart.Totals
	Dropped       []DroppedLine
	RemovedCoupon *RemovedCoupon
}

type LineQuote struct {
	ProductID    uuid.UUID
	VariantID    *uuid.UUID
	VendorID     uuid.UUID
	Quantity     int
	BillingUnits int64
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
}

type CartCommands interface {
	Get(ctx context.Context, customerID uuid.UUID) (*CartView, error)
	AddOrReplaceLine(ctx context.Context, customerID uuid.UUID, in LineInput) (*CartView, error)
	UpdateQuantity(ctx context.Context, customerID uuid.UUID, ref LineRef, quantity int) (*CartView, error)
	RemoveLine(ctx context.Context, customerID uuid.UUID, ref LineRef) (*CartView, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
	ApplyCoupon(ctx context.Context, customerID uuid.UUID, code string) (*CartView, error)
	RemoveCoupon(ctx context.Context, customerID uuid.UUID) (*CartView, error)
	PriceLine(ctx context.Context, in LineInput) (*LineQuote, error)
}

type cartUseCaseImpl struct {
	loader  *cartLoader
	coupons CouponEngine
}

func NewCartUseCase(
	catalog shared.CatalogReader,
	store shared.CartStore,
	coupons CouponEngine,
	calc pricing.Calculator,
	settings Settings,
	clk clock.Clock,
) CartCommands {
	return &cartUseCaseImpl{
		loader: &cartLoader{
			catalog: catalog,
			store:   store,
			calc:    calc,
			taxRate: settings.TaxRate,
			clock:   clk,
		},
		coupons: coupons,
	}
}

func (uc *cartUseCaseImpl) Get(ctx context.Context, customerID uuid.UUID) (*CartView, error) {
	c, dropped, err := uc.loader.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	held := c.Coupon()
	removed, err := uc.recheckCoupon(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(dropped) > 0 || held != c.Coupon() {
		if err := uc.loader.save(ctx, c); err != nil {
			return nil, err
		}
	}
	return &CartView{Cart: c, Totals: c.Totals(), Dropped: dropped, RemovedCoupon: removed}, nil
}

func (uc *cartUseCaseImpl) AddOrReplaceLine(ctx context.Context, customerID uuid.UUID, in LineInput) (*CartView, error) {
	sel, err := in.selection()
	if err != nil {
		return nil, err
	}
	product, err := uc.loader.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	return uc.mutate(ctx, customerID, func(c *cart.Cart) error {
		_, err := c.AddOrReplaceLine(product, in.VariantID, sel)
		return err
	})
}

func (uc *cartUseCaseImpl) UpdateQuantity(ctx context.Context, customerID uuid.UUID, ref LineRef, quantity int) (*CartView, error) {
	return uc.mutate(ctx, customerID, func(c *cart.Cart) error {
		_, err := c.UpdateQuantity(ref.key(), quantity)
		return err
	})
}

func (uc *cartUseCaseImpl) RemoveLine(ctx context.Context, customerID uuid.UUID, ref LineRef) (*CartView, error) {
	return uc.mutate(ctx, customerID, func(c *cart.Cart) error {
		return c.RemoveLine(ref.key())
	})
}

func (uc *cartUseCaseImpl) Clear(ctx context.Context, customerID uuid.UUID) error {
	if err := uc.loader.store.Delete(ctx, customerID); err != nil {
		return cartStoreError(err)
	}
	return nil
}

// ApplyCoupon validates code against the current cart total. The policy
// service is called before the cart is written back, with nothing locked.
func (uc *cartUseCaseImpl) ApplyCoupon(ctx context.Context, customerID uuid.UUID, code string) (*CartView, error) {
	c, dropped, err := uc.loader.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	result, err := uc.coupons.Apply(ctx, code, c.Totals().Total)
	if err != nil {
		return nil, err
	}
	c.ApplyCoupon(result)

	if err := uc.loader.save(ctx, c); err != nil {
		return nil, err
	}
	return &CartView{Cart: c, Totals: c.Totals(), Dropped: dropped}, nil
}

func (uc *cartUseCaseImpl) RemoveCoupon(ctx context.Context, customerID uuid.UUID) (*CartView, error) {
	return uc.mutate(ctx, customerID, func(c *cart.Cart) error {
		c.RemoveCoupon()
		return nil
	})
}

func (uc *cartUseCaseImpl) PriceLine(ctx context.Context, in LineInput) (*LineQuote, error) {
	sel, err := in.selection()
	if err != nil {
		return nil, err
	}
	product, err := uc.loader.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	variant, err := product.Variant(in.VariantID)
	if err != nil {
		return nil, err
	}

	q, err := uc.loader.calc.Price(product, variant, sel)
	if err != nil {
		return nil, err
	}
	return &LineQuote{
		ProductID:    product.ID(),
		VariantID:    in.VariantID,
		VendorID:     product.VendorID(),
		Quantity:     sel.Quantity(),
		BillingUnits: q.BillingUnits,
		UnitPrice:    q.UnitPrice,
		TotalPrice:   q.TotalPrice,
	}, nil
}

func (uc *cartUseCaseImpl) mutate(ctx context.Context, customerID uuid.UUID, fn func(c *cart.Cart) error) (*CartView, error) {
	c, dropped, err := uc.loader.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	removed, err := uc.recheckCoupon(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := uc.loader.save(ctx, c); err != nil {
		return nil, err
	}
	return &CartView{Cart: c, Totals: c.Totals(), Dropped: dropped, RemovedCoupon: removed}, nil
}

// recheckCoupon asks the policy service again when the cart total no longer
// matches the amount the held coupon was validated for. A rejection drops the
// coupon. An outage fails the call before anything is saved.
func (uc *cartUseCaseImpl) recheckCoupon(ctx context.Context, c *cart.Cart) (*RemovedCoupon, error) {
	held := c.Coupon()
	if held == nil {
		return nil, nil
	}
	if c.IsEmpty() {
		c.RemoveCoupon()
		return nil, nil
	}
	total := c.Totals().Total
	if held.PricedFor(total) {
		return nil, nil
	}

	result, err := uc.coupons.Apply(ctx, held.Code.String(), total)
	if err == nil {
		c.ApplyCoupon(result)
		return nil, nil
	}
	if !errs.Is(err, errs.ErrCouponInvalid) && !errs.Is(err, errs.ErrValidation) {
		return nil, err
	}

	removed := &RemovedCoupon{Code: held.Code.String(), Reason: err.Error()}
	var rejected *coupon.RejectedError
	if errs.As(err, &rejected) {
		removed.Reason = rejected.Reason
	}
	slog.InfoContext(ctx, "dropping cart coupon",
		"customer_id", c.CustomerID(),
		"code", removed.Code,
		"total", total.String(),
		"reason", removed.Reason)
	c.RemoveCoupon()
	return removed, nil
}

// cartLoader rebuilds a priced cart from its snapshot using current catalog data.
type cartLoader struct {
	catalog shared.CatalogReader
	store   shared.CartStore
	calc    pricing.Calculator
	taxRate decimal.Decimal
	clock   clock.Clock
}

func (l *cartLoader) load(ctx context.Context, customerID uuid.UUID) (*cart.Cart, []DroppedLine, error) {
	c := cart.New(customerID, l.calc, l.taxRate)

	snap, err := l.store.Load(ctx, customerID)
	if err != nil {
		return nil, nil, cartStoreError(err)
	}
	if snap == nil {
		return c, nil, nil
	}

	var dropped []DroppedLine
	for _, sl := range snap.Lines {
		reason, err := l.restoreLine(ctx, c, sl)
		if err != nil {
			return nil, nil, err
		}
		if reason != "" {
			slog.WarnContext(ctx, "dropping cart line",
				"customer_id", customerID,
				"product_id", sl.ProductID,
				"reason", reason)
			dropped = append(dropped, DroppedLine{ProductID: sl.ProductID, VariantID: sl.VariantID, Reason: reason})
		}
	}
	if snap.Coupon != nil && !c.IsEmpty() {
		c.ApplyCoupon(snap.Coupon.Result())
	}
	return c, dropped, nil
}

// restoreLine returns a non-empty reason when the line must be dropped.
// A catalog outage fails the load instead so saved lines are not lost.
func (l *cartLoader) restoreLine(ctx context.Context, c *cart.Cart, sl cart.SnapshotLine) (string, error) {
	sel, err := sl.Selection()
	if err != nil {
		return err.Error(), nil
	}
	product, err := l.catalog.GetProduct(ctx, sl.ProductID)
	if err != nil {
		if errs.Is(err, errs.ErrDependencyUnavailable) {
			return "", err
		}
		return err.Error(), nil
	}
	if _, err := c.Restore(product, sl.VariantID, sel); err != nil {
		return err.Error(), nil
	}
	return "", nil
}

func (l *cartLoader) save(ctx context.Context, c *cart.Cart) error {
	if c.IsEmpty() {
		if err := l.store.Delete(ctx, c.CustomerID()); err != nil {
			return cartStoreError(err)
		}
		return nil
	}
	if err := l.store.Save(ctx, c.Snapshot(l.clock.Now())); err != nil {
		return cartStoreError(err)
	}
	return nil
}

func cartStoreError(err error) error {
	return errs.Mark(errs.Wrap(err, "cart store"), errs.ErrDependencyUnavailable)
}
