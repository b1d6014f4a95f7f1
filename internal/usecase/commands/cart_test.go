//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-engine/internal/domain/cart"
	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/testutil/builder"
	commandsmock "rental-engine/internal/testutil/mock/commands"
	sharedmock "rental-engine/internal/testutil/mock/shared"
	"rental-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type cartFixture struct {
	catalog *sharedmock.MockCatalogReader
	store   *sharedmock.MockCartStore
	coupons *commandsmock.MockCouponEngine
	uc      commands.CartCommands
}

func newCartFixture(t *testing.T) *cartFixture {
	ctrl := gomock.NewController(t)
	f := &cartFixture{
		catalog: sharedmock.NewMockCatalogReader(ctrl),
		store:   sharedmock.NewMockCartStore(ctrl),
		coupons: commandsmock.NewMockCouponEngine(ctrl),
	}
	f.uc = commands.NewCartUseCase(f.catalog, f.store, f.coupons, pricing.NewDefaultCalculator(), testSettings(), testClock())
	return f
}

func (f *cartFixture) stock(products ...*catalog.Product) {
	for _, p := range products {
		f.catalog.EXPECT().GetProduct(gomock.Any(), p.ID()).Return(p, nil).AnyTimes()
	}
}

func TestCartCommands_AddOrReplaceLine(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("adds a priced line to an empty cart and saves inputs only", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(nil, nil)

		var saved cart.Snapshot
		f.store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s cart.Snapshot) error {
			saved = s
			return nil
		})

		view, err := f.uc.AddOrReplaceLine(ctx, customerID, dayLine(product, 3, 2))
		require.NoError(t, err)
		assert.True(t, builder.D("3000").Equal(view.Totals.Subtotal))
		assert.True(t, builder.D("3540").Equal(view.Totals.Total))

		require.Len(t, saved.Lines, 1)
		assert.Equal(t, product.ID(), saved.Lines[0].ProductID)
		assert.Equal(t, 2, saved.Lines[0].Quantity)
		assert.Equal(t, now, saved.SavedAt)
	})

	t.Run("quantity above stock is rejected before saving", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().WithAvailable(1).Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(nil, nil)

		_, err := f.uc.AddOrReplaceLine(ctx, customerID, dayLine(product, 3, 2))
		assert.True(t, errs.Is(err, errs.ErrInsufficientAvailability))
	})

	t.Run("bad period never hits the catalog", func(t *testing.T) {
		f := newCartFixture(t)
		in := commands.LineInput{ProductID: uuid.New(), PeriodType: pricing.PeriodDay, Start: rentStart, End: rentStart, Quantity: 1}

		_, err := f.uc.AddOrReplaceLine(ctx, customerID, in)
		assert.True(t, errs.Is(err, errs.ErrInvalidPeriod))
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newCartFixture(t)
		id := uuid.New()
		f.catalog.EXPECT().GetProduct(gomock.Any(), id).Return(nil, catalog.ErrProductNotFound)

		_, err := f.uc.AddOrReplaceLine(ctx, customerID, commands.LineInput{
			ProductID: id, PeriodType: pricing.PeriodDay, Start: rentStart, End: rentStart.Add(24 * time.Hour), Quantity: 1,
		})
		assert.True(t, errs.Is(err, errs.ErrNotFound))
	})
}

func TestCartCommands_Get(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("reprices from the catalog and drops vanished products", func(t *testing.T) {
		f := newCartFixture(t)
		kept := builder.NewProductBuilder().WithTiers(catalog.Tiers{Daily: builder.Dec("600")}).Build()
		gone := builder.NewProductBuilder().Build()
		f.stock(kept)
		f.catalog.EXPECT().GetProduct(gomock.Any(), gone.ID()).Return(nil, catalog.ErrProductNotFound)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(savedCart(t, customerID, dayLine(kept, 3, 2), dayLine(gone, 1, 1)), nil)

		var saved cart.Snapshot
		f.store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s cart.Snapshot) error {
			saved = s
			return nil
		})

		view, err := f.uc.Get(ctx, customerID)
		require.NoError(t, err)
		require.Len(t, view.Dropped, 1)
		assert.Equal(t, gone.ID(), view.Dropped[0].ProductID)
		// 600 x 3 days x 2 units, at today's price
		assert.True(t, builder.D("3600").Equal(view.Totals.Subtotal))
		assert.Len(t, saved.Lines, 1)
	})

	t.Run("no saved cart is an empty cart", func(t *testing.T) {
		f := newCartFixture(t)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(nil, nil)

		view, err := f.uc.Get(ctx, customerID)
		require.NoError(t, err)
		assert.True(t, view.Cart.IsEmpty())
		assert.True(t, view.Totals.FinalTotal.IsZero())
	})

	t.Run("store outage is a dependency failure", func(t *testing.T) {
		f := newCartFixture(t)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(nil, errors.New("dial tcp: connection refused"))

		_, err := f.uc.Get(ctx, customerID)
		assert.True(t, errs.Is(err, errs.ErrDependencyUnavailable))
	})

	t.Run("catalog outage keeps the saved lines", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.catalog.EXPECT().GetProduct(gomock.Any(), product.ID()).
			Return(nil, errs.Mark(errors.New("pool closed"), errs.ErrDependencyUnavailable))
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(savedCart(t, customerID, dayLine(product, 3, 2)), nil)

		_, err := f.uc.Get(ctx, customerID)
		assert.True(t, errs.Is(err, errs.ErrDependencyUnavailable))
	})
}

func TestCartCommands_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("update quantity reprices the line", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(savedCart(t, customerID, dayLine(product, 3, 2)), nil)
		f.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		view, err := f.uc.UpdateQuantity(ctx, customerID, commands.LineRef{ProductID: product.ID()}, 4)
		require.NoError(t, err)
		assert.True(t, builder.D("6000").Equal(view.Totals.Subtotal))
	})

	t.Run("removing the last line deletes the saved cart", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(savedCart(t, customerID, dayLine(product, 3, 2)), nil)
		f.store.EXPECT().Delete(gomock.Any(), customerID).Return(nil)

		view, err := f.uc.RemoveLine(ctx, customerID, commands.LineRef{ProductID: product.ID()})
		require.NoError(t, err)
		assert.True(t, view.Cart.IsEmpty())
	})

	t.Run("unknown line", func(t *testing.T) {
		f := newCartFixture(t)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(nil, nil)

		_, err := f.uc.RemoveLine(ctx, customerID, commands.LineRef{ProductID: uuid.New()})
		assert.True(t, errs.Is(err, errs.ErrNotFound))
	})
}

func TestCartCommands_ApplyCoupon(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("discount from the policy service lands on the totals", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(savedCart(t, customerID, dayLine(product, 3, 2)), nil)
		f.coupons.EXPECT().Apply(gomock.Any(), "SAVE200", gomock.Any()).
			DoAndReturn(func(_ context.Context, code string, amount decimal.Decimal) (coupon.Result, error) {
				assert.True(t, builder.D("3540").Equal(amount))
				return coupon.Result{Code: coupon.Code(code), DiscountType: coupon.DiscountFixed, DiscountAmount: builder.D("200")}, nil
			})

		var saved cart.Snapshot
		f.store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s cart.Snapshot) error {
			saved = s
			return nil
		})

		view, err := f.uc.ApplyCoupon(ctx, customerID, "SAVE200")
		require.NoError(t, err)
		assert.True(t, builder.D("200").Equal(view.Totals.Discount))
		assert.True(t, builder.D("3340").Equal(view.Totals.FinalTotal))
		require.NotNil(t, saved.Coupon)
		assert.Equal(t, "SAVE200", saved.Coupon.Code)
	})

	t.Run("rejected coupon leaves the cart untouched", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(savedCart(t, customerID, dayLine(product, 3, 2)), nil)
		f.coupons.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(coupon.Result{}, &coupon.RejectedError{Code: "EXPIRED", Reason: "coupon expired"})

		_, err := f.uc.ApplyCoupon(ctx, customerID, "EXPIRED")
		assert.True(t, errs.Is(err, errs.ErrCouponInvalid))
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newCartFixture(t)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(nil, nil)

		_, err := f.uc.ApplyCoupon(ctx, customerID, "SAVE200")
		assert.ErrorIs(t, err, commands.ErrEmptyCart)
	})
}

// tenPercentOff is a held 10% coupon validated for a 3540 cart with a 3000 minimum.
func tenPercentOff() *cart.SnapshotCoupon {
	minOrder := builder.D("3000")
	return &cart.SnapshotCoupon{
		Code:           "TENOFF",
		DiscountType:   string(coupon.DiscountPercentage),
		DiscountValue:  builder.D("10"),
		DiscountAmount: builder.D("354"),
		OrderAmount:    builder.D("3540"),
		FinalAmount:    builder.D("3186"),
		MinOrderAmount: &minOrder,
	}
}

func TestCartCommands_HeldCouponFollowsTheCart(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	withCoupon := func(t *testing.T, product *catalog.Product, qty int) *cart.Snapshot {
		snap := savedCart(t, customerID, dayLine(product, 3, qty))
		snap.Coupon = tenPercentOff()
		return snap
	}

	t.Run("coupon is dropped once the cart falls below the minimum", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(withCoupon(t, product, 2), nil)
		f.coupons.EXPECT().Apply(gomock.Any(), "TENOFF", gomock.Any()).
			DoAndReturn(func(_ context.Context, code string, amount decimal.Decimal) (coupon.Result, error) {
				assert.True(t, builder.D("1770").Equal(amount))
				return coupon.Result{}, &coupon.RejectedError{Code: coupon.Code(code), Reason: "Minimum order amount is 3000"}
			})

		var saved cart.Snapshot
		f.store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s cart.Snapshot) error {
			saved = s
			return nil
		})

		view, err := f.uc.UpdateQuantity(ctx, customerID, commands.LineRef{ProductID: product.ID()}, 1)
		require.NoError(t, err)
		assert.Nil(t, view.Cart.Coupon())
		assert.True(t, view.Totals.Discount.IsZero())
		assert.True(t, builder.D("1770").Equal(view.Totals.FinalTotal))
		require.NotNil(t, view.RemovedCoupon)
		assert.Equal(t, "TENOFF", view.RemovedCoupon.Code)
		assert.Equal(t, "Minimum order amount is 3000", view.RemovedCoupon.Reason)
		assert.Nil(t, saved.Coupon)
	})

	t.Run("coupon is repriced for a larger cart", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(withCoupon(t, product, 2), nil)
		f.coupons.EXPECT().Apply(gomock.Any(), "TENOFF", gomock.Any()).
			DoAndReturn(func(_ context.Context, code string, amount decimal.Decimal) (coupon.Result, error) {
				assert.True(t, builder.D("7080").Equal(amount))
				return coupon.Evaluate(coupon.Code(code), amount, coupon.Verdict{
					Valid: true, DiscountType: coupon.DiscountPercentage,
					DiscountValue: builder.D("10"), DiscountAmount: builder.D("708"),
				})
			})

		var saved cart.Snapshot
		f.store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s cart.Snapshot) error {
			saved = s
			return nil
		})

		view, err := f.uc.UpdateQuantity(ctx, customerID, commands.LineRef{ProductID: product.ID()}, 4)
		require.NoError(t, err)
		assert.Nil(t, view.RemovedCoupon)
		assert.True(t, builder.D("708").Equal(view.Totals.Discount))
		assert.True(t, builder.D("6372").Equal(view.Totals.FinalTotal))
		require.NotNil(t, saved.Coupon)
		assert.True(t, builder.D("7080").Equal(saved.Coupon.OrderAmount))
	})

	t.Run("policy service outage leaves the saved cart alone", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(withCoupon(t, product, 2), nil)
		f.coupons.EXPECT().Apply(gomock.Any(), "TENOFF", gomock.Any()).
			Return(coupon.Result{}, errs.Mark(errors.New("policy service timeout"), errs.ErrDependencyUnavailable))

		_, err := f.uc.UpdateQuantity(ctx, customerID, commands.LineRef{ProductID: product.ID()}, 1)
		assert.True(t, errs.Is(err, errs.ErrDependencyUnavailable))
	})

	t.Run("unchanged total keeps the coupon without asking again", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(withCoupon(t, product, 2), nil)

		view, err := f.uc.Get(ctx, customerID)
		require.NoError(t, err)
		require.NotNil(t, view.Cart.Coupon())
		assert.True(t, builder.D("354").Equal(view.Totals.Discount))
	})

	t.Run("removing the coupon skips the policy service", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		f.stock(product)
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(withCoupon(t, product, 2), nil)
		f.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		view, err := f.uc.RemoveCoupon(ctx, customerID)
		require.NoError(t, err)
		assert.Nil(t, view.Cart.Coupon())
		assert.Nil(t, view.RemovedCoupon)
	})

	t.Run("dropped line triggers a new check on load", func(t *testing.T) {
		f := newCartFixture(t)
		product := builder.NewProductBuilder().Build()
		gone := builder.NewProductBuilder().Build()
		f.stock(product)
		f.catalog.EXPECT().GetProduct(gomock.Any(), gone.ID()).Return(nil, catalog.ErrProductNotFound)

		snap := savedCart(t, customerID, dayLine(product, 3, 1), dayLine(gone, 3, 1))
		snap.Coupon = tenPercentOff()
		f.store.EXPECT().Load(gomock.Any(), customerID).Return(snap, nil)
		f.coupons.EXPECT().Apply(gomock.Any(), "TENOFF", gomock.Any()).
			Return(coupon.Result{}, &coupon.RejectedError{Code: "TENOFF", Reason: "Minimum order amount is 3000"})
		f.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		view, err := f.uc.Get(ctx, customerID)
		require.NoError(t, err)
		require.Len(t, view.Dropped, 1)
		require.NotNil(t, view.RemovedCoupon)
		assert.True(t, builder.D("1770").Equal(view.Totals.FinalTotal))
	})
}

func TestCartCommands_PriceLine(t *testing.T) {
	f := newCartFixture(t)
	product := builder.NewProductBuilder().WithVariant("Pro kit", "100").Build()
	f.stock(product)
	variantID := product.Variants()[0].ID

	in := dayLine(product, 3, 2)
	in.VariantID = &variantID
	quote, err := f.uc.PriceLine(context.Background(), in)
	require.NoError(t, err)

	// (500 x 3 + 100) x 2
	assert.True(t, builder.D("3200").Equal(quote.TotalPrice))
	assert.True(t, builder.D("1600").Equal(quote.UnitPrice))
	assert.Equal(t, int64(3), quote.BillingUnits)
	assert.Equal(t, product.VendorID(), quote.VendorID)
}
