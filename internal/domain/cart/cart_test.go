//go:build unit

package cart_test

import (
	"testing"
	"time"

	"rental-engine/internal/domain/cart"
	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/testutil/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start   = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	taxRate = builder.D("0.18")
)

func days(t *testing.T, n, qty int) pricing.Selection {
	t.Helper()
	sel, err := pricing.NewSelection(pricing.PeriodDay, start, start.Add(time.Duration(n)*24*time.Hour), qty)
	require.NoError(t, err)
	return sel
}

func newCart() *cart.Cart {
	return cart.New(uuid.New(), pricing.NewDefaultCalculator(), taxRate)
}

func TestCart_AddOrReplaceLine(t *testing.T) {
	t.Run("prices the line and computes taxed totals", func(t *testing.T) {
		c := newCart()
		product := builder.NewProductBuilder().Build()

		line, err := c.AddOrReplaceLine(product, nil, days(t, 3, 2))
		require.NoError(t, err)
		assert.True(t, builder.D("3000").Equal(line.TotalPrice()))

		totals := c.Totals()
		assert.True(t, builder.D("3000").Equal(totals.Subtotal))
		assert.True(t, builder.D("540").Equal(totals.Tax))
		assert.True(t, builder.D("3540").Equal(totals.Total))
		assert.True(t, totals.Total.Equal(totals.FinalTotal))
		assert.Equal(t, 2, totals.ItemCount)
	})

	t.Run("same product and variant replaces instead of duplicating", func(t *testing.T) {
		c := newCart()
		product := builder.NewProductBuilder().Build()

		_, err := c.AddOrReplaceLine(product, nil, days(t, 3, 2))
		require.NoError(t, err)
		_, err = c.AddOrReplaceLine(product, nil, days(t, 1, 1))
		require.NoError(t, err)

		require.Len(t, c.Lines(), 1)
		assert.Equal(t, 1, c.Lines()[0].Quantity())
		assert.True(t, builder.D("500").Equal(c.Totals().Subtotal))
	})

	t.Run("different variants of one product are separate lines", func(t *testing.T) {
		c := newCart()
		product := builder.NewProductBuilder().WithVariant("black", "0").WithVariant("silver", "20").Build()
		variants := product.Variants()

		_, err := c.AddOrReplaceLine(product, &variants[0].ID, days(t, 1, 1))
		require.NoError(t, err)
		_, err = c.AddOrReplaceLine(product, &variants[1].ID, days(t, 1, 1))
		require.NoError(t, err)
		_, err = c.AddOrReplaceLine(product, nil, days(t, 1, 1))
		require.NoError(t, err)

		assert.Len(t, c.Lines(), 3)
		assert.True(t, builder.D("1520").Equal(c.Totals().Subtotal))
	})

	t.Run("replacement keeps line order", func(t *testing.T) {
		c := newCart()
		first := builder.NewProductBuilder().Build()
		second := builder.NewProductBuilder().Build()

		_, err := c.AddOrReplaceLine(first, nil, days(t, 1, 1))
		require.NoError(t, err)
		_, err = c.AddOrReplaceLine(second, nil, days(t, 1, 1))
		require.NoError(t, err)
		_, err = c.AddOrReplaceLine(first, nil, days(t, 2, 1))
		require.NoError(t, err)

		got := []uuid.UUID{c.Lines()[0].Product().ID(), c.Lines()[1].Product().ID()}
		if diff := cmp.Diff([]uuid.UUID{first.ID(), second.ID()}, got); diff != "" {
			t.Errorf("line order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("quantity above stock fails", func(t *testing.T) {
		c := newCart()
		product := builder.NewProductBuilder().WithAvailable(1).Build()

		_, err := c.AddOrReplaceLine(product, nil, days(t, 1, 2))
		assert.True(t, errs.Is(err, errs.ErrInsufficientAvailability))
		assert.True(t, c.IsEmpty())
	})

	t.Run("unknown variant fails", func(t *testing.T) {
		c := newCart()
		product := builder.NewProductBuilder().Build()
		missing := uuid.New()

		_, err := c.AddOrReplaceLine(product, &missing, days(t, 1, 1))
		assert.ErrorIs(t, err, catalog.ErrVariantNotFound)
	})

	t.Run("missing tier leaves the cart untouched", func(t *testing.T) {
		c := newCart()
		product := builder.NewProductBuilder().WithTiers(catalog.Tiers{Hourly: builder.Dec("40")}).Build()

		_, err := c.AddOrReplaceLine(product, nil, days(t, 1, 1))
		assert.True(t, errs.Is(err, errs.ErrInvalidPricingTier))
		assert.True(t, c.IsEmpty())
	})
}

func TestCart_UpdateQuantity(t *testing.T) {
	t.Run("recomputes prices from the calculator", func(t *testing.T) {
		c := newCart()
		product := builder.NewProductBuilder().WithVariant("lens kit", "75").Build()
		variant := product.Variants()[0]
		_, err := c.AddOrReplaceLine(product, &variant.ID, days(t, 3, 1))
		require.NoError(t, err)

		key := cart.NewLineKey(product.ID(), &variant.ID)
		line, err := c.UpdateQuantity(key, 3)
		require.NoError(t, err)

		assert.True(t, builder.D("1575").Equal(line.UnitPrice()))
		assert.True(t, builder.D("4725").Equal(line.TotalPrice()))
		assert.True(t, line.UnitPrice().Mul(builder.D("3")).Equal(line.TotalPrice()))
	})

	testCases := []struct {
		name string
		key  func(p *catalog.Product) cart.LineKey
		qty  int
		kind error
	}{
		{name: "zero quantity", key: func(p *catalog.Product) cart.LineKey { return cart.NewLineKey(p.ID(), nil) }, qty: 0, kind: errs.ErrInvalidQuantity},
		{name: "negative quantity", key: func(p *catalog.Product) cart.LineKey { return cart.NewLineKey(p.ID(), nil) }, qty: -1, kind: errs.ErrInvalidQuantity},
		{name: "over stock", key: func(p *catalog.Product) cart.LineKey { return cart.NewLineKey(p.ID(), nil) }, qty: 11, kind: errs.ErrInsufficientAvailability},
		{name: "unknown line", key: func(_ *catalog.Product) cart.LineKey { return cart.NewLineKey(uuid.New(), nil) }, qty: 1, kind: errs.ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newCart()
			product := builder.NewProductBuilder().Build()
			_, err := c.AddOrReplaceLine(product, nil, days(t, 3, 2))
			require.NoError(t, err)

			_, err = c.UpdateQuantity(tc.key(product), tc.qty)
			require.Error(t, err)
			assert.True(t, errs.Is(err, tc.kind), "got %v", err)
			assert.True(t, builder.D("3000").Equal(c.Totals().Subtotal), "failed update must not change the cart")
		})
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := newCart()
	a := builder.NewProductBuilder().Build()
	b := builder.NewProductBuilder().Build()
	_, err := c.AddOrReplaceLine(a, nil, days(t, 1, 1))
	require.NoError(t, err)
	_, err = c.AddOrReplaceLine(b, nil, days(t, 1, 1))
	require.NoError(t, err)

	require.NoError(t, c.RemoveLine(cart.NewLineKey(a.ID(), nil)))
	assert.Len(t, c.Lines(), 1)
	assert.ErrorIs(t, c.RemoveLine(cart.NewLineKey(a.ID(), nil)), cart.ErrLineNotFound)

	c.ApplyCoupon(coupon.Result{Code: "SAVE10", DiscountAmount: builder.D("10")})
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.Coupon())
	assert.True(t, c.Totals().FinalTotal.IsZero())
}

func TestCart_Coupon(t *testing.T) {
	t.Run("fixed 200 off 3540 leaves 3340", func(t *testing.T) {
		c := newCart()
		_, err := c.AddOrReplaceLine(builder.NewProductBuilder().Build(), nil, days(t, 3, 2))
		require.NoError(t, err)

		c.ApplyCoupon(coupon.Result{Code: "FLAT200", DiscountType: coupon.DiscountFixed, DiscountAmount: builder.D("200")})

		totals := c.Totals()
		assert.True(t, builder.D("200").Equal(totals.Discount))
		assert.True(t, builder.D("3340").Equal(totals.FinalTotal))
	})

	t.Run("applying a second coupon replaces the first", func(t *testing.T) {
		c := newCart()
		_, err := c.AddOrReplaceLine(builder.NewProductBuilder().Build(), nil, days(t, 1, 1))
		require.NoError(t, err)

		c.ApplyCoupon(coupon.Result{Code: "FIRST", DiscountAmount: builder.D("50")})
		c.ApplyCoupon(coupon.Result{Code: "SECOND", DiscountAmount: builder.D("20")})

		assert.Equal(t, coupon.Code("SECOND"), c.Coupon().Code)
		assert.True(t, builder.D("20").Equal(c.Totals().Discount))
	})

	t.Run("discount larger than total clamps at zero", func(t *testing.T) {
		c := newCart()
		_, err := c.AddOrReplaceLine(builder.NewProductBuilder().Build(), nil, days(t, 1, 1))
		require.NoError(t, err)

		c.ApplyCoupon(coupon.Result{Code: "HUGE", DiscountAmount: builder.D("10000")})

		totals := c.Totals()
		assert.True(t, totals.FinalTotal.IsZero())
		assert.True(t, totals.Total.Equal(totals.Discount))
	})
}

func TestCart_Snapshot(t *testing.T) {
	product := builder.NewProductBuilder().WithVariant("kit", "25").Build()
	variant := product.Variants()[0]

	c := newCart()
	_, err := c.AddOrReplaceLine(product, &variant.ID, days(t, 2, 3))
	require.NoError(t, err)
	c.ApplyCoupon(coupon.Result{Code: "WELCOME", DiscountType: coupon.DiscountPercentage, DiscountValue: builder.D("10"), DiscountAmount: builder.D("120")})

	snap := c.Snapshot(start)
	require.Len(t, snap.Lines, 1)
	require.NotNil(t, snap.Coupon)

	restored := cart.New(c.CustomerID(), pricing.NewDefaultCalculator(), taxRate)
	for _, l := range snap.Lines {
		sel, selErr := l.Selection()
		require.NoError(t, selErr)
		_, err = restored.Restore(product, l.VariantID, sel)
		require.NoError(t, err)
	}
	restored.ApplyCoupon(snap.Coupon.Result())

	assert.Equal(t, c.Totals().Subtotal.String(), restored.Totals().Subtotal.String())
	assert.Equal(t, c.Totals().FinalTotal.String(), restored.Totals().FinalTotal.String())
	assert.Equal(t, coupon.Code("WELCOME"), restored.Coupon().Code)
}
